// Package leduc implements no-raise Leduc poker: two rounds of betting
// around a shared flop card, each round allowing at most one bet and one
// call/fold (no re-raising). Grounded on
// original_source/Leduc_no_raise.h's betting structure and card-count
// accounting, re-expressed without its bit-magic lookup tables.
package leduc

import (
	"math/rand"
	"time"

	"github.com/lascar-pacagi/gtocfr"
)

const (
	Check gtocfr.Action = iota
	Bet
	Call
	Fold
	DealJack
	DealQueen
	DealKing
)

var ranks = [3]gtocfr.Action{DealJack, DealQueen, DealKing}

func isCard(a gtocfr.Action) bool { return a >= DealJack && a <= DealKing }
func rankOf(a gtocfr.Action) int  { return int(a - DealJack) }

const betRound1 = 2
const betRound2 = 4

// Game implements gtocfr.Game for no-raise Leduc poker. State packs the
// played action sequence (3 bits each, up to 9 plies) plus a play count in
// the high bits of a uint64.
type Game struct {
	history []gtocfr.Action
	rng     *rand.Rand
}

func New() *Game {
	return &Game{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (g *Game) MaxPlayerActions() int { return 2 }
func (g *Game) MaxChanceActions() int { return 3 }

func (g *Game) Reset() { g.history = g.history[:0] }

func (g *Game) GetState() gtocfr.State {
	var s uint64
	for i, a := range g.history {
		s |= uint64(a) << (3 * i)
	}
	s |= uint64(len(g.history)) << 56
	return gtocfr.State(s)
}

func (g *Game) SetState(state gtocfr.State) {
	s := uint64(state)
	n := int(s >> 56)
	g.history = g.history[:0]
	for i := 0; i < n; i++ {
		g.history = append(g.history, gtocfr.Action((s>>(3*i))&0b111))
	}
}

// round describes the parse of one betting round: the actions taken in it
// so far, whether it is complete, and whether it ended in a fold.
type round struct {
	actions  []gtocfr.Action
	done     bool
	folded   bool
	nextToAct gtocfr.Player // meaningful only if !done
}

func parseRound(actions []gtocfr.Action) round {
	switch len(actions) {
	case 0:
		return round{nextToAct: gtocfr.P1}
	case 1:
		return round{actions: actions, nextToAct: gtocfr.P2}
	case 2:
		if actions[0] == Check && actions[1] == Bet {
			return round{actions: actions, nextToAct: gtocfr.P1}
		}
		folded := actions[1] == Fold
		return round{actions: actions, done: true, folded: folded}
	case 3:
		folded := actions[2] == Fold
		return round{actions: actions, done: true, folded: folded}
	default:
		panic("leduc: betting round longer than 3 actions")
	}
}

// parsed is the decoded structure of a history: the dealt cards, the two
// betting rounds, and the flop (once dealt).
type parsed struct {
	p1Card, p2Card gtocfr.Action
	round1         round
	flop           gtocfr.Action
	hasFlop        bool
	round2         round
}

func parse(history []gtocfr.Action) parsed {
	var p parsed
	if len(history) > 0 {
		p.p1Card = history[0]
	}
	if len(history) > 1 {
		p.p2Card = history[1]
	}
	if len(history) <= 2 {
		p.round1 = parseRound(nil)
		return p
	}

	rest := history[2:]
	var r1 []gtocfr.Action
	for _, a := range rest {
		r1 = append(r1, a)
		if parseRound(r1).done {
			break
		}
	}
	p.round1 = parseRound(r1)
	if !p.round1.done || p.round1.folded {
		return p
	}

	rest = rest[len(r1):]
	if len(rest) == 0 {
		return p
	}
	p.flop = rest[0]
	p.hasFlop = true

	rest = rest[1:]
	var r2 []gtocfr.Action
	for _, a := range rest {
		r2 = append(r2, a)
		if parseRound(r2).done {
			break
		}
	}
	p.round2 = parseRound(r2)
	return p
}

func (g *Game) CurrentPlayer() gtocfr.Player {
	n := len(g.history)
	if n < 2 {
		return gtocfr.Chance
	}
	p := parse(g.history)
	if !p.round1.done {
		return p.round1.nextToAct
	}
	if p.round1.folded {
		return gtocfr.Chance // unreachable: GameOver already true
	}
	if !p.hasFlop {
		return gtocfr.Chance
	}
	if !p.round2.done {
		return p.round2.nextToAct
	}
	return gtocfr.Chance // unreachable: GameOver already true
}

func (g *Game) IsChancePlayer() bool { return g.CurrentPlayer() == gtocfr.Chance }

func (g *Game) GameOver() bool {
	if len(g.history) < 2 {
		return false
	}
	p := parse(g.history)
	if p.round1.folded {
		return true
	}
	if !p.round1.done || !p.hasFlop {
		return false
	}
	return p.round2.done
}

func (g *Game) Actions(out []gtocfr.Action) int {
	n := len(g.history)
	switch {
	case n == 0:
		out[0], out[1], out[2] = DealJack, DealQueen, DealKing
		return 3
	case n == 1:
		return dealExcluding(out, g.history[0])
	}

	p := parse(g.history)
	if !p.round1.done {
		return bettingActions(out, p.round1.actions)
	}
	if !p.hasFlop {
		out[0], out[1], out[2] = DealJack, DealQueen, DealKing
		return 3
	}
	return bettingActions(out, p.round2.actions)
}

// bettingActions returns the two legal actions at the current point within
// a round: {Check,Bet} if no bet is outstanding, {Call,Fold} if facing one.
func bettingActions(out []gtocfr.Action, actionsSoFar []gtocfr.Action) int {
	facingBet := len(actionsSoFar) > 0 && actionsSoFar[len(actionsSoFar)-1] == Bet
	if facingBet {
		out[0], out[1] = Call, Fold
	} else {
		out[0], out[1] = Check, Bet
	}
	return 2
}

func dealExcluding(out []gtocfr.Action, exclude gtocfr.Action) int {
	i := 0
	for _, r := range ranks {
		if r != exclude {
			out[i] = r
			i++
		}
	}
	return i
}

// Probas returns integer weights proportional to remaining copies (2 per
// rank in a 6-card deck) for the actions Actions() just returned.
func (g *Game) Probas(out []int) int {
	n := len(g.history)
	if n == 0 {
		out[0], out[1], out[2] = 2, 2, 2
		return 3
	}
	if n == 1 {
		excluded := g.history[0]
		i := 0
		for _, r := range ranks {
			if r != excluded {
				out[i] = 2
				i++
			}
		}
		return i
	}

	p := parse(g.history)
	out[0] = 2 - boolToInt(p.p1Card == DealJack) - boolToInt(p.p2Card == DealJack)
	out[1] = 2 - boolToInt(p.p1Card == DealQueen) - boolToInt(p.p2Card == DealQueen)
	out[2] = 2 - boolToInt(p.p1Card == DealKing) - boolToInt(p.p2Card == DealKing)
	return 3
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (g *Game) Play(a gtocfr.Action) { g.history = append(g.history, a) }
func (g *Game) Undo(gtocfr.Action)   { g.history = g.history[:len(g.history)-1] }

// Payoff replays both betting rounds' ante/bet/call contributions and, at
// showdown, ranks hands: a pair with the flop beats any non-pair, else the
// higher private card wins.
func (g *Game) Payoff(player gtocfr.Player) int {
	p := parse(g.history)
	contrib := [2]int{1, 1}
	folder := -1

	applyRound := func(actions []gtocfr.Action, betSize int) {
		// Each round's actor sequence is P1,P2 (len 2) or P1,P2,P1 (len 3,
		// the check-bet-{call,fold} line): actor always alternates starting
		// with P1, so index parity gives the actor directly.
		for i, a := range actions {
			actor := i % 2
			switch a {
			case Bet:
				contrib[actor] += betSize
			case Call:
				contrib[actor] = contrib[1-actor]
			case Fold:
				folder = actor
			}
		}
	}

	applyRound(p.round1.actions, betRound1)
	if folder < 0 && p.hasFlop {
		applyRound(p.round2.actions, betRound2)
	}

	var p1Payoff int
	if folder >= 0 {
		winner := 1 - folder
		if winner == 0 {
			p1Payoff = contrib[folder]
		} else {
			p1Payoff = -contrib[folder]
		}
	} else {
		c := contrib[0]
		p1Pairs := p.p1Card == p.flop
		p2Pairs := p.p2Card == p.flop
		switch {
		case p1Pairs && !p2Pairs:
			p1Payoff = c
		case p2Pairs && !p1Pairs:
			p1Payoff = -c
		case rankOf(p.p1Card) > rankOf(p.p2Card):
			p1Payoff = c
		case rankOf(p.p1Card) < rankOf(p.p2Card):
			p1Payoff = -c
		default:
			p1Payoff = 0
		}
	}

	if player == gtocfr.P1 {
		return p1Payoff
	}
	return -p1Payoff
}

func (g *Game) SampleAction() gtocfr.Action {
	var buf [3]gtocfr.Action
	var weights [3]int
	n := g.Actions(buf[:])
	g.Probas(weights[:])
	total := 0
	for i := 0; i < n; i++ {
		total += weights[i]
	}
	r := g.rng.Intn(total)
	for i := 0; i < n; i++ {
		if r < weights[i] {
			return buf[i]
		}
		r -= weights[i]
	}
	return buf[n-1]
}

// GetInfoSet packs the calling player's own dealt card, the flop (once
// dealt), and the public betting sequence (everything except the two
// private deals) into a uint64.
func (g *Game) GetInfoSet(player gtocfr.Player) gtocfr.InfoSet {
	return infoSetOf(g.history, player)
}

func infoSetOf(history []gtocfr.Action, player gtocfr.Player) gtocfr.InfoSet {
	p := parse(history)
	var ownCard gtocfr.Action
	switch player {
	case gtocfr.P1:
		ownCard = p.p1Card
	case gtocfr.P2:
		ownCard = p.p2Card
	}

	var is uint64
	is = uint64(ownCard)
	is |= uint64(boolToInt(p.hasFlop)) << 3
	is |= uint64(p.flop) << 4

	betting := append(append([]gtocfr.Action(nil), p.round1.actions...), p.round2.actions...)
	is |= uint64(len(betting)) << 8
	for i, a := range betting {
		is |= uint64(a) << (12 + 2*uint(i))
	}
	return gtocfr.InfoSet(is)
}

func decode(state gtocfr.State) []gtocfr.Action {
	s := uint64(state)
	n := int(s >> 56)
	history := make([]gtocfr.Action, n)
	for i := 0; i < n; i++ {
		history[i] = gtocfr.Action((s >> (3 * i)) & 0b111)
	}
	return history
}

// InfoSetsAndActions replays state's history, returning every (InfoSet,
// Action) pair where player was on the move.
func (g *Game) InfoSetsAndActions(state gtocfr.State, player gtocfr.Player) []gtocfr.InfoSetAction {
	history := decode(state)
	var res []gtocfr.InfoSetAction

	for i := 2; i < len(history); i++ {
		if isCard(history[i]) {
			continue // flop deal, not a player action
		}
		acting := actingPlayerAt(history, i)
		if acting != player {
			continue
		}
		res = append(res, gtocfr.InfoSetAction{
			InfoSet: infoSetOf(history[:i], player),
			Action:  history[i],
		})
	}
	return res
}

// actingPlayerAt determines which player played history[i], by re-parsing
// the prefix up to i.
func actingPlayerAt(history []gtocfr.Action, i int) gtocfr.Player {
	p := parse(history[:i])
	if !p.round1.done {
		return p.round1.nextToAct
	}
	return p.round2.nextToAct
}

// ChanceReachProba computes the probability of the dealt private cards and
// (if present) the flop, matching the weighted sampling in Probas.
func (g *Game) ChanceReachProba(state gtocfr.State) float64 {
	history := decode(state)
	if len(history) < 2 {
		return 1
	}
	p := parse(history)

	proba := 1.0 / 3.0
	if p.p1Card == p.p2Card {
		proba *= 1.0 / 5.0
	} else {
		proba *= 2.0 / 5.0
	}

	if p.hasFlop {
		remaining := 4
		matches := 0
		if p.p1Card == p.flop {
			matches++
		}
		if p.p2Card == p.flop {
			matches++
		}
		copiesLeft := 2 - matches
		proba *= float64(copiesLeft) / float64(remaining)
	}

	return proba
}
