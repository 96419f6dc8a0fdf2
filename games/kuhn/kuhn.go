// Package kuhn implements three-card Kuhn poker, grounded on
// original_source/simple_poker.h's bit-packed action history and its
// ante/bet/call/fold contribution accounting.
package kuhn

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

func rankOf(a gtocfr.Action) int { return int(a - DealJack) }

const maxPlies = 5 // deal, deal, then at most 3 betting actions

// Game implements gtocfr.Game for Kuhn poker. State packs the played action
// sequence (3 bits each) plus a play count in the high bits of a uint64.
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
	s |= uint64(len(g.history)) << 60
	return gtocfr.State(s)
}

func (g *Game) SetState(state gtocfr.State) {
	s := uint64(state)
	n := int(s >> 60)
	g.history = g.history[:0]
	for i := 0; i < n; i++ {
		g.history = append(g.history, gtocfr.Action((s>>(3*i))&0b111))
	}
}

// GetInfoSet packs the calling player's own dealt card with the public
// betting sequence so far (everything after the two deal plies).
func (g *Game) GetInfoSet(player gtocfr.Player) gtocfr.InfoSet {
	return infoSetOf(g.history, player)
}

func infoSetOf(history []gtocfr.Action, player gtocfr.Player) gtocfr.InfoSet {
	var ownCard gtocfr.Action
	switch player {
	case gtocfr.P1:
		if len(history) > 0 {
			ownCard = history[0]
		}
	case gtocfr.P2:
		if len(history) > 1 {
			ownCard = history[1]
		}
	}

	var is uint64
	is = uint64(ownCard)
	betting := history[min(len(history), 2):]
	is |= uint64(len(betting)) << 3
	for i, a := range betting {
		is |= uint64(a) << (6 + 2*i)
	}
	return gtocfr.InfoSet(is)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (g *Game) CurrentPlayer() gtocfr.Player {
	n := len(g.history)
	switch {
	case n < 2:
		return gtocfr.Chance
	case n == 2:
		return gtocfr.P1
	case n == 3:
		return gtocfr.P2
	default: // n == 4, only reached via check-bet-?
		return gtocfr.P1
	}
}

func (g *Game) IsChancePlayer() bool { return g.CurrentPlayer() == gtocfr.Chance }

func (g *Game) GameOver() bool {
	n := len(g.history)
	if n < 4 {
		return false
	}
	last := g.history[n-1]
	if last == Fold {
		return true
	}
	if n == 4 {
		// check-check (showdown) or bet-call (showdown) both end at 4;
		// check-bet still needs P1's fold/call response.
		return (g.history[2] == Check && last == Check) || (g.history[2] == Bet && last == Call)
	}
	return true // n == 5: check-bet-call or check-bet-fold
}

func (g *Game) Actions(out []gtocfr.Action) int {
	n := len(g.history)
	switch {
	case n == 0:
		out[0], out[1], out[2] = DealJack, DealQueen, DealKing
		return 3
	case n == 1:
		i := 0
		for _, r := range ranks {
			if r != g.history[0] {
				out[i] = r
				i++
			}
		}
		return i
	case n == 2, n == 3 && g.history[2] == Check:
		out[0], out[1] = Check, Bet
		return 2
	default:
		out[0], out[1] = Call, Fold
		return 2
	}
}

func (g *Game) Probas(out []int) int {
	n := len(g.history)
	if n == 0 {
		out[0], out[1], out[2] = 1, 1, 1
		return 3
	}
	// n == 1: P1's card is gone from the 3-card deck; the one remaining
	// card of each other rank is equally likely.
	i := 0
	for _, r := range ranks {
		if r != g.history[0] {
			out[i] = 1
			i++
		}
	}
	return i
}

func (g *Game) Play(a gtocfr.Action) { g.history = append(g.history, a) }
func (g *Game) Undo(gtocfr.Action)   { g.history = g.history[:len(g.history)-1] }

// Payoff replays the betting history's ante/bet/call contributions and, at
// showdown, compares dealt ranks.
func (g *Game) Payoff(player gtocfr.Player) int {
	p1Card, p2Card := g.history[0], g.history[1]
	contrib := [2]int{1, 1}
	folder := -1

	for i := 2; i < len(g.history); i++ {
		actor := (i - 2) % 2 // first betting actor is always P1
		switch g.history[i] {
		case Bet:
			contrib[actor]++
		case Call:
			contrib[actor] = contrib[1-actor]
		case Fold:
			folder = actor
		}
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
		if rankOf(p1Card) > rankOf(p2Card) {
			p1Payoff = c
		} else {
			p1Payoff = -c
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
	m := g.Probas(weights[:])
	_ = m
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

// InfoSetsAndActions replays state's history, returning every (InfoSet,
// Action) pair where player was on the move.
func (g *Game) InfoSetsAndActions(state gtocfr.State, player gtocfr.Player) []gtocfr.InfoSetAction {
	history := decode(state)
	var res []gtocfr.InfoSetAction

	for i := 2; i < len(history); i++ {
		actor := (i - 2) % 2
		actingPlayer := gtocfr.P1
		if actor == 1 {
			actingPlayer = gtocfr.P2
		}
		if actingPlayer != player {
			continue
		}
		res = append(res, gtocfr.InfoSetAction{
			InfoSet: infoSetOf(history[:i], player),
			Action:  history[i],
		})
	}
	return res
}

func decode(state gtocfr.State) []gtocfr.Action {
	s := uint64(state)
	n := int(s >> 60)
	history := make([]gtocfr.Action, n)
	for i := 0; i < n; i++ {
		history[i] = gtocfr.Action((s >> (3 * i)) & 0b111)
	}
	return history
}

// ChanceReachProba is 1/6 for every fully-dealt state: 3 ranks times 2
// remaining choices for the second card, uniform over the 6 ordered deals.
func (g *Game) ChanceReachProba(state gtocfr.State) float64 {
	if len(decode(state)) < 2 {
		return 1
	}
	return 1.0 / 6.0
}
