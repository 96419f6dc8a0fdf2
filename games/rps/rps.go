// Package rps implements Rock-Paper-Scissors as a sequential extensive-form
// game: P1 moves, then P2 moves without observing P1's choice. The
// simultaneity is modeled the way original_source/tictactoe.h (its actual
// name notwithstanding) models it: the tree is sequential, but P2's InfoSet
// is a constant independent of P1's action, so P2's strategy can never
// condition on what P1 played.
package rps

import (
	"math/rand"
	"time"

	"github.com/lascar-pacagi/gtocfr"
)

const (
	Rock gtocfr.Action = iota
	Paper
	Scissors
)

// beats[a][b] is true when a beats b.
var beats = [3][3]bool{
	Rock:     {Scissors: true},
	Paper:    {Rock: true},
	Scissors: {Paper: true},
}

// Game implements gtocfr.Game. The packed State is just the two actions
// played so far, 2 bits each, plus a play count.
type Game struct {
	history []gtocfr.Action
	rng     *rand.Rand
}

// New returns a ready-to-use Rock-Paper-Scissors game.
func New() *Game {
	return &Game{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (g *Game) MaxPlayerActions() int { return 3 }
func (g *Game) MaxChanceActions() int { return 1 }

func (g *Game) Reset() { g.history = g.history[:0] }

func (g *Game) GetState() gtocfr.State {
	var s uint64
	for i, a := range g.history {
		s |= uint64(a) << (2 * i)
	}
	s |= uint64(len(g.history)) << 60
	return gtocfr.State(s)
}

func (g *Game) SetState(state gtocfr.State) {
	s := uint64(state)
	n := int(s >> 60)
	g.history = g.history[:0]
	for i := 0; i < n; i++ {
		g.history = append(g.history, gtocfr.Action((s>>(2*i))&0b11))
	}
}

// GetInfoSet returns a constant per player: Rock-Paper-Scissors has no
// public history either player conditions on beyond whose turn it is.
func (g *Game) GetInfoSet(player gtocfr.Player) gtocfr.InfoSet {
	return gtocfr.InfoSet(player)
}

func (g *Game) CurrentPlayer() gtocfr.Player {
	if len(g.history) == 0 {
		return gtocfr.P1
	}
	return gtocfr.P2
}

func (g *Game) IsChancePlayer() bool { return false }
func (g *Game) GameOver() bool       { return len(g.history) == 2 }

func (g *Game) Actions(out []gtocfr.Action) int {
	out[0], out[1], out[2] = Rock, Paper, Scissors
	return 3
}

func (g *Game) Probas(out []int) int {
	panic("rps: Probas called at a player node")
}

func (g *Game) Play(a gtocfr.Action)  { g.history = append(g.history, a) }
func (g *Game) Undo(gtocfr.Action) { g.history = g.history[:len(g.history)-1] }

func (g *Game) Payoff(player gtocfr.Player) int {
	a1, a2 := g.history[0], g.history[1]
	var p1payoff int
	switch {
	case a1 == a2:
		p1payoff = 0
	case beats[a1][a2]:
		p1payoff = 1
	default:
		p1payoff = -1
	}
	if player == gtocfr.P1 {
		return p1payoff
	}
	return -p1payoff
}

func (g *Game) SampleAction() gtocfr.Action {
	panic("rps: SampleAction called at a player node")
}

// InfoSetsAndActions returns the single (InfoSet, Action) pair player took
// to reach state, if any — RPS has exactly one decision per player.
func (g *Game) InfoSetsAndActions(state gtocfr.State, player gtocfr.Player) []gtocfr.InfoSetAction {
	s := uint64(state)
	n := int(s >> 60)

	var idx int
	switch player {
	case gtocfr.P1:
		idx = 0
	case gtocfr.P2:
		idx = 1
	default:
		return nil
	}
	if n <= idx {
		return nil
	}
	a := gtocfr.Action((s >> (2 * idx)) & 0b11)
	return []gtocfr.InfoSetAction{{InfoSet: gtocfr.InfoSet(player), Action: a}}
}

// ChanceReachProba is always 1: Rock-Paper-Scissors has no chance nodes.
func (g *Game) ChanceReachProba(gtocfr.State) float64 { return 1 }
