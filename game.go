// Package gtocfr defines the Game contract shared by every concrete
// extensive-form game the solver packages (tree, kernel, mccfr, strategy,
// exploit) operate on. The contract is the full surface those packages
// consume; game rules, payoff tables, and hand evaluation live entirely
// outside this module.
package gtocfr

// Player identifies whose turn it is at a node. Chance is nature: its
// "decisions" are fixed, publicly known probabilities rather than strategy.
type Player int8

const (
	P1 Player = iota
	P2
	Chance
)

func (p Player) String() string {
	switch p {
	case P1:
		return "P1"
	case P2:
		return "P2"
	case Chance:
		return "Chance"
	default:
		return "Player(?)"
	}
}

// Opponent returns the other player. It must only be called for P1 or P2.
func (p Player) Opponent() Player {
	if p == P1 {
		return P2
	}
	return P1
}

// Action is an opaque small value enumerable 0..MaxActions-1. Actions at
// chance nodes and player nodes share the same value space but are never
// compared across node kinds.
type Action int

// State identifies a concrete history, including both players' private
// information. It is hashable/orderable and used only to key per-state data
// consumed by best-response computation.
type State uint64

// InfoSet identifies what the acting player knows at a node: their private
// information plus the public history. Multiple States can share one
// InfoSet — that is what makes the game imperfect-information.
type InfoSet uint64

// Game is the full set of operations the solver core consumes from a
// concrete extensive-form game. An implementation owns its own State/
// InfoSet bit-packing; the core assumes nothing about it beyond
// hashability and ordering.
type Game interface {
	// MaxPlayerActions bounds the fan-out of any P1/P2 node.
	MaxPlayerActions() int
	// MaxChanceActions bounds the fan-out of any chance node.
	MaxChanceActions() int

	// Reset returns the game to its initial state.
	Reset()
	// GetState returns an identifier for the current history.
	GetState() State
	// SetState restores a previously observed history. SetState(GetState())
	// must be the identity.
	SetState(s State)

	// GetInfoSet returns the calling player's knowledge at the current
	// history. Meaningless (and never consulted) for Chance.
	GetInfoSet(player Player) InfoSet
	// CurrentPlayer returns whose turn it is.
	CurrentPlayer() Player
	// IsChancePlayer is equivalent to CurrentPlayer() == Chance.
	IsChancePlayer() bool
	// GameOver reports whether the current history is terminal.
	GameOver() bool

	// Actions fills out with the legal actions at the current history, in
	// a canonical order that is stable across calls for a given history.
	// It returns the number of actions written.
	Actions(out []Action) int
	// Probas fills out with integer chance weights (any positive sum) for
	// the actions previously returned by Actions. Only valid at chance
	// nodes. It returns the number of weights written.
	Probas(out []int) int

	// Play applies action a, mutating the current history.
	Play(a Action)
	// Undo reverses the most recent Play(a); it must restore the prior
	// state exactly.
	Undo(a Action)

	// Payoff returns the signed P1-perspective payoff at a terminal
	// history, from the given player's point of view (payoff(P2) =
	// -payoff(P1)). Only valid at terminal histories.
	Payoff(player Player) int

	// SampleAction draws one legal chance action according to Probas.
	// Only valid at chance nodes.
	SampleAction() Action

	// InfoSetsAndActions returns, for the given (state, player), the
	// sequence of (InfoSet, Action) pairs that player's strategy traverses
	// in arriving at state. Used only by best-response computation.
	InfoSetsAndActions(s State, player Player) []InfoSetAction
	// ChanceReachProba returns the product of chance probabilities along
	// the root-to-state path. Used only by best-response computation.
	ChanceReachProba(s State) float64
}

// InfoSetAction pairs an InfoSet with the Action taken from it, as returned
// by Game.InfoSetsAndActions.
type InfoSetAction struct {
	InfoSet InfoSet
	Action  Action
}
