// Package tree builds and exposes the compact, pointer-free game-tree
// representation: a single recursive depth-first walk of a Game,
// producing flat, index-based arrays that are read-only and safely shared
// by every CFR/MCCFR worker thereafter.
//
// The representation mirrors original_source/game_tree.h: a node's kind and
// fan-out are packed into one int32 (low 2 bits kind, remaining bits
// fan-out; fan-out 0 marks a terminal), and chance children are stored
// interleaved (child index, integer weight) in the same flat slice used for
// player-node children.
package tree

import (
	"github.com/pkg/errors"

	"github.com/lascar-pacagi/gtocfr"
)

const kindBits = 2
const kindMask = (1 << kindBits) - 1

// Tree is an immutable, flat snapshot of the reachable state space of a
// Game, built once and thereafter safe for unsynchronized concurrent reads.
type Tree struct {
	infoSets      []gtocfr.InfoSet
	actions       []gtocfr.Action
	packed        []int32 // low 2 bits: kind; rest: fan-out (0 => terminal)
	startChildren []int32 // offset into children/actions for this node
	children      []int32 // player: childIdx; chance: interleaved (childIdx, weight); terminal: payoff at children[start]
	chanceProbs   []float64

	infoSetToStates map[gtocfr.InfoSet][]gtocfr.State
	stateToIdx      map[gtocfr.State]int
}

// NumNodes returns the total number of nodes in the tree.
func (t *Tree) NumNodes() int { return len(t.packed) }

// Kind returns the acting player and fan-out of node idx. A fan-out of 0
// means idx is a terminal node; player is meaningless in that case.
func (t *Tree) Kind(idx int) (player gtocfr.Player, fanOut int) {
	p := t.packed[idx]
	return gtocfr.Player(p & kindMask), int(p >> kindBits)
}

// IsTerminal reports whether idx has no children.
func (t *Tree) IsTerminal(idx int) bool {
	return t.packed[idx]>>kindBits == 0
}

// Payoff returns the P1-perspective payoff stored at a terminal node.
func (t *Tree) Payoff(idx int) int {
	start := t.startChildren[idx]
	return int(t.children[start])
}

// InfoSet returns the InfoSet recorded for node idx. It is meaningless (but
// safe to call) at chance and terminal nodes.
func (t *Tree) InfoSet(idx int) gtocfr.InfoSet {
	return t.infoSets[idx]
}

// Action returns the i-th outgoing action label of node idx.
func (t *Tree) Action(idx, i int) gtocfr.Action {
	return t.actions[int(t.startChildren[idx])+i]
}

// Child returns the i-th child of a player node.
func (t *Tree) Child(idx, i int) int {
	return int(t.children[int(t.startChildren[idx])+i])
}

// ChanceChild returns the i-th child and its normalized probability for a
// chance node.
func (t *Tree) ChanceChild(idx, i int) (child int, proba float64) {
	start := int(t.startChildren[idx])
	return int(t.children[start+2*i]), t.chanceProbs[start/2+i]
}

// InfoSetStates returns every State observed during tree-build that shares
// the given player InfoSet. Used only by best-response computation.
func (t *Tree) InfoSetStates(is gtocfr.InfoSet) []gtocfr.State {
	return t.infoSetToStates[is]
}

// StateIdx returns the node index at which State s was first observed.
func (t *Tree) StateIdx(s gtocfr.State) (int, bool) {
	idx, ok := t.stateToIdx[s]
	return idx, ok
}

// Build performs a recursive depth-first walk of g, producing a
// flat Tree. The only possible failures are Game-contract violations (a
// fan-out exceeding the declared bound, a chance node whose weights do not
// match its actions or are negative or sum to zero, a player node with no
// actions, or a State round-trip that doesn't restore the prior history);
// all are programming errors and are returned so the caller can abort with
// a descriptive diagnostic.
func Build(g gtocfr.Game) (*Tree, error) {
	b := &builder{
		g:               g,
		infoSetToStates: make(map[gtocfr.InfoSet][]gtocfr.State),
		stateToIdx:      make(map[gtocfr.State]int),
	}
	g.Reset()
	if _, err := b.visit(); err != nil {
		return nil, err
	}
	return &Tree{
		infoSets:        b.infoSets,
		actions:         b.actions,
		packed:          b.packed,
		startChildren:   b.startChildren,
		children:        b.children,
		chanceProbs:     b.chanceProbs,
		infoSetToStates: b.infoSetToStates,
		stateToIdx:      b.stateToIdx,
	}, nil
}

type builder struct {
	g gtocfr.Game

	infoSets      []gtocfr.InfoSet
	actions       []gtocfr.Action
	packed        []int32
	startChildren []int32
	children      []int32
	chanceProbs   []float64

	infoSetToStates map[gtocfr.InfoSet][]gtocfr.State
	stateToIdx      map[gtocfr.State]int
}

func (b *builder) visit() (int, error) {
	g := b.g
	idx := len(b.packed)
	player := g.CurrentPlayer()
	infoSet := g.GetInfoSet(player)
	state := g.GetState()

	b.infoSets = append(b.infoSets, infoSet)
	b.stateToIdx[state] = idx
	b.startChildren = append(b.startChildren, int32(len(b.children)))
	// Placeholder; overwritten below once fan-out is known.
	b.packed = append(b.packed, 0)

	if g.GameOver() {
		b.packed[idx] = 0
		b.actions = append(b.actions, gtocfr.Action(0))
		b.children = append(b.children, int32(g.Payoff(gtocfr.P1)))
		return idx, nil
	}

	if g.IsChancePlayer() {
		return idx, b.visitChance(idx, g)
	}

	b.infoSetToStates[infoSet] = append(b.infoSetToStates[infoSet], state)
	return idx, b.visitPlayer(idx, player, g)
}

func (b *builder) visitChance(idx int, g gtocfr.Game) error {
	maxN := g.MaxChanceActions()
	actionBuf := make([]gtocfr.Action, maxN)
	n := g.Actions(actionBuf)
	if n > maxN {
		return errors.Errorf("tree: chance node has %d actions, exceeds MaxChanceActions=%d", n, maxN)
	}
	weights := make([]int, maxN)
	nw := g.Probas(weights)
	if nw != n {
		return errors.Errorf("tree: chance node has %d actions but %d probabilities", n, nw)
	}

	var weightSum int
	for i := 0; i < n; i++ {
		if weights[i] < 0 {
			return errors.Errorf("tree: chance node has negative weight %d for action %d", weights[i], i)
		}
		weightSum += weights[i]
	}
	if weightSum <= 0 {
		return errors.New("tree: chance node has non-positive total weight")
	}

	b.packed[idx] = int32(n<<kindBits) | int32(gtocfr.Chance)
	childrenAndProbaStart := len(b.children)
	b.actions = append(b.actions, actionBuf[:n]...)
	// Pad actions by n so it stays aligned with children, which takes 2n
	// slots here.
	b.actions = append(b.actions, make([]gtocfr.Action, n)...)
	b.children = append(b.children, make([]int32, 2*n)...)
	// chanceProbs is indexed by childrenAndProbaStart/2+i (see ChanceChild).
	if need := childrenAndProbaStart/2 + n; need > len(b.chanceProbs) {
		b.chanceProbs = append(b.chanceProbs, make([]float64, need-len(b.chanceProbs))...)
	}

	for i := 0; i < n; i++ {
		a := actionBuf[i]
		before := g.GetState()
		g.Play(a)
		childIdx, err := b.visit()
		if err != nil {
			return err
		}
		g.Undo(a)
		if err := checkRoundTrip(g, before); err != nil {
			return err
		}

		b.children[childrenAndProbaStart+2*i] = int32(childIdx)
		b.children[childrenAndProbaStart+2*i+1] = int32(weights[i])
		b.chanceProbs[childrenAndProbaStart/2+i] = float64(weights[i]) / float64(weightSum)
	}

	return nil
}

func (b *builder) visitPlayer(idx int, player gtocfr.Player, g gtocfr.Game) error {
	maxN := g.MaxPlayerActions()
	actionBuf := make([]gtocfr.Action, maxN)
	n := g.Actions(actionBuf)
	if n > maxN {
		return errors.Errorf("tree: player node has %d actions, exceeds MaxPlayerActions=%d", n, maxN)
	}
	if n == 0 {
		return errors.New("tree: non-terminal node has zero children")
	}

	b.packed[idx] = int32(n<<kindBits) | int32(player)
	childrenStart := len(b.children)
	b.actions = append(b.actions, actionBuf[:n]...)
	b.children = append(b.children, make([]int32, n)...)

	for i := 0; i < n; i++ {
		a := actionBuf[i]
		before := g.GetState()
		g.Play(a)
		childIdx, err := b.visit()
		if err != nil {
			return err
		}
		g.Undo(a)
		if err := checkRoundTrip(g, before); err != nil {
			return err
		}

		b.children[childrenStart+i] = int32(childIdx)
	}

	return nil
}

func checkRoundTrip(g gtocfr.Game, want gtocfr.State) error {
	if got := g.GetState(); got != want {
		return errors.Errorf("tree: Undo did not restore prior state: want %v, got %v", want, got)
	}
	return nil
}
