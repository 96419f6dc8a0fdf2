// Package strategy extracts and queries the average strategy a
// CFR/MCCFR run converges to, from the cumulative strategy sums stored in
// an infoset.Table.
package strategy

import (
	"math/rand"

	"github.com/lascar-pacagi/gtocfr"
	"github.com/lascar-pacagi/gtocfr/infoset"
	"github.com/lascar-pacagi/gtocfr/tree"
)

// Average is a read-only snapshot of the average strategy at every player
// InfoSet reachable in a Tree, keyed by InfoSet rather than tree node so it
// can be queried directly from game states without a tree walk.
type Average struct {
	byInfoSet map[gtocfr.InfoSet][]float64
	actions   map[gtocfr.InfoSet][]gtocfr.Action
}

// Extract walks every player node of t once, normalizing tbl's cumulative
// strategy sums into a probability distribution per InfoSet. It is a
// single-threaded, read-only pass: safe to call once a Solve run has
// finished mutating tbl.
func Extract(t *tree.Tree, tbl *infoset.Table) *Average {
	avg := &Average{
		byInfoSet: make(map[gtocfr.InfoSet][]float64),
		actions:   make(map[gtocfr.InfoSet][]gtocfr.Action),
	}

	for idx := 0; idx < t.NumNodes(); idx++ {
		if t.IsTerminal(idx) {
			continue
		}
		player, n := t.Kind(idx)
		if player == gtocfr.Chance {
			continue
		}

		is := t.InfoSet(idx)
		if _, ok := avg.byInfoSet[is]; ok {
			continue
		}

		entry := tbl.Entry(idx)
		avg.byInfoSet[is] = entry.AverageStrategy()

		actions := make([]gtocfr.Action, n)
		for i := 0; i < n; i++ {
			actions[i] = t.Action(idx, i)
		}
		avg.actions[is] = actions
	}

	return avg
}

// Strategy returns the average strategy distribution at InfoSet is,
// parallel to Actions(is). ok is false if is was never observed while
// building the tree this Average was extracted from.
func (a *Average) Strategy(is gtocfr.InfoSet) (probs []float64, ok bool) {
	p, ok := a.byInfoSet[is]
	return p, ok
}

// Actions returns the action labels corresponding to Strategy(is)'s
// distribution, in the same order.
func (a *Average) Actions(is gtocfr.InfoSet) ([]gtocfr.Action, bool) {
	acts, ok := a.actions[is]
	return acts, ok
}

// Action samples a single action at InfoSet is according to its average
// strategy distribution, using rng. ok is false if is was never observed
// while building the tree this Average was extracted from.
func (a *Average) Action(is gtocfr.InfoSet, rng *rand.Rand) (gtocfr.Action, bool) {
	probs, ok := a.byInfoSet[is]
	if !ok {
		return 0, false
	}
	acts := a.actions[is]

	r := rng.Float64()
	var cum float64
	for i, p := range probs {
		cum += p
		if r < cum {
			return acts[i], true
		}
	}
	return acts[len(acts)-1], true
}

// InfoSets returns every InfoSet this Average has a distribution for.
func (a *Average) InfoSets() []gtocfr.InfoSet {
	out := make([]gtocfr.InfoSet, 0, len(a.byInfoSet))
	for is := range a.byInfoSet {
		out = append(out, is)
	}
	return out
}
