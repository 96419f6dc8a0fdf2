// Package mccfr implements Monte Carlo CFR: three sampling variants
// that trade a full-tree traversal for a sampled part of the tree per
// iteration, trading variance for per-iteration cost.
//
// Grounded directly on original_source/mccfr.h's
// external_sampling_mccfr/outcome_sampling_mccfr/chance_sampling_mccfr, and
// on the infoset.Table/tree.Tree types shared with package kernel.
package mccfr

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/golang/glog"

	"github.com/lascar-pacagi/gtocfr"
	"github.com/lascar-pacagi/gtocfr/infoset"
	"github.com/lascar-pacagi/gtocfr/tree"
)

// Variant selects which nodes get sampled versus fully explored.
type Variant int

const (
	// External samples the opponent's and chance's actions, fully explores
	// the updating player's actions. Lower variance than Outcome; the
	// default for poker-sized games.
	External Variant = iota
	// Outcome samples every player's action along a single trajectory.
	// Highest variance, cheapest per iteration; uses importance-sampling
	// correction at the leaf.
	Outcome
	// Chance samples only chance nodes, fully exploring both players. Lower
	// variance than External when the game has many chance outcomes.
	Chance
)

func (v Variant) String() string {
	switch v {
	case External:
		return "external-sampling"
	case Outcome:
		return "outcome-sampling"
	case Chance:
		return "chance-sampling"
	default:
		return "variant(?)"
	}
}

// Options configures a Solve call.
type Options struct {
	Variant Variant
	// Workers is the number of goroutines iterations are dispatched across.
	// Each worker owns a private PRNG; never share one across goroutines.
	Workers int
	// Seed fixes the PRNG stream each worker derives its seed from. Zero
	// means derive from the clock, as before. With Workers=1 and a nonzero
	// Seed, two Solve runs over freshly built tables produce byte-identical
	// regret/strategy tables.
	Seed int64
}

// Validate reports configuration mistakes.
func (o Options) Validate() error {
	if o.Variant < External || o.Variant > Chance {
		return errors.Errorf("mccfr: invalid variant %d", o.Variant)
	}
	return nil
}

// DefaultOptions returns External sampling, single-threaded.
func DefaultOptions() Options {
	return Options{Variant: External, Workers: 1}
}

// Solve dispatches nIterations sampled trajectories across Options.Workers
// goroutines, alternating the updating player across odd/even iteration
// numbers, same alternation rule as the full-traversal kernel.
func Solve(ctx context.Context, t *tree.Tree, tbl *infoset.Table, opts Options, nIterations int) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	baseSeed := opts.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	var iterCounter atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		seed := baseSeed ^ int64(w)<<32 ^ int64(w)
		g.Go(func() error {
			// Thread-local PRNG: original_source/mccfr.h's PRNG is
			// thread_local, seeded here from a base seed (the clock, unless
			// the caller fixed it) plus the worker id so that no two workers
			// share a stream, while Workers=1 with a fixed Seed is
			// bit-reproducible run over run.
			rng := rand.New(rand.NewSource(seed))
			s := &sampler{tree: t, table: tbl, variant: opts.Variant, rng: rng}
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				iter := int(iterCounter.Add(1))
				if iter > nIterations {
					return nil
				}

				updatingPlayer := gtocfr.P1
				if iter%2 == 0 {
					updatingPlayer = gtocfr.P2
				}
				s.run(updatingPlayer)
			}
		})
	}

	err := g.Wait()
	glog.V(1).Infof("mccfr.Solve: variant=%v ran %d iterations over %d info sets", opts.Variant, nIterations, tbl.NumInfoSets())
	return err
}

type sampler struct {
	tree    *tree.Tree
	table   *infoset.Table
	variant Variant
	rng     *rand.Rand
}

func (s *sampler) run(updatingPlayer gtocfr.Player) {
	switch s.variant {
	case External:
		s.external(0, updatingPlayer, 1, 1)
	case Outcome:
		s.outcome(0, updatingPlayer, 1, 1, 1)
	case Chance:
		s.chance(0, updatingPlayer, 1, 1)
	default:
		panic("mccfr: unreachable variant")
	}
}

// sampleAction draws an index in [0,n) from a (possibly unnormalized, but
// here always normalized) discrete distribution probs[:n].
func (s *sampler) sampleAction(probs []float64) int {
	r := s.rng.Float64()
	var cum float64
	for i, p := range probs {
		cum += p
		if r < cum {
			return i
		}
	}
	return len(probs) - 1
}

// external implements External-sampling MCCFR: opponent and chance actions
// are sampled, the updating player's actions are all explored.
func (s *sampler) external(idx int, updatingPlayer gtocfr.Player, piUpdating, piOpp float64) float64 {
	player, fanOut := s.tree.Kind(idx)
	if fanOut == 0 {
		payoff := float64(s.tree.Payoff(idx))
		if updatingPlayer == gtocfr.P1 {
			return payoff
		}
		return -payoff
	}

	if player == gtocfr.Chance {
		probs := make([]float64, fanOut)
		for i := range probs {
			_, probs[i] = s.tree.ChanceChild(idx, i)
		}
		a := s.sampleAction(probs)
		child, _ := s.tree.ChanceChild(idx, a)
		return s.external(child, updatingPlayer, piUpdating, piOpp)
	}

	entry := s.table.Entry(idx)
	strategy := entry.CurrentStrategy(false)

	if player == updatingPlayer {
		actionValues := make([]float64, fanOut)
		var nodeValue float64
		for i := 0; i < fanOut; i++ {
			actionValues[i] = s.external(s.tree.Child(idx, i), updatingPlayer, piUpdating*strategy[i], piOpp)
			nodeValue += strategy[i] * actionValues[i]
		}

		deltaR := make([]float64, fanOut)
		deltaS := make([]float64, fanOut)
		for i := 0; i < fanOut; i++ {
			deltaR[i] = piOpp * (actionValues[i] - nodeValue)
			deltaS[i] = piUpdating * strategy[i]
		}
		entry.Accumulate(deltaR, deltaS, false)
		return nodeValue
	}

	a := s.sampleAction(strategy)
	return s.external(s.tree.Child(idx, a), updatingPlayer, piUpdating, piOpp*strategy[a])
}

// outcome implements Outcome-sampling MCCFR: every player's action is
// sampled along one trajectory; sampleProb carries the importance-sampling
// correction applied at the leaf.
func (s *sampler) outcome(idx int, updatingPlayer gtocfr.Player, piUpdating, piOpp, sampleProb float64) float64 {
	player, fanOut := s.tree.Kind(idx)
	if fanOut == 0 {
		payoff := float64(s.tree.Payoff(idx))
		utility := payoff
		if updatingPlayer == gtocfr.P2 {
			utility = -payoff
		}
		return utility / sampleProb
	}

	if player == gtocfr.Chance {
		probs := make([]float64, fanOut)
		for i := range probs {
			_, probs[i] = s.tree.ChanceChild(idx, i)
		}
		a := s.sampleAction(probs)
		child, p := s.tree.ChanceChild(idx, a)
		return s.outcome(child, updatingPlayer, piUpdating, piOpp, sampleProb*p)
	}

	entry := s.table.Entry(idx)
	strategy := entry.CurrentStrategy(false)
	a := s.sampleAction(strategy)
	actionProb := strategy[a]

	if player == updatingPlayer {
		value := s.outcome(s.tree.Child(idx, a), updatingPlayer, piUpdating*actionProb, piOpp, sampleProb*actionProb)

		deltaR := make([]float64, fanOut)
		deltaS := make([]float64, fanOut)
		deltaR[a] = piOpp * value
		deltaS[a] = piUpdating
		entry.Accumulate(deltaR, deltaS, false)
		return value
	}

	return s.outcome(s.tree.Child(idx, a), updatingPlayer, piUpdating, piOpp*actionProb, sampleProb*actionProb)
}

// chance implements Chance-sampling MCCFR: only chance nodes are sampled;
// both players' actions are fully explored. Only updatingPlayer's nodes
// accumulate regret/strategy deltas this iteration, the same alternation
// rule applied uniformly across all three variants.
func (s *sampler) chance(idx int, updatingPlayer gtocfr.Player, pi1, pi2 float64) float64 {
	player, fanOut := s.tree.Kind(idx)
	if fanOut == 0 {
		return float64(s.tree.Payoff(idx))
	}

	if player == gtocfr.Chance {
		probs := make([]float64, fanOut)
		for i := range probs {
			_, probs[i] = s.tree.ChanceChild(idx, i)
		}
		a := s.sampleAction(probs)
		child, _ := s.tree.ChanceChild(idx, a)
		return s.chance(child, updatingPlayer, pi1, pi2)
	}

	entry := s.table.Entry(idx)
	strategy := entry.CurrentStrategy(false)

	utils := make([]float64, fanOut)
	var u float64
	for i := 0; i < fanOut; i++ {
		if player == gtocfr.P1 {
			utils[i] = s.chance(s.tree.Child(idx, i), updatingPlayer, strategy[i]*pi1, pi2)
		} else {
			utils[i] = s.chance(s.tree.Child(idx, i), updatingPlayer, pi1, strategy[i]*pi2)
		}
		u += strategy[i] * utils[i]
	}

	if player == updatingPlayer {
		deltaR := make([]float64, fanOut)
		deltaS := make([]float64, fanOut)
		if player == gtocfr.P1 {
			for i := 0; i < fanOut; i++ {
				deltaR[i] = pi2 * (utils[i] - u)
				deltaS[i] = pi1 * strategy[i]
			}
		} else {
			for i := 0; i < fanOut; i++ {
				deltaR[i] = pi1 * (u - utils[i])
				deltaS[i] = pi2 * strategy[i]
			}
		}
		entry.Accumulate(deltaR, deltaS, false)
	}

	return u
}
