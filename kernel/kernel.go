// Package kernel implements the CFR iteration family: vanilla CFR,
// Linear CFR, CFR+, and Discounted CFR (DCFR), sharing one recursive
// traversal whose only difference across variants is the regret/strategy
// weighting policy applied before accumulating into the info-set table.
package kernel

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/golang/glog"

	"github.com/lascar-pacagi/gtocfr"
	"github.com/lascar-pacagi/gtocfr/infoset"
	"github.com/lascar-pacagi/gtocfr/tree"
)

// Variant selects the regret/strategy weighting policy. It is a closed,
// compile-time enumeration: the hot recursive path never
// dispatches through an interface, only through the switch in Options.weights.
type Variant int

const (
	Vanilla Variant = iota
	Linear
	CFRPlus
	Discounted
)

func (v Variant) String() string {
	switch v {
	case Vanilla:
		return "vanilla"
	case Linear:
		return "linear"
	case CFRPlus:
		return "cfr+"
	case Discounted:
		return "dcfr"
	default:
		return "variant(?)"
	}
}

// DiscountParams are the DCFR exponents (Brown & Sandholm). They are
// ignored by every other variant. Defaults: alpha=1.5,
// beta=0, gamma=2.
type DiscountParams struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

// DefaultDiscountParams returns the standard Brown & Sandholm DCFR configuration.
func DefaultDiscountParams() DiscountParams {
	return DiscountParams{Alpha: 1.5, Beta: 0, Gamma: 2}
}

// Options configures a Solve call.
type Options struct {
	Variant  Variant
	Discount DiscountParams
	// PruneEpsilon: branches where both player reach probabilities fall
	// below this threshold contribute zero and are skipped. Applied to
	// vanilla/Linear/DCFR only; CFR+ requires every branch.
	PruneEpsilon float64
	// Workers is the number of goroutines iterations are dispatched
	// across. Defaults to 1 if <= 0.
	Workers int
}

// Validate reports configuration mistakes. Unlike Game-contract violations
// (which abort the process), a misconfigured Options is a recoverable error
// the caller should fix before calling Solve.
func (o Options) Validate() error {
	if o.Variant < Vanilla || o.Variant > Discounted {
		return errors.Errorf("kernel: invalid variant %d", o.Variant)
	}
	if o.PruneEpsilon < 0 {
		return errors.New("kernel: PruneEpsilon must be >= 0")
	}
	if o.Variant == Discounted {
		if o.Discount.Alpha < 0 || o.Discount.Beta < 0 || o.Discount.Gamma < 0 {
			return errors.New("kernel: DCFR exponents must be >= 0")
		}
	}
	return nil
}

// DefaultOptions returns Discounted CFR with its standard parameters and a
// pruning epsilon of 1e-6.
func DefaultOptions() Options {
	return Options{
		Variant:      Discounted,
		Discount:     DefaultDiscountParams(),
		PruneEpsilon: 1e-6,
		Workers:      1,
	}
}

func (o Options) lockedRead() bool {
	return o.Variant == CFRPlus
}

func (o Options) floorRegretAtZero() bool {
	return o.Variant == CFRPlus
}

func (o Options) pruningEnabled() bool {
	return o.Variant != CFRPlus
}

// weights computes, for the player node's current regret vector, the
// per-action regret weight w_R(t) and the scalar strategy weight w_S(t),
// one switch case per variant.
func (o Options) weights(t int, regrets []float64, wR []float64) (wS float64) {
	switch o.Variant {
	case Vanilla:
		for i := range wR {
			wR[i] = 1
		}
		return 1
	case Linear:
		tf := float64(t)
		for i := range wR {
			wR[i] = tf
		}
		return tf
	case CFRPlus:
		for i := range wR {
			wR[i] = 1
		}
		return float64(t)
	case Discounted:
		tf := float64(t)
		alphaTerm := math.Pow(tf, o.Discount.Alpha)
		posWeight := alphaTerm / (alphaTerm + 1)
		betaTerm := math.Pow(tf, o.Discount.Beta)
		negWeight := betaTerm / (betaTerm + 1)
		for i, r := range regrets {
			if r > 0 {
				wR[i] = posWeight
			} else {
				wR[i] = negWeight
			}
		}
		base := tf / (tf + 1)
		return math.Pow(base, o.Discount.Gamma)
	default:
		panic("kernel: unreachable variant")
	}
}

// Solve dispatches nIterations full-tree CFR iterations across
// Options.Workers goroutines, alternating the updating player across
// odd/even iteration numbers.
// Accumulated regret/strategy deltas land in tbl; the tree itself is never
// mutated and needs no synchronization among readers.
func Solve(ctx context.Context, t *tree.Tree, tbl *infoset.Table, opts Options, nIterations int) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	var iterCounter atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			k := &kernel{tree: t, table: tbl, opts: opts}
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
				k.run(updatingPlayer, iter)
			}
		})
	}

	err := g.Wait()
	glog.V(1).Infof("kernel.Solve: variant=%v ran %d iterations over %d info sets", opts.Variant, nIterations, tbl.NumInfoSets())
	return err
}

type kernel struct {
	tree  *tree.Tree
	table *infoset.Table
	opts  Options
}

func (k *kernel) run(updatingPlayer gtocfr.Player, iter int) float64 {
	return k.visit(0, updatingPlayer, 1, 1, 1, iter)
}

// visit implements one full-tree traversal, recursing by node kind and
// accumulating weighted regret/strategy deltas at nodes owned by
// updatingPlayer.
func (k *kernel) visit(idx int, updatingPlayer gtocfr.Player, pi1, pi2, piChance float64, iter int) float64 {
	if k.opts.pruningEnabled() && pi1 < k.opts.PruneEpsilon && pi2 < k.opts.PruneEpsilon {
		return 0
	}

	player, fanOut := k.tree.Kind(idx)
	if fanOut == 0 {
		return float64(k.tree.Payoff(idx))
	}

	if player == gtocfr.Chance {
		var ev float64
		for i := 0; i < fanOut; i++ {
			child, p := k.tree.ChanceChild(idx, i)
			ev += p * k.visit(child, updatingPlayer, pi1, pi2, piChance*p, iter)
		}
		return ev
	}

	entry := k.table.Entry(idx)
	strategy := entry.CurrentStrategy(k.opts.lockedRead())

	utils := make([]float64, fanOut)
	var v float64
	for i := 0; i < fanOut; i++ {
		child := k.tree.Child(idx, i)
		var u float64
		if player == gtocfr.P1 {
			u = k.visit(child, updatingPlayer, strategy[i]*pi1, pi2, piChance, iter)
		} else {
			u = k.visit(child, updatingPlayer, pi1, strategy[i]*pi2, piChance, iter)
		}
		utils[i] = u
		v += strategy[i] * u
	}

	if player == updatingPlayer {
		piSelf, piOpp := pi1, pi2
		if player == gtocfr.P2 {
			piSelf, piOpp = pi2, pi1
		}

		regrets := entry.RawRegrets(k.opts.lockedRead())
		wR := make([]float64, fanOut)
		wS := k.opts.weights(iter, regrets, wR)

		deltaR := make([]float64, fanOut)
		deltaS := make([]float64, fanOut)
		for i := 0; i < fanOut; i++ {
			diff := utils[i] - v
			if player == gtocfr.P2 {
				diff = -diff
			}
			deltaR[i] = wR[i] * piOpp * piChance * diff
			deltaS[i] = wS * piSelf * strategy[i]
		}
		entry.Accumulate(deltaR, deltaS, k.opts.floorRegretAtZero())
	}

	return v
}
