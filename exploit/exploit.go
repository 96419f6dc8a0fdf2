// Package exploit computes best responses and exploitability: how
// much a fixed average strategy leaves on the table against a
// worst-case opponent.
//
// Grounded directly on original_source/best_response.h's
// fill_best_response, generalized from its Strategy<Game,T> wire type to
// operate on strategy.Average.
package exploit

import (
	"math"

	"github.com/lascar-pacagi/gtocfr"
	"github.com/lascar-pacagi/gtocfr/strategy"
	"github.com/lascar-pacagi/gtocfr/tree"
)

// Options configures Exploitability's handling of a near-zero game value.
type Options struct {
	// ValueEpsilon: below this magnitude, v is treated as zero and
	// Exploitability returns the unnormalized numerator
	// |v1-v| + |v2-v| instead of dividing by 2|v|: the ratio is
	// ill-conditioned as v -> 0, e.g. symmetric zero-sum games like
	// Rock-Paper-Scissors where the equilibrium value is exactly 0.
	ValueEpsilon float64
}

// DefaultOptions returns the default epsilon of 1e-9.
func DefaultOptions() Options {
	return Options{ValueEpsilon: 1e-9}
}

// BestResponse computes, for the given player, the pure deterministic
// strategy that maximizes that player's payoff against avg's fixed
// distribution for the opponent, along with its value (from player's
// perspective). It memoizes per InfoSet via a map, exactly as
// fill_best_response does, and aggregates over every State sharing an
// InfoSet weighted by that State's chance-reach probability and the
// opponent's probability of reaching it under avg.
func BestResponse(t *tree.Tree, avg *strategy.Average, g gtocfr.Game, player gtocfr.Player) (*Response, float64) {
	br := &Response{actions: make(map[gtocfr.InfoSet][]gtocfr.Action)}
	values := make(map[gtocfr.InfoSet]float64)
	v := fillBestResponse(t, avg, g, player, 0, values, br)
	return br, v
}

// Response is a pure strategy: exactly one action per InfoSet the best
// response visits.
type Response struct {
	actions map[gtocfr.InfoSet][]gtocfr.Action
}

// Action returns the single action Response plays at is.
func (r *Response) Action(is gtocfr.InfoSet) (gtocfr.Action, bool) {
	acts, ok := r.actions[is]
	if !ok || len(acts) == 0 {
		return 0, false
	}
	return acts[0], true
}

func fillBestResponse(t *tree.Tree, avg *strategy.Average, g gtocfr.Game, player gtocfr.Player, idx int, values map[gtocfr.InfoSet]float64, br *Response) float64 {
	nodePlayer, fanOut := t.Kind(idx)
	if fanOut == 0 {
		payoff := float64(t.Payoff(idx))
		if player == gtocfr.P1 {
			return payoff
		}
		return -payoff
	}

	if nodePlayer == gtocfr.Chance {
		var u float64
		for i := 0; i < fanOut; i++ {
			child, p := t.ChanceChild(idx, i)
			u += p * fillBestResponse(t, avg, g, player, child, values, br)
		}
		return u
	}

	is := t.InfoSet(idx)

	if nodePlayer != player {
		strat, ok := avg.Strategy(is)
		if !ok {
			strat = uniform(fanOut)
		}
		var u float64
		for i := 0; i < fanOut; i++ {
			u += strat[i] * fillBestResponse(t, avg, g, player, t.Child(idx, i), values, br)
		}
		return u
	}

	if v, ok := values[is]; ok {
		return v
	}

	opponent := player.Opponent()
	utils := make([]float64, fanOut)
	var probaSum float64

	for _, state := range t.InfoSetStates(is) {
		p := g.ChanceReachProba(state)
		for _, ia := range g.InfoSetsAndActions(state, opponent) {
			oppStrat, ok := avg.Strategy(ia.InfoSet)
			if !ok {
				continue
			}
			oppActions, _ := avg.Actions(ia.InfoSet)
			ai := indexOf(oppActions, ia.Action)
			if ai < 0 {
				p = 0
				break
			}
			p *= oppStrat[ai]
		}
		if p == 0 {
			continue
		}
		probaSum += p

		stateIdx, ok := t.StateIdx(state)
		if !ok {
			continue
		}
		for i := 0; i < fanOut; i++ {
			utils[i] += p * fillBestResponse(t, avg, g, player, t.Child(stateIdx, i), values, br)
		}
	}

	bestValue := math.Inf(-1)
	bestAction := 0
	for i, u := range utils {
		if u > bestValue {
			bestValue = u
			bestAction = i
		}
	}

	actions := make([]gtocfr.Action, fanOut)
	for i := 0; i < fanOut; i++ {
		actions[i] = t.Action(idx, i)
	}
	br.actions[is] = []gtocfr.Action{actions[bestAction]}

	var v float64
	if probaSum != 0 {
		v = bestValue / probaSum
	}
	values[is] = v
	return v
}

func indexOf(actions []gtocfr.Action, a gtocfr.Action) int {
	for i, x := range actions {
		if x == a {
			return i
		}
	}
	return -1
}

func uniform(n int) []float64 {
	out := make([]float64, n)
	p := 1.0 / float64(n)
	for i := range out {
		out[i] = p
	}
	return out
}

// AverageValue computes player P1's expected payoff when both players play
// avg, by a plain full-tree traversal (no regret/strategy accumulation).
// This is the "v" term in Exploitability.
func AverageValue(t *tree.Tree, avg *strategy.Average) float64 {
	return averageValue(t, avg, 0)
}

func averageValue(t *tree.Tree, avg *strategy.Average, idx int) float64 {
	player, fanOut := t.Kind(idx)
	if fanOut == 0 {
		return float64(t.Payoff(idx))
	}
	if player == gtocfr.Chance {
		var u float64
		for i := 0; i < fanOut; i++ {
			child, p := t.ChanceChild(idx, i)
			u += p * averageValue(t, avg, child)
		}
		return u
	}

	is := t.InfoSet(idx)
	strat, ok := avg.Strategy(is)
	if !ok {
		strat = uniform(fanOut)
	}
	var u float64
	for i := 0; i < fanOut; i++ {
		u += strat[i] * averageValue(t, avg, t.Child(idx, i))
	}
	return u
}

// Exploitability computes (|v1-v| + |v2-v|) / (2|v|), where v1/v2 are
// P1's/P2's best-response values against avg and v is P1's value when both
// players play avg. When |v| falls below opts.ValueEpsilon the ratio is
// returned unnormalized, i.e. just |v1-v| + |v2-v| (see Options.ValueEpsilon).
func Exploitability(t *tree.Tree, avg *strategy.Average, g gtocfr.Game, opts Options) float64 {
	_, v1 := BestResponse(t, avg, g, gtocfr.P1)
	_, v2response := BestResponse(t, avg, g, gtocfr.P2)
	// v2response is from P2's perspective; convert to P1's perspective to
	// match v1 and v's sign convention.
	v2 := -v2response

	v := AverageValue(t, avg)

	num := math.Abs(v1-v) + math.Abs(v2-v)
	if math.Abs(v) < opts.ValueEpsilon {
		return num
	}
	return num / (2 * math.Abs(v))
}
