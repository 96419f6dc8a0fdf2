package kernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lascar-pacagi/gtocfr"
	"github.com/lascar-pacagi/gtocfr/exploit"
	"github.com/lascar-pacagi/gtocfr/games/kuhn"
	"github.com/lascar-pacagi/gtocfr/games/rps"
	"github.com/lascar-pacagi/gtocfr/infoset"
	"github.com/lascar-pacagi/gtocfr/strategy"
	"github.com/lascar-pacagi/gtocfr/tree"
)

func TestOptionsValidate(t *testing.T) {
	o := DefaultOptions()
	assert.NoError(t, o.Validate())

	bad := o
	bad.Variant = Variant(99)
	assert.Error(t, bad.Validate(), "invalid variant")

	bad = o
	bad.PruneEpsilon = -1
	assert.Error(t, bad.Validate(), "negative PruneEpsilon")
}

func TestSolveRPSConvergesToUniform(t *testing.T) {
	g := rps.New()
	tr, err := tree.Build(g)
	require.NoError(t, err)
	tbl := infoset.NewTable(tr)

	opts := Options{Variant: Vanilla, Workers: 1}
	require.NoError(t, Solve(context.Background(), tr, tbl, opts, 2000))

	avg := strategy.Extract(tr, tbl)
	for _, is := range avg.InfoSets() {
		probs, _ := avg.Strategy(is)
		for _, p := range probs {
			assert.InDelta(t, 1.0/3.0, p, 0.05, "infoset %v strategy %v", is, probs)
		}
	}

	value := exploit.AverageValue(tr, avg)
	assert.InDelta(t, 0.0, value, 0.05, "RPS game value under average strategy")
}

func TestSolveKuhnApproximatesKnownValue(t *testing.T) {
	g := kuhn.New()
	tr, err := tree.Build(g)
	require.NoError(t, err)
	tbl := infoset.NewTable(tr)

	opts := DefaultOptions()
	opts.Workers = 1
	require.NoError(t, Solve(context.Background(), tr, tbl, opts, 5000))

	avg := strategy.Extract(tr, tbl)
	value := exploit.AverageValue(tr, avg)

	const want = -1.0 / 18.0
	assert.InDelta(t, want, value, 0.05, "Kuhn game value")
}

func TestCFRPlusNonNegativeRegrets(t *testing.T) {
	g := kuhn.New()
	tr, err := tree.Build(g)
	require.NoError(t, err)
	tbl := infoset.NewTable(tr)

	opts := Options{Variant: CFRPlus, Workers: 1}
	require.NoError(t, Solve(context.Background(), tr, tbl, opts, 200))

	for idx := 0; idx < tr.NumNodes(); idx++ {
		if tr.IsTerminal(idx) {
			continue
		}
		player, _ := tr.Kind(idx)
		if player == gtocfr.Chance {
			continue
		}
		r := tbl.Entry(idx).RawRegrets(true)
		for j, v := range r {
			assert.GreaterOrEqual(t, v, 0.0, "node %d action %d under CFR+", idx, j)
		}
	}
}
