package exploit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lascar-pacagi/gtocfr"
	"github.com/lascar-pacagi/gtocfr/games/kuhn"
	"github.com/lascar-pacagi/gtocfr/games/rps"
	"github.com/lascar-pacagi/gtocfr/infoset"
	"github.com/lascar-pacagi/gtocfr/strategy"
	"github.com/lascar-pacagi/gtocfr/tree"
)

func TestExploitabilityZeroAtRPSUniformEquilibrium(t *testing.T) {
	g := rps.New()
	tr, err := tree.Build(g)
	require.NoError(t, err)
	tbl := infoset.NewTable(tr)
	avg := strategy.Extract(tr, tbl) // untouched table: every strategy is uniform

	e := Exploitability(tr, avg, g, DefaultOptions())
	assert.LessOrEqual(t, e, 1e-6, "uniform is the RPS equilibrium")
}

func TestBestResponseBeatsUniformKuhn(t *testing.T) {
	g := kuhn.New()
	tr, err := tree.Build(g)
	require.NoError(t, err)
	tbl := infoset.NewTable(tr)
	avg := strategy.Extract(tr, tbl)

	_, v1 := BestResponse(tr, avg, g, gtocfr.P1)
	baseline := AverageValue(tr, avg)

	assert.GreaterOrEqual(t, v1, baseline-1e-9, "best response must be at least as good as average")
}

func TestExploitabilityNonNegative(t *testing.T) {
	g := kuhn.New()
	tr, err := tree.Build(g)
	require.NoError(t, err)
	tbl := infoset.NewTable(tr)
	avg := strategy.Extract(tr, tbl)

	e := Exploitability(tr, avg, g, DefaultOptions())
	require.False(t, math.IsNaN(e))
	assert.GreaterOrEqual(t, e, 0.0)
}
