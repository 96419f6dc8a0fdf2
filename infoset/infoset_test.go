package infoset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lascar-pacagi/gtocfr/games/kuhn"
	"github.com/lascar-pacagi/gtocfr/tree"
)

func buildKuhnTable(t *testing.T) (*tree.Tree, *Table) {
	t.Helper()
	tr, err := tree.Build(kuhn.New())
	require.NoError(t, err)
	return tr, NewTable(tr)
}

func TestCurrentStrategyUniformAtStart(t *testing.T) {
	_, tbl := buildKuhnTable(t)
	require.NotZero(t, tbl.NumInfoSets())

	e := tbl.entries[0]
	strat := e.CurrentStrategy(false)
	want := 1.0 / float64(e.NumActions())
	for i, p := range strat {
		assert.InDelta(t, want, p, 1e-12, "strategy[%d]", i)
	}
}

func TestAccumulateAndRegretMatching(t *testing.T) {
	_, tbl := buildKuhnTable(t)
	e := tbl.entries[0]
	n := e.NumActions()

	deltaR := make([]float64, n)
	deltaR[0] = 3
	if n > 1 {
		deltaR[1] = 1
	}
	deltaS := make([]float64, n)
	e.Accumulate(deltaR, deltaS, false)

	strat := e.CurrentStrategy(false)
	assert.InDelta(t, 0.75, strat[0], 1e-9, "regret matching on [3,1,...]")

	total := 0.0
	for _, p := range strat {
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-9, "strategy must sum to 1")
}

func TestAccumulateIsAdditive(t *testing.T) {
	_, tbl := buildKuhnTable(t)
	e := tbl.entries[0]
	n := e.NumActions()

	deltaR := make([]float64, n)
	deltaR[0] = 2
	deltaS := make([]float64, n)
	deltaS[0] = 5

	e.Accumulate(deltaR, deltaS, false)
	e.Accumulate(deltaR, deltaS, false)

	r := e.RawRegrets(false)
	assert.InDelta(t, 4.0, r[0], 1e-9, "two additions of 2")

	avg := e.AverageStrategy()
	total := 0.0
	for _, p := range avg {
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-9, "average strategy must sum to 1")
}

func TestCFRPlusFloorsRegretAtZero(t *testing.T) {
	_, tbl := buildKuhnTable(t)
	e := tbl.entries[0]
	n := e.NumActions()

	deltaR := make([]float64, n)
	deltaR[0] = -5
	e.Accumulate(deltaR, make([]float64, n), true)

	r := e.RawRegrets(true)
	assert.Zero(t, r[0], "CFR+ regret floor must clamp to 0")
}

func TestEntryPanicsForChanceOrTerminalNode(t *testing.T) {
	tr, tbl := buildKuhnTable(t)
	assert.Panics(t, func() {
		tbl.Entry(0) // root is a chance node (card deal) in Kuhn
	})
	_ = tr
}
