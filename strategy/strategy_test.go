package strategy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lascar-pacagi/gtocfr"
	"github.com/lascar-pacagi/gtocfr/games/kuhn"
	"github.com/lascar-pacagi/gtocfr/infoset"
	"github.com/lascar-pacagi/gtocfr/tree"
)

func TestExtractUniformAtStart(t *testing.T) {
	tr, err := tree.Build(kuhn.New())
	require.NoError(t, err)
	tbl := infoset.NewTable(tr)

	avg := Extract(tr, tbl)
	infoSets := avg.InfoSets()
	require.NotEmpty(t, infoSets)

	for _, is := range infoSets {
		probs, ok := avg.Strategy(is)
		require.True(t, ok, "Strategy(%v) not found after Extract", is)
		actions, ok := avg.Actions(is)
		require.True(t, ok)
		require.Len(t, actions, len(probs))

		want := 1.0 / float64(len(probs))
		for i, p := range probs {
			assert.InDelta(t, want, p, 1e-9, "infoset %v action %d", is, i)
		}
	}
}

func TestActionSamplesOnlyDeclaredActions(t *testing.T) {
	tr, err := tree.Build(kuhn.New())
	require.NoError(t, err)
	tbl := infoset.NewTable(tr)

	avg := Extract(tr, tbl)
	is := avg.InfoSets()[0]
	actions, ok := avg.Actions(is)
	require.True(t, ok)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		a, ok := avg.Action(is, rng)
		require.True(t, ok)
		found := false
		for _, want := range actions {
			if a == want {
				found = true
				break
			}
		}
		assert.True(t, found, "Action returned %v, not among Actions(is) = %v", a, actions)
	}
}

func TestActionUnknownInfoSetReturnsFalse(t *testing.T) {
	tr, err := tree.Build(kuhn.New())
	require.NoError(t, err)
	tbl := infoset.NewTable(tr)
	avg := Extract(tr, tbl)

	rng := rand.New(rand.NewSource(1))
	_, ok := avg.Action(gtocfr.InfoSet(^uint64(0)), rng)
	assert.False(t, ok)
}
