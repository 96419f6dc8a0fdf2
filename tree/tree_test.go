package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lascar-pacagi/gtocfr"
	"github.com/lascar-pacagi/gtocfr/games/kuhn"
	"github.com/lascar-pacagi/gtocfr/games/rps"
)

func TestBuildRPS(t *testing.T) {
	tr, err := Build(rps.New())
	require.NoError(t, err)

	// Root is P1's decision among 3 actions.
	player, fanOut := tr.Kind(0)
	require.Equal(t, gtocfr.P1, player)
	require.Equal(t, 3, fanOut)

	terminals := 0
	var walk func(idx int)
	walk = func(idx int) {
		if tr.IsTerminal(idx) {
			terminals++
			return
		}
		_, n := tr.Kind(idx)
		for i := 0; i < n; i++ {
			walk(tr.Child(idx, i))
		}
	}
	walk(0)
	assert.Equal(t, 9, terminals, "3x3 action pairs")
}

func TestBuildKuhnChanceProbasNormalized(t *testing.T) {
	tr, err := Build(kuhn.New())
	require.NoError(t, err)

	_, fanOut := tr.Kind(0)
	require.Equal(t, 3, fanOut, "root chance fan-out")

	var sum float64
	for i := 0; i < fanOut; i++ {
		_, p := tr.ChanceChild(0, i)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-3, "root chance probabilities must sum to 1")
}

func TestKuhnStateRoundTrip(t *testing.T) {
	g := kuhn.New()
	g.Reset()

	var buf [3]gtocfr.Action
	n := g.Actions(buf[:])
	require.NotZero(t, n, "no legal actions at root")
	a := buf[0]

	before := g.GetState()
	g.Play(a)
	after := g.GetState()
	g.Undo(a)
	restored := g.GetState()

	assert.Equal(t, before, restored, "Undo did not restore state")
	assert.NotEqual(t, before, after, "Play did not change state")
}

func TestKuhnTreeNodeCount(t *testing.T) {
	tr, err := Build(kuhn.New())
	require.NoError(t, err)
	// 6 deals x up to 5 terminal histories per deal; just sanity check that
	// it's nontrivially sized.
	assert.GreaterOrEqual(t, tr.NumNodes(), 6)
}
