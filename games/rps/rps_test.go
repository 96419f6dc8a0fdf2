package rps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lascar-pacagi/gtocfr"
)

func TestPayoffZeroSum(t *testing.T) {
	g := New()
	g.Reset()
	g.Play(Rock)
	g.Play(Scissors)

	require.True(t, g.GameOver())
	p1, p2 := g.Payoff(gtocfr.P1), g.Payoff(gtocfr.P2)
	assert.Equal(t, 1, p1, "Rock beats Scissors")
	assert.Equal(t, -1, p2)
}

func TestTieIsZero(t *testing.T) {
	g := New()
	g.Reset()
	g.Play(Paper)
	g.Play(Paper)
	assert.Zero(t, g.Payoff(gtocfr.P1))
}

func TestP2InfoSetIndependentOfP1Move(t *testing.T) {
	g := New()
	g.Reset()
	g.Play(Rock)
	is1 := g.GetInfoSet(gtocfr.P2)

	g.Undo(Rock)
	g.Play(Paper)
	is2 := g.GetInfoSet(gtocfr.P2)

	assert.Equal(t, is1, is2, "P2's InfoSet must not depend on P1's action")
}
