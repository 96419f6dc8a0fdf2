package leduc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lascar-pacagi/gtocfr"
	"github.com/lascar-pacagi/gtocfr/tree"
)

func TestCheckCheckFlopCheckCheckShowdown(t *testing.T) {
	g := New()
	g.Reset()
	g.Play(DealKing)
	g.Play(DealQueen)
	g.Play(Check)
	g.Play(Check)
	g.Play(DealJack) // flop
	g.Play(Check)
	g.Play(Check)

	require.True(t, g.GameOver(), "expected showdown after two checked-through rounds")
	assert.Equal(t, 1, g.Payoff(gtocfr.P1), "King beats Queen with a blank flop")
}

func TestFlopPairBeatsHigherCard(t *testing.T) {
	g := New()
	g.Reset()
	g.Play(DealJack)
	g.Play(DealKing)
	g.Play(Check)
	g.Play(Check)
	g.Play(DealJack) // P1 pairs the flop
	g.Play(Check)
	g.Play(Check)

	assert.Equal(t, 1, g.Payoff(gtocfr.P1), "P1's pair of Jacks beats P2's King")
}

func TestBetCallGoesToFlop(t *testing.T) {
	g := New()
	g.Reset()
	g.Play(DealJack)
	g.Play(DealQueen)
	g.Play(Bet)
	g.Play(Call)

	require.False(t, g.GameOver(), "round 1 resolved by a call, flop still to come")
	assert.True(t, g.IsChancePlayer(), "expected the flop deal after round 1's bet-call")
}

func TestFoldEndsImmediately(t *testing.T) {
	g := New()
	g.Reset()
	g.Play(DealQueen)
	g.Play(DealKing)
	g.Play(Bet)
	g.Play(Fold)

	require.True(t, g.GameOver())
	assert.Equal(t, 1, g.Payoff(gtocfr.P1), "P2 folds to P1's bet, wins the ante")
}

func TestTreeBuildsWithoutError(t *testing.T) {
	_, err := tree.Build(New())
	require.NoError(t, err)
}
