package searcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"riskodds/battle"
)

func territories(defenses ...int) []battle.Territory {
	return battle.NewBattleConfig(1, defenses...).Territories
}

func TestFindMinTroops(t *testing.T) {
	ctx := context.Background()

	t.Run("three territories with an eight-sided defender", func(t *testing.T) {
		terr := territories(3, 2, 1)
		terr[1].DefenseSides = 8

		got, err := FindMinTroops(ctx, 0.95, terr, 1)

		require.NoError(t, err)
		require.Equal(t, 17, got.Troops)
		require.InDelta(t, 0.953038445204023, got.Probability, 1e-9)

		cfg := battle.BattleConfig{AttackTroops: 16, Territories: terr, Stop: 1}
		below, err := battle.ResolveChain(cfg)
		require.NoError(t, err)
		require.Less(t, below.FinalWinProbability(), 0.95, "One troop fewer should miss the target")
	})

	t.Run("single territory", func(t *testing.T) {
		cases := []struct {
			target      float64
			sides       int
			troops      int
			probability float64
		}{
			{0.5, 6, 12, 0.5762944972440296},
			{0.95, 6, 21, 0.9616912565871956},
			{0.5, 8, 19, 0.5070879747301819},
		}
		for _, c := range cases {
			terr := territories(11)
			terr[0].DefenseSides = c.sides

			got, err := FindMinTroops(ctx, c.target, terr, 1)

			require.NoError(t, err)
			require.Equal(t, c.troops, got.Troops, "Target %v with %d-sided defense", c.target, c.sides)
			require.InDelta(t, c.probability, got.Probability, 1e-9)
		}
	})

	t.Run("counts every probe", func(t *testing.T) {
		got, err := FindMinTroops(ctx, 0.95, territories(3, 2, 1), 1, WithMetrics())

		require.NoError(t, err)
		require.Positive(t, got.Evaluations)
		require.Equal(t, got.Evaluations, got.Metric.Evaluations)
		require.Len(t, got.Metric.Trace, got.Evaluations)
	})

	t.Run("one troop suffices when nothing is defended", func(t *testing.T) {
		got, err := FindMinTroops(ctx, 0.99, territories(0, 0), 1)

		require.NoError(t, err)
		require.Equal(t, 1, got.Troops)
		require.Equal(t, 1.0, got.Probability)
	})

	t.Run("start does not change the answer", func(t *testing.T) {
		first, err := FindMinTroops(ctx, 0.8, territories(6, 4), 1)
		require.NoError(t, err)
		second, err := FindMinTroops(ctx, 0.8, territories(6, 4), 1, WithStart(40))
		require.NoError(t, err)

		require.Equal(t, first.Troops, second.Troops)
	})

	t.Run("gives up at the ceiling", func(t *testing.T) {
		_, err := FindMinTroops(ctx, 0.95, territories(3, 2, 1), 1, WithCeiling(10))

		require.ErrorIs(t, err, ErrSearchExhausted)
	})

	t.Run("rejects targets outside the open unit interval", func(t *testing.T) {
		for _, target := range []float64{0, 1, -0.5, 1.5} {
			_, err := FindMinTroops(ctx, target, territories(3), 1)
			require.ErrorIs(t, err, ErrInvalidTarget, "Target %v", target)
		}
	})

	t.Run("rejects invalid territories", func(t *testing.T) {
		_, err := FindMinTroops(ctx, 0.5, nil, 1)
		require.ErrorIs(t, err, battle.ErrConfiguration)

		_, err = FindMinTroops(ctx, 0.5, territories(-3), 1)
		require.ErrorIs(t, err, battle.ErrConfiguration)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := FindMinTroops(cancelled, 0.5, territories(3), 1)

		require.ErrorIs(t, err, context.Canceled)
	})
}
