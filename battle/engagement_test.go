package battle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"riskodds/dice"
)

func TestResolve(t *testing.T) {
	t.Run("five against three with standard dice", func(t *testing.T) {
		got, err := Resolve(5, 3, 6, 6, 1)

		require.NoError(t, err)
		require.Equal(t, State{Attack: 5, Defense: 3}, got.Start)
		require.InDelta(t, 0.6416228964559516, got.WinProbability(), 1e-9)
	})

	t.Run("terminal states are conquests or disengagements", func(t *testing.T) {
		got, err := Resolve(12, 9, 6, 8, 2)
		require.NoError(t, err)

		total := 0.0
		for _, term := range got.Terminals {
			require.True(t, term.Defense == 0 || term.Attack <= 2,
				"State %+v should be terminal", term.State)
			require.LessOrEqual(t, term.Attack, 12)
			require.LessOrEqual(t, term.Defense, 9)
			total += term.Probability
		}
		require.InDelta(t, 1.0, total, 1e-9, "Terminal mass should sum to one")
	})

	t.Run("attacker at the stop threshold does not attack", func(t *testing.T) {
		got, err := Resolve(3, 4, 6, 6, 3)

		require.NoError(t, err)
		require.Equal(t, []Terminal{{State: State{Attack: 3, Defense: 4}, Probability: 1}}, got.Terminals)
	})

	t.Run("a single troop cannot attack", func(t *testing.T) {
		got, err := Resolve(1, 2, 6, 6, 0)

		require.NoError(t, err)
		require.Equal(t, []Terminal{{State: State{Attack: 1, Defense: 2}, Probability: 1}}, got.Terminals)
		require.Zero(t, got.WinProbability())
	})

	t.Run("zero stop still ends with one troop left", func(t *testing.T) {
		withZero, err := Resolve(6, 4, 6, 6, 0)
		require.NoError(t, err)
		withOne, err := Resolve(6, 4, 6, 6, 1)
		require.NoError(t, err)

		require.InDelta(t, withOne.WinProbability(), withZero.WinProbability(), 1e-12)
	})

	t.Run("rejects invalid input before building the table", func(t *testing.T) {
		cases := []struct {
			name                          string
			a0, d0, aSides, dSides, stop int
		}{
			{"no attackers", 0, 3, 6, 6, 1},
			{"no defenders", 5, 0, 6, 6, 1},
			{"one sided attack die", 5, 3, 1, 6, 1},
			{"one sided defense die", 5, 3, 6, 1, 1},
			{"negative stop", 5, 3, 6, 6, -1},
		}
		for _, c := range cases {
			_, err := Resolve(c.a0, c.d0, c.aSides, c.dSides, c.stop)
			require.ErrorIs(t, err, ErrConfiguration, c.name)
		}
	})

	t.Run("oversized dice surface as configuration errors", func(t *testing.T) {
		_, err := Resolve(5, 3, 1<<10, 1<<10, 1)

		require.ErrorIs(t, err, ErrConfiguration)
		require.ErrorIs(t, err, dice.ErrInvalidDice)
	})

	t.Run("hundred against hundred conserves mass", func(t *testing.T) {
		got, err := Resolve(100, 100, 6, 6, 1)
		require.NoError(t, err)

		total := 0.0
		for _, term := range got.Terminals {
			total += term.Probability
		}
		require.InDelta(t, 1.0, total, 1e-9)
		require.Greater(t, got.WinProbability(), 0.5, "Attacker rolls more dice and should be favoured")
	})
}

func TestEngineWithCache(t *testing.T) {
	cache := dice.NewCache(dice.NewStandardRules())
	engine := NewEngine(WithCache(cache))

	_, err := engine.Resolve(7, 5, 6, 6, 1)
	require.NoError(t, err)

	require.Equal(t, 6, cache.Len(), "Every dice pairing should be cached once")
}

func TestCheckConservation(t *testing.T) {
	require.NotPanics(t, func() { checkConservation("test", 1+1e-12) })

	require.PanicsWithError(t, (&InvariantError{Where: "test", Total: 0.9}).Error(), func() {
		checkConservation("test", 0.9)
	})
}
