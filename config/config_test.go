package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"riskodds/battle"
	"riskodds/searcher"
)

func validConfig() Config {
	return Config{
		Dice:    DiceConfig{AttackSides: 6, DefenseSides: 6},
		Battle:  BattleConfig{Stop: 1},
		Search:  SearchConfig{Start: 2, Ceiling: 4096},
		Fortify: FortifyConfig{Workers: 4, Method: "any"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("reports every violation", func(t *testing.T) {
		cfg := validConfig()
		cfg.Dice.DefenseSides = 1
		cfg.Battle.Stop = -1
		cfg.Fortify.Method = "random"
		cfg.Logging.Format = "xml"

		err := cfg.Validate()

		require.Error(t, err)
		require.Contains(t, err.Error(), "dice.defense_sides")
		require.Contains(t, err.Error(), "battle.stop")
		require.Contains(t, err.Error(), "fortify.method")
		require.Contains(t, err.Error(), "logging.format")
	})

	t.Run("ceiling below start", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			cfg := validConfig()
			cfg.Search.Start = rapid.IntRange(2, 1000).Draw(t, "start")
			cfg.Search.Ceiling = rapid.IntRange(1, cfg.Search.Start-1).Draw(t, "ceiling")
			if cfg.Validate() == nil {
				t.Fatalf("ceiling %d below start %d accepted", cfg.Search.Ceiling, cfg.Search.Start)
			}
		})
	})
}

func TestLoad(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		cfg, err := Load("")

		require.NoError(t, err)
		require.Equal(t, 6, cfg.Dice.AttackSides)
		require.Equal(t, 6, cfg.Dice.DefenseSides)
		require.Equal(t, 1, cfg.Battle.Stop)
		require.Equal(t, 2, cfg.Search.Start)
		require.Equal(t, 4096, cfg.Search.Ceiling)
		require.Positive(t, cfg.Fortify.Workers)
		require.Equal(t, "any", cfg.Fortify.Method)
		require.Equal(t, "info", cfg.Logging.Level)
		require.Equal(t, "console", cfg.Logging.Format)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeFile(t, "riskodds.yaml", "dice:\n  defense_sides: 8\nbattle:\n  stop: 3\nlogging:\n  level: debug\n")

		cfg, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, 8, cfg.Dice.DefenseSides)
		require.Equal(t, 6, cfg.Dice.AttackSides)
		require.Equal(t, 3, cfg.Battle.Stop)
		require.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := writeFile(t, "riskodds.yaml", "search:\n  ceiling: 100\n")
		t.Setenv("RISKODDS_SEARCH_CEILING", "200")

		cfg, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, 200, cfg.Search.Ceiling)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.ErrorContains(t, err, "reading config file")
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeFile(t, "riskodds.yaml", "fortify:\n  workers: 0\n")

		_, err := Load(path)

		require.ErrorContains(t, err, "fortify.workers")
	})
}

const scenarioYAML = `
budget: 3
battles:
  - attack: 8
    territories:
      - defense: 3
      - defense: 2
        defense_sides: 8
  - attack: 6
    stop: 2
    territories:
      - defense: 2
        stop: 4
`

func TestLoadScenario(t *testing.T) {
	t.Run("fills defaults from the config", func(t *testing.T) {
		cfg := validConfig()
		cfg.Fortify.Method = "weakest"
		cfg.Dice.AttackSides = 10

		got, err := LoadScenario(writeFile(t, "scenario.yaml", scenarioYAML), cfg)
		require.NoError(t, err)

		require.Equal(t, 3, got.Budget)
		require.Equal(t, searcher.MethodWeakest, got.Method)
		require.Len(t, got.Battles, 2)

		first := got.Battles[0]
		require.Equal(t, 8, first.AttackTroops)
		require.Equal(t, 1, first.Stop)
		require.Equal(t, []int{3, 2}, first.Defenses())
		require.Equal(t, 10, first.Territories[0].AttackSides)
		require.Equal(t, 6, first.Territories[0].DefenseSides)
		require.Equal(t, 8, first.Territories[1].DefenseSides)

		second := got.Battles[1]
		require.Equal(t, 2, second.Stop)
		require.Equal(t, 4, second.StopFor(0))
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		path := writeFile(t, "scenario.yaml", "budget: 1\nbattles:\n  - attack: 5\n    defence: 3\n")

		_, err := LoadScenario(path, validConfig())

		require.ErrorContains(t, err, "decoding scenario")
	})

	t.Run("rejects invalid battles", func(t *testing.T) {
		path := writeFile(t, "scenario.yaml", "battles:\n  - attack: 0\n    territories:\n      - defense: 2\n")

		_, err := LoadScenario(path, validConfig())

		require.ErrorIs(t, err, battle.ErrConfiguration)
		require.ErrorContains(t, err, "battle 1")
	})

	t.Run("rejects unknown methods", func(t *testing.T) {
		path := writeFile(t, "scenario.yaml", "method: strongest\nbattles: []\n")

		_, err := LoadScenario(path, validConfig())

		require.ErrorIs(t, err, searcher.ErrUnknownMethod)
	})
}
