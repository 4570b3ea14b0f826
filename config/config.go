// Package config loads command line settings with viper and fortify
// scenarios with yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"riskodds/battle"
	"riskodds/meta"
	"riskodds/searcher"
)

// DiceConfig holds the die sizes used when a territory does not set its own.
type DiceConfig struct {
	AttackSides  int `mapstructure:"attack_sides"`
	DefenseSides int `mapstructure:"defense_sides"`
}

type BattleConfig struct {
	// Stop is the attack troop count at or below which the attacker gives up.
	Stop int `mapstructure:"stop"`
}

type SearchConfig struct {
	Start   int `mapstructure:"start"`
	Ceiling int `mapstructure:"ceiling"`
}

type FortifyConfig struct {
	Workers int    `mapstructure:"workers"`
	Method  string `mapstructure:"method"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Dice    DiceConfig    `mapstructure:"dice"`
	Battle  BattleConfig  `mapstructure:"battle"`
	Search  SearchConfig  `mapstructure:"search"`
	Fortify FortifyConfig `mapstructure:"fortify"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks every setting and reports all violations at once.
func (c Config) Validate() error {
	var errs []string

	if c.Dice.AttackSides < 2 {
		errs = append(errs, fmt.Sprintf("dice.attack_sides must be >= 2, got %d", c.Dice.AttackSides))
	}
	if c.Dice.DefenseSides < 2 {
		errs = append(errs, fmt.Sprintf("dice.defense_sides must be >= 2, got %d", c.Dice.DefenseSides))
	}
	if c.Battle.Stop < 0 {
		errs = append(errs, fmt.Sprintf("battle.stop must be >= 0, got %d", c.Battle.Stop))
	}
	if c.Search.Start < 1 {
		errs = append(errs, fmt.Sprintf("search.start must be >= 1, got %d", c.Search.Start))
	}
	if c.Search.Ceiling < c.Search.Start {
		errs = append(errs, fmt.Sprintf("search.ceiling must be >= search.start, got %d", c.Search.Ceiling))
	}
	if c.Fortify.Workers < 1 {
		errs = append(errs, fmt.Sprintf("fortify.workers must be >= 1, got %d", c.Fortify.Workers))
	}
	if _, err := searcher.ParseMethod(c.Fortify.Method); err != nil {
		errs = append(errs, fmt.Sprintf("fortify.method must be one of [any, weakest], got %q", c.Fortify.Method))
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from path, applies RISKODDS_ environment variable
// overrides, and validates the result. An empty path uses the defaults and
// the environment only.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetEnvPrefix("RISKODDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dice.attack_sides", meta.DefaultSides)
	v.SetDefault("dice.defense_sides", meta.DefaultSides)

	v.SetDefault("battle.stop", meta.DefaultStop)

	v.SetDefault("search.start", meta.SearchStart)
	v.SetDefault("search.ceiling", meta.MaxSearchTroops)

	v.SetDefault("fortify.workers", runtime.NumCPU())
	v.SetDefault("fortify.method", string(searcher.MethodAny))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

type scenarioBattle struct {
	Attack      int                `yaml:"attack"`
	Territories []battle.Territory `yaml:"territories"`
	Stop        *int               `yaml:"stop"`
}

type scenario struct {
	Budget  int              `yaml:"budget"`
	Method  string           `yaml:"method"`
	Battles []scenarioBattle `yaml:"battles"`
}

// LoadScenario reads a fortify scenario from a YAML file. Battles without a
// stop use cfg.Battle.Stop, territories without dice sizes use cfg.Dice, and
// an empty method uses cfg.Fortify.Method.
func LoadScenario(path string, cfg Config) (searcher.FortifyConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return searcher.FortifyConfig{}, fmt.Errorf("opening scenario file: %w", err)
	}
	defer f.Close()

	var raw scenario
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return searcher.FortifyConfig{}, fmt.Errorf("decoding scenario: %w", err)
	}

	method := raw.Method
	if method == "" {
		method = cfg.Fortify.Method
	}
	parsed, err := searcher.ParseMethod(method)
	if err != nil {
		return searcher.FortifyConfig{}, err
	}

	out := searcher.FortifyConfig{
		Budget:  raw.Budget,
		Method:  parsed,
		Battles: make([]battle.BattleConfig, len(raw.Battles)),
	}
	var errs []error
	for i, b := range raw.Battles {
		bc := battle.BattleConfig{
			AttackTroops: b.Attack,
			Territories:  b.Territories,
			Stop:         cfg.Battle.Stop,
		}
		if b.Stop != nil {
			bc.Stop = *b.Stop
		}
		for j := range bc.Territories {
			if bc.Territories[j].AttackSides == 0 {
				bc.Territories[j].AttackSides = cfg.Dice.AttackSides
			}
			if bc.Territories[j].DefenseSides == 0 {
				bc.Territories[j].DefenseSides = cfg.Dice.DefenseSides
			}
		}
		if err := bc.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("battle %d: %w", i+1, err))
		}
		out.Battles[i] = bc
	}
	if len(errs) > 0 {
		return searcher.FortifyConfig{}, errors.Join(errs...)
	}
	return out, nil
}
