package battle

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"riskodds/meta"
)

// ErrConfiguration is wrapped by every error caused by invalid input.
var ErrConfiguration = errors.New("configuration error")

// InvariantError reports probability mass that failed to sum to one. It is
// raised as a panic: it signals a defect in the engine, not bad input.
type InvariantError struct {
	Where string
	Total float64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("battle: %s probability mass sums to %.17g, want 1", e.Where, e.Total)
}

func checkConservation(where string, total float64) {
	if math.Abs(total-1) > meta.Tolerance {
		panic(&InvariantError{Where: where, Total: total})
	}
}

// Territory is one defended position in a chain of attacks. Zero sides mean
// the default six-sided die.
type Territory struct {
	DefenseTroops int  `yaml:"defense" mapstructure:"defense"`
	AttackSides   int  `yaml:"attack_sides,omitempty" mapstructure:"attack_sides"`
	DefenseSides  int  `yaml:"defense_sides,omitempty" mapstructure:"defense_sides"`
	Stop          *int `yaml:"stop,omitempty" mapstructure:"stop"` // Overrides BattleConfig.Stop for this territory
}

// NewTerritory returns a territory defended by troops with standard dice.
func NewTerritory(troops int) Territory {
	return Territory{
		DefenseTroops: troops,
		AttackSides:   meta.DefaultSides,
		DefenseSides:  meta.DefaultSides,
	}
}

func (t Territory) attackSides() int {
	if t.AttackSides == 0 {
		return meta.DefaultSides
	}
	return t.AttackSides
}

func (t Territory) defenseSides() int {
	if t.DefenseSides == 0 {
		return meta.DefaultSides
	}
	return t.DefenseSides
}

// BattleConfig describes an attack from one territory through an ordered
// list of enemy territories.
type BattleConfig struct {
	AttackTroops int         `yaml:"attack" mapstructure:"attack"` // Troops on the attacking territory, including the one that stays
	Territories  []Territory `yaml:"territories" mapstructure:"territories"`
	Stop         int         `yaml:"stop" mapstructure:"stop"` // Attacker stops at or below this many troops
}

// NewBattleConfig builds a chain with standard dice and the default stop.
func NewBattleConfig(attack int, defenses ...int) BattleConfig {
	territories := make([]Territory, len(defenses))
	for i, d := range defenses {
		territories[i] = NewTerritory(d)
	}
	return BattleConfig{
		AttackTroops: attack,
		Territories:  territories,
		Stop:         meta.DefaultStop,
	}
}

// StopFor returns the stop threshold that applies to territory i.
func (c BattleConfig) StopFor(i int) int {
	if s := c.Territories[i].Stop; s != nil {
		return *s
	}
	return c.Stop
}

// Defenses returns the defense troops of every territory in order.
func (c BattleConfig) Defenses() []int {
	defenses := make([]int, len(c.Territories))
	for i, t := range c.Territories {
		defenses[i] = t.DefenseTroops
	}
	return defenses
}

// Copy returns a deep copy that can be modified independently.
func (c BattleConfig) Copy() BattleConfig {
	territories := make([]Territory, len(c.Territories))
	for i, t := range c.Territories {
		territories[i] = t
		if t.Stop != nil {
			stop := *t.Stop
			territories[i].Stop = &stop
		}
	}
	c.Territories = territories
	return c
}

// WithAttack returns a copy of the config attacking with troops.
func (c BattleConfig) WithAttack(troops int) BattleConfig {
	cp := c.Copy()
	cp.AttackTroops = troops
	return cp
}

// Validate checks every field and reports all violations at once.
func (c BattleConfig) Validate() error {
	var errs []string

	if c.AttackTroops < 1 {
		errs = append(errs, fmt.Sprintf("attack troops must be >= 1, got %d", c.AttackTroops))
	}
	if c.Stop < 0 {
		errs = append(errs, fmt.Sprintf("stop must be >= 0, got %d", c.Stop))
	}
	if len(c.Territories) == 0 {
		errs = append(errs, "at least one territory is required")
	}
	for i, t := range c.Territories {
		if t.DefenseTroops < 0 {
			errs = append(errs, fmt.Sprintf("territory %d: defense troops must be >= 0, got %d", i+1, t.DefenseTroops))
		}
		if t.AttackSides != 0 && t.AttackSides < 2 {
			errs = append(errs, fmt.Sprintf("territory %d: attack sides must be >= 2, got %d", i+1, t.AttackSides))
		}
		if t.DefenseSides != 0 && t.DefenseSides < 2 {
			errs = append(errs, fmt.Sprintf("territory %d: defense sides must be >= 2, got %d", i+1, t.DefenseSides))
		}
		if t.Stop != nil && *t.Stop < 0 {
			errs = append(errs, fmt.Sprintf("territory %d: stop must be >= 0, got %d", i+1, *t.Stop))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(errs, "; "))
	}
	return nil
}
