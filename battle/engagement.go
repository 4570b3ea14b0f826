// Package battle resolves Risk attacks exactly. A single engagement is solved
// by sweeping a dense (attack, defense) probability table in order of
// decreasing total troops; chains of territories thread the surviving attack
// troops from one table into the next.
package battle

import (
	"fmt"

	"riskodds/dice"
)

// State is the troops on the attacking and defending territory. Attack
// includes the troop that must stay behind.
type State struct {
	Attack  int
	Defense int
}

// Terminal is a state where an engagement ends, with its probability.
type Terminal struct {
	State
	Probability float64
}

// Engagement is the exact distribution of terminal states of one territory.
type Engagement struct {
	Start     State
	Terminals []Terminal
}

// WinProbability returns the probability the defense is wiped out.
func (e Engagement) WinProbability() float64 {
	p := 0.0
	for _, t := range e.Terminals {
		if t.Defense == 0 {
			p += t.Probability
		}
	}
	return p
}

type Option func(e *Engine)

// WithCache makes the engine read round distributions from cache, and play
// by the cache's rules.
func WithCache(cache *dice.Cache) Option {
	return func(e *Engine) {
		if cache != nil {
			e.cache = cache
		}
	}
}

// Engine resolves engagements and chains. It holds no per-call state and is
// safe for concurrent use.
type Engine struct {
	cache *dice.Cache
}

func NewEngine(options ...Option) *Engine {
	e := &Engine{
		cache: dice.Default(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Resolve computes the terminal distribution of a0 attacking troops against
// d0 defending troops using the default engine.
func Resolve(a0, d0, attackSides, defenseSides, stop int) (Engagement, error) {
	return defaultEngine.Resolve(a0, d0, attackSides, defenseSides, stop)
}

func (e *Engine) Resolve(a0, d0, attackSides, defenseSides, stop int) (Engagement, error) {
	if err := validateEngagement(a0, d0, attackSides, defenseSides, stop); err != nil {
		return Engagement{}, err
	}

	seed := make([]float64, a0+1)
	seed[a0] = 1

	engagement := Engagement{Start: State{Attack: a0, Defense: d0}}
	total := 0.0
	err := e.sweep(seed, d0, attackSides, defenseSides, stop, func(a, d int, mass float64) {
		engagement.Terminals = append(engagement.Terminals, Terminal{
			State:       State{Attack: a, Defense: d},
			Probability: mass,
		})
		total += mass
	})
	if err != nil {
		return Engagement{}, err
	}

	checkConservation("engagement", total)
	return engagement, nil
}

func validateEngagement(a0, d0, attackSides, defenseSides, stop int) error {
	switch {
	case a0 < 1:
		return fmt.Errorf("%w: attack troops must be >= 1, got %d", ErrConfiguration, a0)
	case d0 < 1:
		return fmt.Errorf("%w: defense troops must be >= 1, got %d", ErrConfiguration, d0)
	case attackSides < 2:
		return fmt.Errorf("%w: attack sides must be >= 2, got %d", ErrConfiguration, attackSides)
	case defenseSides < 2:
		return fmt.Errorf("%w: defense sides must be >= 2, got %d", ErrConfiguration, defenseSides)
	case stop < 0:
		return fmt.Errorf("%w: stop must be >= 0, got %d", ErrConfiguration, stop)
	}
	return nil
}

// sweep runs the engagement DP with seed[a] mass starting at (a, d0) and
// calls visit once for every terminal state holding mass. Seeding several
// attack values at once is equivalent to resolving each separately and
// weighting the results, since the table is linear in its inputs.
func (e *Engine) sweep(seed []float64, d0, attackSides, defenseSides, stop int, visit func(a, d int, mass float64)) error {
	rules := e.cache.Rules()
	a0 := len(seed) - 1
	width := d0 + 1

	mass := make([]float64, (a0+1)*width)
	for a, m := range seed {
		mass[a*width+d0] = m
	}

	// Round distributions fetched for this sweep, indexed by dice counts
	rounds := make([][]*dice.Distribution, rules.MaxAttackDice()+1)
	for i := range rounds {
		rounds[i] = make([]*dice.Distribution, rules.MaxDefendDice()+1)
	}

	// Every round removes at least one troop, so each state only feeds states
	// with a strictly smaller total.
	for total := a0 + d0; total >= 0; total-- {
		for a := min(a0, total); a >= 0 && total-a <= d0; a-- {
			d := total - a
			m := mass[a*width+d]
			if m == 0 {
				continue
			}

			if d == 0 || a <= stop || a < 2 {
				visit(a, d, m)
				continue
			}

			attackDice, defenseDice := dice.DiceFor(rules, a, d)
			round := rounds[attackDice][defenseDice]
			if round == nil {
				var err error
				round, err = e.cache.Get(dice.Key{
					AttackDice:   attackDice,
					DefenseDice:  defenseDice,
					AttackSides:  attackSides,
					DefenseSides: defenseSides,
				})
				if err != nil {
					return fmt.Errorf("%w: %w", ErrConfiguration, err)
				}
				rounds[attackDice][defenseDice] = round
			}

			for _, o := range round.Outcomes() {
				mass[(a-o.AttackLosses)*width+d-o.DefenseLosses] += m * o.Probability
			}
		}
	}
	return nil
}
