package battle

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"riskodds/dice"
)

// Simulate plays cfg out iterations times with rolled dice using the default
// engine's rules. It approximates ResolveChain and exists to cross-check it.
func Simulate(cfg BattleConfig, iterations int, seed uint64) (*Result, error) {
	return defaultEngine.Simulate(cfg, iterations, seed)
}

func (e *Engine) Simulate(cfg BattleConfig, iterations int, seed uint64) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if iterations < 1 {
		return nil, fmt.Errorf("%w: iterations must be >= 1, got %d", ErrConfiguration, iterations)
	}
	cfg = cfg.Copy()

	rng := rand.New(rand.NewSource(seed))
	rules := e.cache.Rules()

	counts := make(map[Outcome]int)
	conquered := make([]int, len(cfg.Territories))
	for n := 0; n < iterations; n++ {
		outcome := simulateOne(rng, rules, cfg, conquered)
		counts[outcome]++
	}

	result := &Result{
		Config:    cfg,
		Outcomes:  make(Distribution, len(counts)),
		Conquests: make(Ledger, len(cfg.Territories)),
	}
	for o, c := range counts {
		result.Outcomes[o] = float64(c) / float64(iterations)
	}
	for i, c := range conquered {
		result.Conquests[i] = float64(c) / float64(iterations)
	}
	return result, nil
}

func simulateOne(rng *rand.Rand, rules dice.Rules, cfg BattleConfig, conquered []int) Outcome {
	a := cfg.AttackTroops
	last := len(cfg.Territories) - 1
	for i, t := range cfg.Territories {
		stop := cfg.StopFor(i)
		d := t.DefenseTroops

		// Simulate attack rounds
		for d > 0 && a > stop && a >= 2 {
			attackDice, defenseDice := dice.DiceFor(rules, a, d)
			attackerRolls := rollDice(rng, attackDice, t.attackSides())
			defenderRolls := rollDice(rng, defenseDice, t.defenseSides())

			attackerLosses, defenderLosses := rules.DetermineAttackOutcome(attackerRolls, defenderRolls)
			a -= attackerLosses
			d -= defenderLosses
		}

		if d > 0 {
			return Outcome{Territory: i, Attack: a, Defense: d}
		}
		conquered[i]++
		if i == last {
			break
		}
		if t.DefenseTroops == 0 {
			continue
		}
		if a <= stop || a < 2 {
			return Outcome{Territory: i, Attack: a}
		}
		a-- // One troop stays on the conquered territory
	}
	return Outcome{Territory: last, Attack: a}
}

func rollDice(rng *rand.Rand, num, sides int) []int {
	rolls := make([]int, num)
	for i := 0; i < num; i++ {
		rolls[i] = rng.Intn(sides) + 1
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rolls)))
	return rolls
}
