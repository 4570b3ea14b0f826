package battle

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// Outcome identifies where a chain of attacks ended: the territory index and
// the troops left on both sides of it.
type Outcome struct {
	Territory int
	Attack    int
	Defense   int
}

// Distribution maps every way a chain can end to its probability.
type Distribution map[Outcome]float64

// Total returns the sum of all probability mass.
func (d Distribution) Total() float64 {
	total := 0.0
	for _, entry := range d.Sorted() {
		total += entry.Probability
	}
	return total
}

type Entry struct {
	Outcome
	Probability float64
}

// Sorted returns the outcomes ordered by territory, attack and defense.
func (d Distribution) Sorted() []Entry {
	entries := make([]Entry, 0, len(d))
	for o, p := range d {
		entries = append(entries, Entry{Outcome: o, Probability: p})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Outcome, entries[j].Outcome
		if a.Territory != b.Territory {
			return a.Territory < b.Territory
		}
		if a.Attack != b.Attack {
			return a.Attack < b.Attack
		}
		return a.Defense < b.Defense
	})
	return entries
}

// Ledger holds, per territory, the probability that it is conquered,
// whatever happens afterwards.
type Ledger []float64

// Result is the exact outcome of a chain of attacks.
type Result struct {
	Config    BattleConfig
	Outcomes  Distribution
	Conquests Ledger
}

// ResolveChain resolves cfg with the default engine.
func ResolveChain(cfg BattleConfig) (*Result, error) {
	return defaultEngine.ResolveChain(cfg)
}

// ResolveChain attacks each territory in order. Surviving attackers move on
// to the next territory, leaving one troop behind on the one they conquered.
// Attackers that conquer a territory with no more than the stop threshold
// left end the chain there.
func (e *Engine) ResolveChain(cfg BattleConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Copy()

	result := &Result{
		Config:    cfg,
		Outcomes:  make(Distribution),
		Conquests: make(Ledger, len(cfg.Territories)),
	}

	// carry[a] is the probability of arriving at the current territory with a troops
	carry := make([]float64, cfg.AttackTroops+1)
	carry[cfg.AttackTroops] = 1

	for i, t := range cfg.Territories {
		last := i == len(cfg.Territories)-1
		stop := cfg.StopFor(i)
		next := make([]float64, len(carry))

		if t.DefenseTroops == 0 {
			// Nothing to fight, the attack passes through untouched
			for a, m := range carry {
				if m == 0 {
					continue
				}
				result.Conquests[i] += m
				if last {
					result.Outcomes[Outcome{Territory: i, Attack: a}] += m
				} else {
					next[a] += m
				}
			}
			carry = next
			continue
		}

		err := e.sweep(carry, t.DefenseTroops, t.attackSides(), t.defenseSides(), stop, func(a, d int, m float64) {
			if d > 0 {
				result.Outcomes[Outcome{Territory: i, Attack: a, Defense: d}] += m
				return
			}
			result.Conquests[i] += m
			if last || a <= stop || a < 2 {
				result.Outcomes[Outcome{Territory: i, Attack: a}] += m
				return
			}
			next[a-1] += m
		})
		if err != nil {
			return nil, err
		}
		carry = next
	}

	checkConservation("chain", result.Outcomes.Total())

	log.Debug().
		Int("attack", cfg.AttackTroops).
		Ints("defense", cfg.Defenses()).
		Int("outcomes", len(result.Outcomes)).
		Float64("win", result.FinalWinProbability()).
		Msg("resolved chain")

	return result, nil
}
