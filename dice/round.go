// Package dice computes the exact loss distribution of a single round of
// Risk combat for arbitrary dice-side counts.
package dice

import (
	"errors"
	"fmt"
)

// ErrInvalidDice is returned when a round cannot be enumerated.
var ErrInvalidDice = errors.New("invalid dice")

// DefaultSides is the number of faces on a tabletop die.
const DefaultSides = 6

// MaxCombinations bounds the joint sample space of a single round.
const MaxCombinations = 1 << 26

// Key identifies a round distribution.
type Key struct {
	AttackDice   int
	DefenseDice  int
	AttackSides  int
	DefenseSides int
}

func (k Key) String() string {
	return fmt.Sprintf("%dd%d/%dd%d", k.AttackDice, k.AttackSides, k.DefenseDice, k.DefenseSides)
}

// Outcome is one possible result of a round.
type Outcome struct {
	AttackLosses  int
	DefenseLosses int
	Probability   float64
}

// Distribution is the exact probability of every loss split for one Key.
// It is immutable once computed and shared between callers.
type Distribution struct {
	Key      Key
	outcomes []Outcome
}

// Outcomes returns the possible results ordered by defense losses. The
// returned slice is shared and must not be modified.
func (d *Distribution) Outcomes() []Outcome {
	return d.outcomes
}

// Comparisons returns how many dice pairs are compared in the round, which is
// also the total troops lost by both sides.
func (d *Distribution) Comparisons() int {
	return min(d.Key.AttackDice, d.Key.DefenseDice)
}

// DefenseLossProbability returns the probability that the defender loses
// exactly k troops.
func (d *Distribution) DefenseLossProbability(k int) float64 {
	for _, o := range d.outcomes {
		if o.DefenseLosses == k {
			return o.Probability
		}
	}
	return 0
}

func validate(r Rules, key Key) error {
	if key.AttackDice < 1 || key.AttackDice > r.MaxAttackDice() {
		return fmt.Errorf("%w: attack dice must be 1-%d, got %d", ErrInvalidDice, r.MaxAttackDice(), key.AttackDice)
	}
	if key.DefenseDice < 1 || key.DefenseDice > r.MaxDefendDice() {
		return fmt.Errorf("%w: defense dice must be 1-%d, got %d", ErrInvalidDice, r.MaxDefendDice(), key.DefenseDice)
	}
	if key.AttackSides < 2 {
		return fmt.Errorf("%w: attack sides must be >= 2, got %d", ErrInvalidDice, key.AttackSides)
	}
	if key.DefenseSides < 2 {
		return fmt.Errorf("%w: defense sides must be >= 2, got %d", ErrInvalidDice, key.DefenseSides)
	}
	combinations := 1
	for i := 0; i < key.AttackDice; i++ {
		combinations *= key.AttackSides
		if combinations > MaxCombinations {
			return fmt.Errorf("%w: %s has more than %d combinations", ErrInvalidDice, key, MaxCombinations)
		}
	}
	for i := 0; i < key.DefenseDice; i++ {
		combinations *= key.DefenseSides
		if combinations > MaxCombinations {
			return fmt.Errorf("%w: %s has more than %d combinations", ErrInvalidDice, key, MaxCombinations)
		}
	}
	return nil
}

// Enumerate walks every face combination of the round described by key and
// groups them by defense losses. It does not cache.
func Enumerate(r Rules, key Key) (*Distribution, error) {
	if err := validate(r, key); err != nil {
		return nil, err
	}

	n := key.AttackDice + key.DefenseDice
	faces := make([]int, n)
	sides := make([]int, n)
	for i := range faces {
		faces[i] = 1
		if i < key.AttackDice {
			sides[i] = key.AttackSides
		} else {
			sides[i] = key.DefenseSides
		}
	}

	attack := make([]int, key.AttackDice)
	defense := make([]int, key.DefenseDice)
	comparisons := min(key.AttackDice, key.DefenseDice)
	counts := make([]int64, comparisons+1)
	var total int64

	for {
		copy(attack, faces[:key.AttackDice])
		copy(defense, faces[key.AttackDice:])
		sortDescending(attack)
		sortDescending(defense)
		_, defenseLosses := r.DetermineAttackOutcome(attack, defense)
		counts[defenseLosses]++
		total++

		// Advance the odometer
		i := 0
		for ; i < n; i++ {
			if faces[i] < sides[i] {
				faces[i]++
				break
			}
			faces[i] = 1
		}
		if i == n {
			break
		}
	}

	dist := &Distribution{Key: key}
	for k, count := range counts {
		if count == 0 {
			continue
		}
		dist.outcomes = append(dist.outcomes, Outcome{
			AttackLosses:  comparisons - k,
			DefenseLosses: k,
			Probability:   float64(count) / float64(total),
		})
	}
	return dist, nil
}

// sortDescending is an insertion sort; slices here hold at most a few dice.
func sortDescending(rolls []int) {
	for i := 1; i < len(rolls); i++ {
		for j := i; j > 0 && rolls[j] > rolls[j-1]; j-- {
			rolls[j], rolls[j-1] = rolls[j-1], rolls[j]
		}
	}
}
