package battle

import (
	"sort"

	"riskodds/utils"
)

// Perspective selects whose troops a cumulative view counts.
type Perspective int

const (
	Attack Perspective = iota
	Defense
)

func (p Perspective) String() string {
	if p == Defense {
		return "defense"
	}
	return "attack"
}

// WinProbabilities returns the probability of conquering each territory.
// Conquered mass that moved on to later territories still counts.
func WinProbabilities(ledger Ledger) []float64 {
	probs := make([]float64, len(ledger))
	copy(probs, ledger)
	return probs
}

func (r *Result) WinProbabilities() []float64 {
	return WinProbabilities(r.Conquests)
}

// FinalWinProbability returns the probability of conquering every territory.
func (r *Result) FinalWinProbability() float64 {
	if len(r.Conquests) == 0 {
		return 0
	}
	return r.Conquests[len(r.Conquests)-1]
}

// LossProbability is the chance the defender loses every territory, the
// same event as FinalWinProbability seen from the other side.
func (r *Result) LossProbability() float64 {
	return r.FinalWinProbability()
}

// CumulativeEntry is the probability that a side keeps at least Remaining
// troops overall. OnTerritory is the count on the territory where the chain
// ended.
type CumulativeEntry struct {
	Territory   int
	OnTerritory int
	Remaining   int
	Probability float64
}

// remaining returns the troops a side still has across the whole chain when
// it ended at o: the attacker leaves one troop on every territory it fought
// through, and the defender keeps every territory not yet reached.
func remaining(o Outcome, territories []Territory, p Perspective) int {
	if p == Defense {
		later := 0
		for _, t := range territories[o.Territory+1:] {
			later += t.DefenseTroops
		}
		return o.Defense + later
	}
	behind := 0
	for _, t := range territories[:o.Territory] {
		if t.DefenseTroops > 0 {
			behind++
		}
	}
	return o.Attack + behind
}

// Cumulative returns, for every observed (territory, troops) pair, the
// probability that the side keeps at least that many troops overall. Entries
// are ordered from most to fewest remaining troops, so probabilities never
// decrease down the list.
func Cumulative(dist Distribution, territories []Territory, p Perspective) []CumulativeEntry {
	type key struct{ territory, troops int }
	grouped := make(map[key]*CumulativeEntry)
	for _, entry := range dist.Sorted() {
		troops := entry.Attack
		if p == Defense {
			troops = entry.Defense
		}
		k := key{entry.Territory, troops}
		if e, ok := grouped[k]; ok {
			e.Probability += entry.Probability
			continue
		}
		grouped[k] = &CumulativeEntry{
			Territory:   entry.Territory,
			OnTerritory: troops,
			Remaining:   remaining(entry.Outcome, territories, p),
			Probability: entry.Probability,
		}
	}

	entries := make([]CumulativeEntry, 0, len(grouped))
	for _, e := range grouped {
		entries = append(entries, *e)
	}
	// Deeper territories first on ties, they represent longer survival
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Remaining != entries[j].Remaining {
			return entries[i].Remaining > entries[j].Remaining
		}
		if entries[i].Territory != entries[j].Territory {
			return entries[i].Territory > entries[j].Territory
		}
		return entries[i].OnTerritory > entries[j].OnTerritory
	})

	probs := make([]float64, len(entries))
	for i, e := range entries {
		probs[i] = e.Probability
	}
	cum := utils.CumSum(probs)
	// "At least n" includes every entry with exactly n remaining
	for i := len(entries) - 2; i >= 0; i-- {
		if entries[i].Remaining == entries[i+1].Remaining {
			cum[i] = cum[i+1]
		}
	}
	for i := range entries {
		entries[i].Probability = cum[i]
	}
	return entries
}

func (r *Result) Cumulative(p Perspective) []CumulativeEntry {
	return Cumulative(r.Outcomes, r.Config.Territories, p)
}

// ExpectedRemaining returns the mean number of troops the side keeps overall.
func ExpectedRemaining(dist Distribution, territories []Territory, p Perspective) float64 {
	mean := 0.0
	for _, entry := range dist.Sorted() {
		mean += entry.Probability * float64(remaining(entry.Outcome, territories, p))
	}
	return mean
}

func (r *Result) ExpectedRemaining(p Perspective) float64 {
	return ExpectedRemaining(r.Outcomes, r.Config.Territories, p)
}
