package searcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"riskodds/battle"
	"riskodds/experiments/metrics"
)

// MinTroops is the smallest attacking force that reaches the target
// probability of conquering every territory.
type MinTroops struct {
	Troops      int
	Probability float64
	Evaluations int
	Metric      metrics.SearchMetric
}

// FindMinTroops doubles the attack until it reaches target, then bisects the
// last interval. Win probability never decreases with more attackers, so the
// answer is exact.
func FindMinTroops(ctx context.Context, target float64, territories []battle.Territory, stop int, options ...Option) (MinTroops, error) {
	s := newSearcher(options...)

	if !(target > 0 && target < 1) {
		return MinTroops{}, fmt.Errorf("%w: %v is not in (0, 1)", ErrInvalidTarget, target)
	}
	cfg := battle.BattleConfig{
		AttackTroops: s.start,
		Territories:  territories,
		Stop:         stop,
	}
	if err := cfg.Validate(); err != nil {
		return MinTroops{}, err
	}
	cfg = cfg.Copy()

	s.metrics.Start(1)
	result := MinTroops{}
	probe := func(troops int) (float64, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		chain, err := s.engine.ResolveChain(cfg.WithAttack(troops))
		if err != nil {
			return 0, err
		}
		p := chain.FinalWinProbability()
		result.Evaluations++
		s.metrics.AddEvaluation(troops, p)
		log.Debug().Int("troops", troops).Float64("probability", p).Msg("probed attack")
		return p, nil
	}

	// Invariant: f(lo) < target <= f(hi), with f(0) taken as 0
	lo, hi := 0, s.start
	pHi, err := probe(hi)
	if err != nil {
		return result, err
	}
	for pHi < target {
		if hi >= s.ceiling {
			result.Metric = s.metrics.Complete()
			return result, fmt.Errorf("%w: %d troops win with probability %.6f, want %.6f",
				ErrSearchExhausted, hi, pHi, target)
		}
		lo, hi = hi, min(hi*2, s.ceiling)
		if pHi, err = probe(hi); err != nil {
			return result, err
		}
	}

	for lo+1 < hi {
		mid := lo + (hi-lo)/2
		p, err := probe(mid)
		if err != nil {
			return result, err
		}
		if p >= target {
			hi, pHi = mid, p
		} else {
			lo = mid
		}
	}

	result.Troops = hi
	result.Probability = pHi
	result.Metric = s.metrics.Complete()
	log.Info().
		Int("troops", hi).
		Float64("probability", pHi).
		Int("evaluations", result.Evaluations).
		Msg("found minimum troops")
	return result, nil
}
