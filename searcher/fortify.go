package searcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"riskodds/battle"
	"riskodds/experiments/metrics"
	"riskodds/utils"
)

// Method selects what a fortify step tries to minimize.
type Method string

const (
	// MethodAny lowers the probability that any of the battles is lost.
	MethodAny Method = "any"
	// MethodWeakest lowers the loss probability of the most threatened battle.
	MethodWeakest Method = "weakest"
)

func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case "", MethodAny:
		return MethodAny, nil
	case MethodWeakest:
		return MethodWeakest, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// FortifyConfig is a set of expected attacks on the defender and the troops
// the defender can add before they happen.
type FortifyConfig struct {
	Battles []battle.BattleConfig `yaml:"battles" mapstructure:"battles"`
	Budget  int                   `yaml:"budget" mapstructure:"budget"`
	Method  Method                `yaml:"method" mapstructure:"method"`
}

// Step is one troop added by the optimizer.
type Step struct {
	Battle    int
	Territory int
	JointLoss float64 // After the troop was added
}

// Allocation is where the budget went. Probabilities holds the attacker's
// final win probability of every battle after fortification.
type Allocation struct {
	Battles       []battle.BattleConfig
	Added         [][]int // Troops added per battle and territory
	Probabilities []float64
	JointLoss     float64 // Probability that at least one battle is lost
	Steps         []Step
	Metric        metrics.SearchMetric
}

type slot struct {
	battle    int
	territory int
}

// Fortify spends the budget one troop at a time, each time on the territory
// that improves the chosen objective most. Ties go to the lowest battle and
// then territory index. The allocation is greedy and does not anticipate
// how the attacker responds.
func Fortify(ctx context.Context, cfg FortifyConfig, options ...Option) (Allocation, error) {
	s := newSearcher(options...)

	method, err := ParseMethod(string(cfg.Method))
	if err != nil {
		return Allocation{}, err
	}
	if cfg.Budget < 0 {
		return Allocation{}, fmt.Errorf("%w: %d", ErrNegativeBudget, cfg.Budget)
	}
	if cfg.Budget > 0 && len(cfg.Battles) == 0 {
		return Allocation{}, fmt.Errorf("%w: no battles to fortify", battle.ErrConfiguration)
	}
	for i, b := range cfg.Battles {
		if err := b.Validate(); err != nil {
			return Allocation{}, fmt.Errorf("battle %d: %w", i+1, err)
		}
	}

	s.metrics.Start(s.workers)
	alloc := Allocation{
		Battles: make([]battle.BattleConfig, len(cfg.Battles)),
		Added:   make([][]int, len(cfg.Battles)),
	}
	var slots []slot
	for i, b := range cfg.Battles {
		alloc.Battles[i] = b.Copy()
		alloc.Added[i] = make([]int, len(b.Territories))
		for t := range b.Territories {
			slots = append(slots, slot{battle: i, territory: t})
		}
	}

	alloc.Probabilities, err = s.evaluate(ctx, alloc.Battles, nil)
	if err != nil {
		return Allocation{}, err
	}
	alloc.JointLoss = jointLoss(alloc.Probabilities)

	for step := 0; step < cfg.Budget; step++ {
		candidates := slots
		if method == MethodWeakest {
			weakest := utils.ArgMax(alloc.Probabilities)
			candidates = nil
			for _, sl := range slots {
				if sl.battle == weakest {
					candidates = append(candidates, sl)
				}
			}
		}

		probs, err := s.evaluate(ctx, alloc.Battles, candidates)
		if err != nil {
			return Allocation{}, err
		}

		scores := make([]float64, len(candidates))
		for i, sl := range candidates {
			if method == MethodWeakest {
				scores[i] = probs[i]
				continue
			}
			trial := make([]float64, len(alloc.Probabilities))
			copy(trial, alloc.Probabilities)
			trial[sl.battle] = probs[i]
			scores[i] = jointLoss(trial)
		}
		best := utils.ArgMin(scores)
		chosen := candidates[best]

		alloc.Battles[chosen.battle].Territories[chosen.territory].DefenseTroops++
		alloc.Added[chosen.battle][chosen.territory]++
		alloc.Probabilities[chosen.battle] = probs[best]
		alloc.JointLoss = jointLoss(alloc.Probabilities)
		alloc.Steps = append(alloc.Steps, Step{
			Battle:    chosen.battle,
			Territory: chosen.territory,
			JointLoss: alloc.JointLoss,
		})

		log.Debug().
			Int("step", step+1).
			Int("battle", chosen.battle).
			Int("territory", chosen.territory).
			Float64("probability", probs[best]).
			Float64("joint_loss", alloc.JointLoss).
			Msg("added defender")
	}

	alloc.Metric = s.metrics.Complete()
	log.Info().
		Str("method", string(method)).
		Int("budget", cfg.Budget).
		Float64("joint_loss", alloc.JointLoss).
		Msg("fortified")
	return alloc, nil
}

// evaluate returns the attacker's final win probability for each candidate
// slot with one more defender on it. A nil candidate list evaluates the
// battles as they are.
func (s *Searcher) evaluate(ctx context.Context, battles []battle.BattleConfig, candidates []slot) ([]float64, error) {
	configs := make([]battle.BattleConfig, 0, len(battles))
	if candidates == nil {
		configs = append(configs, battles...)
	} else {
		for _, sl := range candidates {
			cfg := battles[sl.battle].Copy()
			cfg.Territories[sl.territory].DefenseTroops++
			configs = append(configs, cfg)
		}
	}

	probs := make([]float64, len(configs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, cfg := range configs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.engine.ResolveChain(cfg)
			if err != nil {
				return err
			}
			probs[i] = result.FinalWinProbability()
			s.metrics.AddEvaluation(cfg.AttackTroops, probs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return probs, nil
}

func jointLoss(probs []float64) float64 {
	hold := 1.0
	for _, p := range probs {
		hold *= 1 - p
	}
	return 1 - hold
}
