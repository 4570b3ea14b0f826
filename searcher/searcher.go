// Package searcher answers planning questions by repeatedly asking the exact
// battle engine for win probabilities: how many troops an attack needs, and
// where extra defenders help most.
package searcher

import (
	"errors"
	"runtime"

	"riskodds/battle"
	"riskodds/experiments/metrics"
	"riskodds/meta"
)

var (
	ErrSearchExhausted = errors.New("search exhausted")
	ErrInvalidTarget   = errors.New("invalid target probability")
	ErrUnknownMethod   = errors.New("unknown fortify method")
	ErrNegativeBudget  = errors.New("negative fortify budget")
)

type Option func(s *Searcher)

type Searcher struct {
	start   int
	ceiling int
	workers int
	engine  *battle.Engine
	metrics metrics.Collector
}

// WithStart sets the first attack troop count probed.
func WithStart(troops int) Option {
	return func(s *Searcher) {
		if troops > 0 {
			s.start = troops
		}
	}
}

// WithCeiling sets the largest attack troop count probed.
func WithCeiling(troops int) Option {
	return func(s *Searcher) {
		if troops > 0 {
			s.ceiling = troops
		}
	}
}

// WithWorkers bounds the goroutines evaluating fortify slots.
func WithWorkers(workers int) Option {
	return func(s *Searcher) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

func WithEngine(engine *battle.Engine) Option {
	return func(s *Searcher) {
		if engine != nil {
			s.engine = engine
		}
	}
}

func WithMetrics() Option {
	return func(s *Searcher) {
		s.metrics = metrics.NewCollector()
	}
}

func newSearcher(options ...Option) *Searcher {
	s := &Searcher{ // Default values
		start:   meta.SearchStart,
		ceiling: meta.MaxSearchTroops,
		workers: runtime.NumCPU(),
		engine:  battle.NewEngine(),
		metrics: metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}
