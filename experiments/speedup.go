// Package experiments measures how the fortify optimizer scales with the
// number of evaluation goroutines.
package experiments

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"riskodds/experiments/metrics"
	"riskodds/searcher"
)

// SpeedupConfig lists the worker counts to compare and how many times each
// one repeats the same fortify scenario.
type SpeedupConfig struct {
	Workers []int
	Repeats int
	OutDir  string // Summaries are written under OutDir/speedup/<timestamp>
}

var DefaultWorkers = []int{1, 2, 4, 8, 16}

// RunSpeedupExperiment fortifies scenario once per repeat and worker count and
// stores one summary row per run. Every run must reach the same allocation.
func RunSpeedupExperiment(ctx context.Context, scenario searcher.FortifyConfig, cfg SpeedupConfig) ([]metrics.SearchRecord, error) {
	if len(cfg.Workers) == 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Repeats < 1 {
		cfg.Repeats = 1
	}

	records := []metrics.SearchRecord{}
	var reference []float64

	log.Info().Msg("starting speedup experiment...")

	for wi, workers := range cfg.Workers {
		log.Info().Msgf("starting config %d of %d with workers=%d...", wi+1, len(cfg.Workers), workers)

		for i := 0; i < cfg.Repeats; i++ {
			alloc, err := searcher.Fortify(ctx, scenario, searcher.WithWorkers(workers), searcher.WithMetrics())
			if err != nil {
				return nil, fmt.Errorf("failed to fortify with %d workers: %w", workers, err)
			}
			if reference == nil {
				reference = alloc.Probabilities
			} else if !equal(reference, alloc.Probabilities) {
				return nil, fmt.Errorf("allocation with %d workers differs from the first run", workers)
			}

			records = append(records, metrics.SearchRecord{
				Name:         fmt.Sprintf("workers=%d/run=%d", workers, i+1),
				SearchMetric: alloc.Metric,
			})
			log.Info().Msgf("completed run %d of %d in %s", i+1, cfg.Repeats, alloc.Metric.Duration)
		}
	}

	log.Info().Msg("completed speedup experiment")

	if cfg.OutDir == "" {
		return records, nil
	}
	writer, err := metrics.NewWriter(cfg.OutDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteSummaries(records); err != nil {
		return nil, fmt.Errorf("failed to write summaries: %w", err)
	}
	log.Info().Str("dir", writer.BaseDir()).Msg("stored summaries")

	return records, nil
}

func equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
