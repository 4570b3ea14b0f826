package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Evaluation is one call to the win probability oracle.
type Evaluation struct {
	Troops      int // Attack troops of the evaluated config
	Probability float64
	Elapsed     time.Duration // Since the search started
}

type SearchMetric struct {
	Workers     int
	Duration    time.Duration
	Evaluations int
	Trace       []Evaluation
}

type Collector interface {
	Start(workers int)
	AddEvaluation(troops int, probability float64)
	Complete() SearchMetric
}

type collector struct {
	workers     int
	startTime   time.Time
	evaluations atomic.Int32
	mu          sync.Mutex
	trace       []Evaluation
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(workers int) {
	m.startTime = time.Now()
	m.workers = workers
}

// AddEvaluation may be called from several goroutines at once.
func (m *collector) AddEvaluation(troops int, probability float64) {
	m.evaluations.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.trace = append(m.trace, Evaluation{
		Troops:      troops,
		Probability: probability,
		Elapsed:     time.Since(m.startTime),
	})
}

func (m *collector) Complete() SearchMetric {
	m.mu.Lock()
	trace := make([]Evaluation, len(m.trace))
	copy(trace, m.trace)
	m.mu.Unlock()

	return SearchMetric{
		Workers:     m.workers,
		Duration:    time.Since(m.startTime),
		Evaluations: int(m.evaluations.Load()),
		Trace:       trace,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(workers int)                             {}
func (m *dummyCollector) AddEvaluation(troops int, probability float64) {}
func (m *dummyCollector) Complete() SearchMetric                        { return SearchMetric{} }
