package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts concurrent evaluations", func(t *testing.T) {
		c := NewCollector()
		c.Start(4)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(troops int) {
				defer wg.Done()
				for j := 0; j < 25; j++ {
					c.AddEvaluation(troops, 0.5)
				}
			}(i + 2)
		}
		wg.Wait()

		metric := c.Complete()
		require.Equal(t, 4, metric.Workers)
		require.Equal(t, 100, metric.Evaluations)
		require.Len(t, metric.Trace, 100)
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(8)
		c.AddEvaluation(3, 0.2)

		require.Equal(t, SearchMetric{}, c.Complete())
	})
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	metric := SearchMetric{
		Workers:     1,
		Evaluations: 2,
		Trace: []Evaluation{
			{Troops: 2, Probability: 0.25},
			{Troops: 4, Probability: 0.75},
		},
	}

	t.Run("trace", func(t *testing.T) {
		require.NoError(t, w.WriteTrace("mintroops", metric))

		rows := readCSV(t, filepath.Join(w.BaseDir(), "mintroops_trace.csv"))
		require.Equal(t, [][]string{
			{"evaluation", "troops", "probability", "elapsed"},
			{"1", "2", "0.25", "0s"},
			{"2", "4", "0.75", "0s"},
		}, rows)
	})

	t.Run("summaries", func(t *testing.T) {
		require.NoError(t, w.WriteSummaries([]SearchRecord{{Name: "fortify", SearchMetric: metric}}))

		rows := readCSV(t, filepath.Join(w.BaseDir(), "summaries.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, []string{"fortify", "1", "0s", "2"}, rows[1])
	})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
