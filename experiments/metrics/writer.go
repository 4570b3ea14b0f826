package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type SearchRecord struct {
	Name string // Subcommand or search that produced the metric
	SearchMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of root named by the current timestamp.
func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) BaseDir() string {
	return w.baseDir
}

// WriteTrace writes every oracle evaluation of metric to <name>_trace.csv.
func (w *Writer) WriteTrace(name string, metric SearchMetric) error {
	path := filepath.Join(w.baseDir, name+"_trace.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"evaluation", "troops", "probability", "elapsed"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write trace header: %w", err)
	}

	for i, e := range metric.Trace {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(e.Troops),
			strconv.FormatFloat(e.Probability, 'g', -1, 64),
			e.Elapsed.String(),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write trace row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteSummaries(records []SearchRecord) error {
	path := filepath.Join(w.baseDir, "summaries.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summaries file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"name", "workers", "duration", "evaluations"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write summaries header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.Name,
			strconv.Itoa(record.Workers),
			record.Duration.String(),
			strconv.Itoa(record.Evaluations),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	return nil
}
