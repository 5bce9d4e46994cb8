package replay

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/perceptron/internal/dataset"
	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"github.com/danielpatrickdp/perceptron/internal/store"
)

// #region errors
// ErrIncompleteRun is returned when a stored run does not hold enough log to
// rebuild its dataset.
var ErrIncompleteRun = errors.New("replay: incomplete run")
// #endregion errors

// #region fixture-from-run

// FixtureFromRun rebuilds the dataset of a recorded run. Generation 0 of the
// first batch visits every example once in order, so the first ExampleCount
// log entries carry the examples. MaxBatches is set to the number of whole
// batches present in entries.
func FixtureFromRun(run store.RunRecord, entries []perceptron.LogEntry) (*dataset.Fixture, error) {
	n := run.ExampleCount
	if n <= 0 {
		return nil, fmt.Errorf("run %s has no example count: %w", run.RunID, ErrIncompleteRun)
	}
	if len(entries) < n {
		return nil, fmt.Errorf("run %s: %d log entries, need %d: %w", run.RunID, len(entries), n, ErrIncompleteRun)
	}

	f := &dataset.Fixture{
		Description:      run.Description,
		InputSize:        run.InputSize,
		LearningRate:     run.LearningRate,
		BatchGenerations: run.BatchGenerations,
		MaxBatches:       BatchCount(run, len(entries)),
		Probe:            append([]float64(nil), run.Probe...),
		Target:           perceptron.Label(run.Target),
		Samples:          make([]dataset.Sample, n),
	}
	for i, e := range entries[:n] {
		if e.Generation != 0 {
			return nil, fmt.Errorf("run %s: entry %d has generation %d: %w", run.RunID, i, e.Generation, ErrIncompleteRun)
		}
		f.Samples[i] = dataset.Sample{
			Inputs:   append([]float64(nil), e.Inputs...),
			Expected: e.Expected,
		}
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("run %s: %w", run.RunID, err)
	}
	return f, nil
}

// BatchCount returns how many whole batches a log of logLen entries holds.
func BatchCount(run store.RunRecord, logLen int) int {
	per := run.ExampleCount * run.BatchGenerations
	if per <= 0 {
		return 0
	}
	return logLen / per
}

// #endregion fixture-from-run
