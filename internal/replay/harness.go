// Package replay retrains a recorded run from its own log and checks that
// the new log matches entry for entry.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielpatrickdp/perceptron/internal/dataset"
	"github.com/danielpatrickdp/perceptron/internal/export"
	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"github.com/danielpatrickdp/perceptron/internal/trainer"
)

// #region types
// Divergence is the first differing column of one log entry.
type Divergence struct {
	Seq      int    // index into the log
	Field    string // column name from export.Header, or "Length"
	Stored   string
	Replayed string
}

// BatchResult compares the state at the end of one batch.
type BatchResult struct {
	Batch        int
	StoredBias   string
	ReplayedBias string
	Match        bool
}

// Summary provides aggregate stats from a comparison.
type Summary struct {
	StoredLen   int
	ReplayedLen int
	Matched     int
	Diverged    int
	Batches     int
	Converged   bool
}
// #endregion types

// #region replay

// Replay retrains a fresh perceptron on the fixture for at most
// fixture.MaxBatches batches and returns its log. Reaching the batch cap is
// not an error here: a stopped run replays to the same cap.
func Replay(ctx context.Context, f *dataset.Fixture, logger *slog.Logger) ([]perceptron.LogEntry, trainer.Result, error) {
	if f.MaxBatches <= 0 {
		return nil, trainer.Result{}, fmt.Errorf("replay needs a batch count: %w", ErrIncompleteRun)
	}
	p, err := perceptron.New(f.InputSize, f.LearningRate)
	if err != nil {
		return nil, trainer.Result{}, fmt.Errorf("create perceptron: %w", err)
	}
	res, err := trainer.NewTrainer(p, f.TrainerConfig(), logger).Run(ctx, f.Examples())
	if err != nil && !errors.Is(err, trainer.ErrMaxBatches) {
		return nil, res, err
	}
	return p.Log(), res, nil
}

// Compare walks both logs in order and reports one divergence per differing
// entry, plus a Length divergence when the logs differ in size. Values are
// compared in their exported text form, which round-trips float64 exactly.
func Compare(stored, replayed []perceptron.LogEntry) []Divergence {
	a := export.Table(stored)[1:]
	b := export.Table(replayed)[1:]

	var out []Divergence
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		for col := range a[i] {
			if a[i][col] != b[i][col] {
				out = append(out, Divergence{
					Seq:      i,
					Field:    export.Header[col],
					Stored:   a[i][col],
					Replayed: b[i][col],
				})
				break
			}
		}
	}
	if len(a) != len(b) {
		out = append(out, Divergence{
			Seq:      n,
			Field:    "Length",
			Stored:   fmt.Sprint(len(a)),
			Replayed: fmt.Sprint(len(b)),
		})
	}
	return out
}

// CompareBatches compares the bias after each batch of perBatch entries.
func CompareBatches(stored, replayed []perceptron.LogEntry, perBatch int) []BatchResult {
	if perBatch <= 0 {
		return nil
	}
	batches := max(len(stored), len(replayed)) / perBatch
	out := make([]BatchResult, 0, batches)
	for b := 1; b <= batches; b++ {
		last := b*perBatch - 1
		r := BatchResult{Batch: b, StoredBias: "-", ReplayedBias: "-"}
		if last < len(stored) {
			r.StoredBias = export.Table(stored[last : last+1])[1][5]
		}
		if last < len(replayed) {
			r.ReplayedBias = export.Table(replayed[last : last+1])[1][5]
		}
		r.Match = last < len(stored) && last < len(replayed) &&
			len(Compare(stored[last:last+1], replayed[last:last+1])) == 0
		out = append(out, r)
	}
	return out
}

// Summarize computes aggregate stats from a comparison.
func Summarize(stored, replayed []perceptron.LogEntry, divs []Divergence, res trainer.Result) Summary {
	s := Summary{
		StoredLen:   len(stored),
		ReplayedLen: len(replayed),
		Batches:     res.Batches,
		Converged:   res.Converged,
	}
	for _, d := range divs {
		if d.Field != "Length" {
			s.Diverged++
		}
	}
	s.Matched = min(len(stored), len(replayed)) - s.Diverged
	return s
}

// #endregion replay
