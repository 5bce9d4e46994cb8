package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	return openDB(t, filepath.Join(t.TempDir(), "test.db"))
}

func openDB(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun() RunRecord {
	return RunRecord{
		Description:      "xor",
		InputSize:        2,
		LearningRate:     0.01,
		BatchGenerations: 30,
		MaxBatches:       5,
		ExampleCount:     2,
		Probe:            []float64{1, 1},
		Target:           1,
	}
}

func trainedLog(t *testing.T, gens int) (*perceptron.Perceptron, []perceptron.LogEntry) {
	t.Helper()
	p, err := perceptron.New(2, 0.01)
	require.NoError(t, err)
	require.NoError(t, p.Train([]perceptron.Example{
		{Inputs: []float64{0.5, 2}, Expected: perceptron.Negative},
		{Inputs: []float64{1, 0.1}, Expected: perceptron.Positive},
	}, gens))
	return p, p.Log()
}

func TestCreateAndGetRun(t *testing.T) {
	s := tempDB(t)

	rec, err := s.CreateRun(sampleRun())
	require.NoError(t, err)
	require.NotEmpty(t, rec.RunID, "expected generated run ID")
	require.Equal(t, StatusRunning, rec.Status)

	got, err := s.GetRun(rec.RunID)
	require.NoError(t, err)
	require.Equal(t, "xor", got.Description)
	require.Equal(t, 2, got.InputSize)
	require.Equal(t, 5, got.MaxBatches)
	require.Equal(t, 2, got.ExampleCount)
	require.Equal(t, []float64{1, 1}, got.Probe)
	require.True(t, got.FinishedAt.IsZero(), "running run has no finished_at")
	require.Zero(t, got.LogLen)
}

func TestGetRunNotFound(t *testing.T) {
	s := tempDB(t)
	_, err := s.GetRun("nonexistent-id")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestAppendLogRoundTrip(t *testing.T) {
	s := tempDB(t)
	rec, err := s.CreateRun(sampleRun())
	require.NoError(t, err)

	p, log := trainedLog(t, 3)
	// persist in two chunks the way the trainer hook does
	require.NoError(t, s.AppendLog(rec.RunID, log[:2]))
	require.NoError(t, s.AppendLog(rec.RunID, p.LogSince(2)))
	require.NoError(t, s.AppendLog(rec.RunID, nil))

	got, err := s.LogEntries(rec.RunID)
	require.NoError(t, err)
	require.Equal(t, log, got)

	run, err := s.GetRun(rec.RunID)
	require.NoError(t, err)
	require.Equal(t, len(log), run.LogLen)
}

func TestAppendLogUnknownRun(t *testing.T) {
	s := tempDB(t)
	_, log := trainedLog(t, 1)
	require.Error(t, s.AppendLog("missing", log), "expected foreign key error")
}

func TestFinishRun(t *testing.T) {
	s := tempDB(t)
	rec, err := s.CreateRun(sampleRun())
	require.NoError(t, err)

	require.NoError(t, s.FinishRun(rec.RunID, Outcome{Batches: 5, Converged: true, Status: StatusConverged}))
	got, err := s.GetRun(rec.RunID)
	require.NoError(t, err)
	require.True(t, got.Converged)
	require.Equal(t, 5, got.Batches)
	require.Equal(t, StatusConverged, got.Status)
	require.False(t, got.FinishedAt.IsZero(), "expected finished_at")

	err = s.FinishRun("missing", Outcome{Status: StatusFailed})
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	s := tempDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"r1", "r2", "r3"} {
		rec := sampleRun()
		rec.RunID = id
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := s.CreateRun(rec)
		require.NoError(t, err, "CreateRun %s", id)
	}

	runs, err := s.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "r3", runs[0].RunID, "newest first")
	require.Equal(t, "r2", runs[1].RunID)
}

func TestVectorEncoding(t *testing.T) {
	in := []float64{0, -1.5, 3.14159, 1e-300}
	require.Equal(t, in, decodeVector(encodeVector(in)))
}

func TestNullIfEmpty(t *testing.T) {
	require.Nil(t, nullIfEmpty(""))
	require.Equal(t, "hello", nullIfEmpty("hello"))
}

func TestAppendLogContext(t *testing.T) {
	s := tempDB(t)
	rec, err := s.CreateRun(sampleRun())
	require.NoError(t, err)
	_, log := trainedLog(t, 2)

	require.NoError(t, s.AppendLogContext(context.Background(), rec.RunID, log))
	run, err := s.GetRun(rec.RunID)
	require.NoError(t, err)
	require.Equal(t, len(log), run.LogLen)

	// a foreign key failure is not retried
	start := time.Now()
	err = s.AppendLogContext(context.Background(), "missing", log)
	require.Error(t, err)
	require.False(t, isBusy(err))
	require.Less(t, time.Since(start), time.Second, "non-busy error was retried")
}

// TestAppendLogContext_WaitsForWriter holds a write transaction on one
// connection and appends through a second store on the same file.
func TestAppendLogContext_WaitsForWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	writer := openDB(t, path)
	appender := openDB(t, path)

	rec, err := writer.CreateRun(sampleRun())
	require.NoError(t, err)
	_, log := trainedLog(t, 2)

	tx, err := writer.DB().Begin()
	require.NoError(t, err)
	_, err = tx.Exec(`UPDATE runs SET status = ? WHERE run_id = ?`, StatusRunning, rec.RunID)
	require.NoError(t, err)

	err = appender.AppendLog(rec.RunID, log)
	require.Error(t, err)
	require.True(t, isBusy(err), "expected SQLITE_BUSY, got %v", err)

	released := make(chan error, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		released <- tx.Commit()
	}()

	require.NoError(t, appender.AppendLogContext(context.Background(), rec.RunID, log))
	require.NoError(t, <-released)

	got, err := appender.LogEntries(rec.RunID)
	require.NoError(t, err)
	require.Equal(t, log, got)
}

func TestAppendLogContext_GivesUpOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	writer := openDB(t, path)
	appender := openDB(t, path)

	rec, err := writer.CreateRun(sampleRun())
	require.NoError(t, err)
	_, log := trainedLog(t, 1)

	tx, err := writer.DB().Begin()
	require.NoError(t, err)
	defer tx.Rollback()
	_, err = tx.Exec(`UPDATE runs SET status = ? WHERE run_id = ?`, StatusRunning, rec.RunID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = appender.AppendLogContext(ctx, rec.RunID, log)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded) || isBusy(err), "got %v", err)
}

func TestIsBusy(t *testing.T) {
	require.False(t, isBusy(nil))
	// only the driver's typed error counts, not matching text
	require.False(t, isBusy(errors.New("database is locked (5) (SQLITE_BUSY)")))
	require.False(t, isBusy(fmt.Errorf("insert entry 0: %w", errors.New("FOREIGN KEY constraint failed"))))
}
