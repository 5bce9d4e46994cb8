package main

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"github.com/danielpatrickdp/perceptron/internal/store"
	"github.com/danielpatrickdp/perceptron/internal/trainer"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRun_ReferenceEndToEnd(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		xlsxPath:   filepath.Join(dir, "perceptron_training.xlsx"),
		csvPath:    filepath.Join(dir, "log.csv"),
		dbPath:     filepath.Join(dir, "runs.db"),
		maxBatches: -1,
	}

	require.NoError(t, run(context.Background(), opts, quietLogger()))

	for _, p := range []string{opts.xlsxPath, opts.csvPath} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		require.NotZero(t, info.Size())
	}

	st, err := store.NewStore(opts.dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.True(t, runs[0].Converged)
	require.Equal(t, store.StatusConverged, runs[0].Status)
	require.Equal(t, 5, runs[0].Batches)
	require.Equal(t, 5*30*70, runs[0].LogLen)
}

func TestRun_BatchLimitStillExports(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "stuck.json")
	require.NoError(t, os.WriteFile(data, []byte(`{
		"description": "unreachable target",
		"probe": [1, 1],
		"target": -1,
		"examples": [{"inputs": [1, 1], "expected": 1}]
	}`), 0o644))

	opts := options{
		dataPath:   data,
		csvPath:    filepath.Join(dir, "log.csv"),
		dbPath:     filepath.Join(dir, "runs.db"),
		batch:      2,
		maxBatches: 3,
	}
	err := run(context.Background(), opts, quietLogger())
	require.ErrorIs(t, err, trainer.ErrMaxBatches)

	body, err := os.ReadFile(opts.csvPath)
	require.NoError(t, err)
	require.Equal(t, 7, bytes.Count(body, []byte("\n"))) // header + 3 batches * 2 generations

	st, err := store.NewStore(opts.dbPath)
	require.NoError(t, err)
	defer st.Close()
	runs, err := st.ListRuns(1)
	require.NoError(t, err)
	require.Equal(t, store.StatusStopped, runs[0].Status)
	require.Equal(t, 6, runs[0].LogLen)
}

func TestRunStatus(t *testing.T) {
	require.Equal(t, store.StatusConverged, runStatus(trainer.Result{Converged: true}, nil))
	require.Equal(t, store.StatusStopped, runStatus(trainer.Result{}, trainer.ErrMaxBatches))
	require.Equal(t, store.StatusStopped, runStatus(trainer.Result{}, context.Canceled))
	require.Equal(t, store.StatusFailed, runStatus(trainer.Result{}, os.ErrClosed))
}

func TestEnvOr(t *testing.T) {
	t.Setenv("PERCEPTRON_TEST_KEY", "")
	require.Equal(t, "fallback", envOr("PERCEPTRON_TEST_KEY", "fallback"))
	t.Setenv("PERCEPTRON_TEST_KEY", "set")
	require.Equal(t, "set", envOr("PERCEPTRON_TEST_KEY", "fallback"))
}

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

func TestServe_StopsOnCancel(t *testing.T) {
	p, err := perceptron.New(2, 0.01)
	require.NoError(t, err)
	opts := options{serveAddr: "127.0.0.1:0", httpAddr: freeAddr(t)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, opts, p, quietLogger()) }()

	url := "http://" + opts.httpAddr + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_ListenError(t *testing.T) {
	p, err := perceptron.New(2, 0.01)
	require.NoError(t, err)
	err = serve(context.Background(), options{serveAddr: "256.0.0.1:bad"}, p, quietLogger())
	require.Error(t, err)
}
