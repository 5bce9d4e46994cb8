package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/danielpatrickdp/perceptron/internal/dataset"
	"github.com/danielpatrickdp/perceptron/internal/logging"
	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"github.com/danielpatrickdp/perceptron/internal/replay"
	"github.com/danielpatrickdp/perceptron/internal/store"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the runs database")
	runID := flag.String("run", "", "run ID to replay (default: most recent)")
	fixtureOut := flag.String("write-fixture", "", "write the rebuilt dataset as a JSON fixture and exit")
	maxDiffs := flag.Int("max-diffs", 10, "divergent entries to print")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -db path/to/runs.db [-run ID] [-write-fixture out.json]")
		os.Exit(2)
	}

	logger := logging.Configure(os.Stderr)
	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(2)
	}

	code := runReplay(os.Stdout, st, *runID, *fixtureOut, *maxDiffs, logger)
	st.Close()
	os.Exit(code)
}

// #endregion main

// #region replay

// runReplay returns 0 when the logs match, 1 on divergence and 2 on error.
func runReplay(w io.Writer, st *store.Store, runID, fixtureOut string, maxDiffs int, logger *slog.Logger) int {
	run, err := resolveRun(st, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "find run: %v\n", err)
		return 2
	}
	stored, err := st.LogEntries(run.RunID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load log: %v\n", err)
		return 2
	}
	f, err := replay.FixtureFromRun(run, stored)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild dataset: %v\n", err)
		return 2
	}

	if fixtureOut != "" {
		if err := f.Save(fixtureOut); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 2
		}
		fmt.Fprintf(w, "Wrote %d examples from run %s to %s\n", len(f.Samples), run.RunID, fixtureOut)
		return 0
	}

	replayed, res, err := replay.Replay(context.Background(), f, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}
	divs := replay.Compare(stored, replayed)
	printComparison(w, run, f, stored, replayed, divs, maxDiffs)

	sum := replay.Summarize(stored, replayed, divs, res)
	fmt.Fprintf(w, "\nSummary: %d stored, %d replayed, %d match, %d diverge\n",
		sum.StoredLen, sum.ReplayedLen, sum.Matched, sum.Diverged)
	if res.Converged != run.Converged && run.Status != store.StatusRunning {
		fmt.Fprintf(w, "Outcome differs: stored converged=%v, replayed converged=%v\n", run.Converged, res.Converged)
		return 1
	}
	if len(divs) > 0 {
		return 1
	}
	return 0
}

func resolveRun(st *store.Store, runID string) (store.RunRecord, error) {
	if runID != "" {
		return st.GetRun(runID)
	}
	runs, err := st.ListRuns(1)
	if err != nil {
		return store.RunRecord{}, err
	}
	if len(runs) == 0 {
		return store.RunRecord{}, store.ErrRunNotFound
	}
	return runs[0], nil
}

// #endregion replay

// #region output

// printComparison outputs a per-batch table followed by the first maxDiffs
// divergent entries.
func printComparison(w io.Writer, run store.RunRecord, f *dataset.Fixture, stored, replayed []perceptron.LogEntry, divs []replay.Divergence, maxDiffs int) {
	fmt.Fprintf(w, "Run %s: %d examples, %d generations per batch\n\n", run.RunID, len(f.Samples), f.BatchGenerations)
	fmt.Fprintf(w, "%-8s| %-24s| %-24s| %s\n", "Batch", "Stored bias", "Replayed bias", "Match")
	fmt.Fprintf(w, "%-8s+%-25s+%-25s+%s\n",
		"--------", "-------------------------", "-------------------------", "------")

	for _, b := range replay.CompareBatches(stored, replayed, len(f.Samples)*f.BatchGenerations) {
		match := "DIFF"
		if b.Match {
			match = "OK"
		}
		fmt.Fprintf(w, "%-8d| %-24s| %-24s| %s\n", b.Batch, b.StoredBias, b.ReplayedBias, match)
	}

	if len(divs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%-8s| %-10s| %-24s| %s\n", "Seq", "Field", "Stored", "Replayed")
	for i, d := range divs {
		if i == maxDiffs {
			fmt.Fprintf(w, "... %d more\n", len(divs)-maxDiffs)
			break
		}
		fmt.Fprintf(w, "%-8d| %-10s| %-24s| %s\n", d.Seq, d.Field, d.Stored, d.Replayed)
	}
}

// #endregion output
