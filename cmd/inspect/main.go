package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/danielpatrickdp/perceptron/internal/export"
	"github.com/danielpatrickdp/perceptron/internal/store"
	"github.com/danielpatrickdp/perceptron/internal/trainer"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the run database")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show a single run")
	tail := flag.Int("tail", 10, "log entries to print in run detail, 0 for none")
	xlsxPath := flag.String("xlsx", "", "export the run's training log to this spreadsheet")
	csvPath := flag.String("csv", "", "export the run's training log to this CSV file")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/runs.db [--last N] [--run id [--tail N] [--xlsx out.xlsx] [--csv out.csv]] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *runID != "" {
		err = runDetailMode(os.Stdout, st, *runID, *tail, *jsonOut)
		if err == nil {
			err = exportRun(st, *runID, *xlsxPath, *csvPath)
		}
	} else {
		err = runListMode(os.Stdout, st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID       string  `json:"run_id"`
	Description string  `json:"description,omitempty"`
	Inputs      int     `json:"inputs"`
	Rate        float64 `json:"learning_rate"`
	Batches     int     `json:"batches"`
	Status      string  `json:"status"`
	LogLen      int     `json:"log_entries"`
	CreatedAt   string  `json:"created_at"`
}

func runListMode(w io.Writer, st *store.Store, last int, jsonOut bool) error {
	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[i] = listRow{
			RunID:       r.RunID,
			Description: r.Description,
			Inputs:      r.InputSize,
			Rate:        r.LearningRate,
			Batches:     r.Batches,
			Status:      r.Status,
			LogLen:      r.LogLen,
			CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(w, rows)
	}

	fmt.Fprintf(w, "%-10s  %6s  %8s  %7s  %-10s  %8s  %s\n",
		"Run", "Inputs", "Rate", "Batches", "Status", "Entries", "Created")
	fmt.Fprintf(w, "%-10s+-%6s+-%8s+-%7s+-%-10s+-%8s+-%s\n",
		"----------", "------", "--------", "-------", "----------", "--------", "--------------------")
	for _, r := range rows {
		fmt.Fprintf(w, "%-10s  %6d  %8.4f  %7d  %-10s  %8d  %s\n",
			shortID(r.RunID), r.Inputs, r.Rate, r.Batches, r.Status, r.LogLen, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	RunID        string     `json:"run_id"`
	Description  string     `json:"description,omitempty"`
	CreatedAt    string     `json:"created_at"`
	FinishedAt   string     `json:"finished_at,omitempty"`
	Status       string     `json:"status"`
	Batches      int        `json:"batches"`
	Probe        []float64  `json:"probe"`
	Target       int        `json:"target"`
	LogLen       int        `json:"log_entries"`
	FinalWeights []float64  `json:"final_weights,omitempty"`
	FinalBias    float64    `json:"final_bias"`
	WeightNorm   float64    `json:"weight_norm"`
	Mistakes     int        `json:"mistakes"`
	Tail         [][]string `json:"tail,omitempty"`
}

func runDetailMode(w io.Writer, st *store.Store, runID string, tail int, jsonOut bool) error {
	run, err := st.GetRun(runID)
	if err != nil {
		return err
	}
	entries, err := st.LogEntries(runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		RunID:       run.RunID,
		Description: run.Description,
		CreatedAt:   run.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Status:      run.Status,
		Batches:     run.Batches,
		Probe:       run.Probe,
		Target:      run.Target,
		LogLen:      len(entries),
	}
	if !run.FinishedAt.IsZero() {
		out.FinishedAt = run.FinishedAt.Format("2006-01-02T15:04:05Z")
	}
	for _, e := range entries {
		if e.Predicted != e.Expected {
			out.Mistakes++
		}
	}
	if n := len(entries); n > 0 {
		out.FinalWeights = entries[n-1].Weights
		out.FinalBias = entries[n-1].Bias
		out.WeightNorm = trainer.VectorNorm(out.FinalWeights)
	}
	if tail > 0 {
		start := len(entries) - tail
		if start < 0 {
			start = 0
		}
		out.Tail = export.Table(entries[start:])[1:]
	}

	if jsonOut {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "Run:         %s\n", out.RunID)
	if out.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", out.Description)
	}
	fmt.Fprintf(w, "Created:     %s\n", out.CreatedAt)
	fmt.Fprintf(w, "Finished:    %s\n", out.FinishedAt)
	fmt.Fprintf(w, "Status:      %s after %d batches\n", out.Status, out.Batches)
	fmt.Fprintf(w, "Probe:       %s -> %d\n", export.FormatVector(out.Probe), out.Target)
	fmt.Fprintf(w, "Entries:     %d (%d mistakes)\n", out.LogLen, out.Mistakes)
	fmt.Fprintf(w, "Weights:     %s\n", export.FormatVector(out.FinalWeights))
	fmt.Fprintf(w, "Bias:        %v\n", out.FinalBias)
	fmt.Fprintf(w, "Weight Norm: %.4f\n", out.WeightNorm)

	if len(out.Tail) > 0 {
		fmt.Fprintf(w, "\nLast %d entries:\n", len(out.Tail))
		for _, row := range out.Tail {
			fmt.Fprintf(w, "  gen=%-4s in=[%s] exp=%-2s got=%-2s w=[%s] b=%s\n",
				row[0], row[1], row[2], row[3], row[4], row[5])
		}
	}
	return nil
}

func exportRun(st *store.Store, runID, xlsxPath, csvPath string) error {
	if xlsxPath == "" && csvPath == "" {
		return nil
	}
	entries, err := st.LogEntries(runID)
	if err != nil {
		return err
	}
	if xlsxPath != "" {
		if err := export.WriteXLSX(xlsxPath, export.DefaultSheet, entries); err != nil {
			return err
		}
	}
	if csvPath != "" {
		if err := (export.CSVFile{Path: csvPath}).Export(entries); err != nil {
			return err
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
