package store

import "time"

// #region run-record
// RunRecord describes one training run and, once finished, its outcome.
type RunRecord struct {
	RunID            string
	Description      string
	InputSize        int
	LearningRate     float64
	BatchGenerations int
	MaxBatches       int
	ExampleCount     int // examples per generation
	Probe            []float64
	Target           int
	CreatedAt        time.Time
	FinishedAt       time.Time // zero while the run is in progress
	Batches          int
	Converged        bool
	Status           string // "running" | "converged" | "stopped" | "failed"
	LogLen           int
}
// #endregion run-record

// #region outcome
// Outcome is written by FinishRun.
type Outcome struct {
	Batches   int
	Converged bool
	Status    string
}
// #endregion outcome

const (
	StatusRunning   = "running"
	StatusConverged = "converged"
	StatusStopped   = "stopped"
	StatusFailed    = "failed"
)
