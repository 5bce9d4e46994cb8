package trainer

import (
	"errors"

	"github.com/danielpatrickdp/perceptron/internal/perceptron"
)

// #region errors
// ErrMaxBatches is returned by Run when the probe never reached the target
// class within Config.MaxBatches batches.
var ErrMaxBatches = errors.New("trainer: probe did not reach target within batch limit")
// #endregion errors

// #region config
// Config controls the convergence loop.
type Config struct {
	BatchGenerations int              // generations per Train call (default 30)
	MaxBatches       int              // 0 = unbounded
	Probe            []float64        // input checked after every batch
	Target           perceptron.Label // class the probe must reach
}

// DefaultConfig returns the 30-generation, unbounded, positive-target loop.
// Probe must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		BatchGenerations: 30,
		MaxBatches:       0,
		Target:           perceptron.Positive,
	}
}
// #endregion config

// #region result
// Result summarizes a Run.
type Result struct {
	Batches     int
	Generations int
	Converged   bool
	Prediction  perceptron.Label // probe prediction after the last batch
	LogLen      int
}
// #endregion result

// #region report
// Report is the outcome of Evaluate over a labeled dataset.
type Report struct {
	Total         int
	Correct       int
	Accuracy      float64
	Misclassified []int // indices into the evaluated examples
	WeightNorm    float64
}
// #endregion report
