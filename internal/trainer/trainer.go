package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/danielpatrickdp/perceptron/internal/perceptron"
)

// #region trainer
// BatchHook runs after every training batch, before the probe is checked.
// Returning an error stops the run.
type BatchHook func(batch int, p *perceptron.Perceptron) error

// Trainer drives a perceptron through repeated training batches until the
// probe input is classified as the target.
type Trainer struct {
	model      *perceptron.Perceptron
	config     Config
	logger     *slog.Logger
	afterBatch BatchHook
}

// NewTrainer creates a trainer. Zero BatchGenerations and Target fall back to
// DefaultConfig values. A nil logger uses slog.Default().
func NewTrainer(p *perceptron.Perceptron, config Config, logger *slog.Logger) *Trainer {
	def := DefaultConfig()
	if config.BatchGenerations == 0 {
		config.BatchGenerations = def.BatchGenerations
	}
	if config.Target == 0 {
		config.Target = def.Target
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{model: p, config: config, logger: logger}
}

// OnBatch registers a hook called after every batch.
func (t *Trainer) OnBatch(h BatchHook) {
	t.afterBatch = h
}

// Config returns the effective configuration.
func (t *Trainer) Config() Config {
	return t.config
}
// #endregion trainer

// #region run
// Run trains in batches of BatchGenerations until the probe predicts Target.
// With MaxBatches == 0 there is no cap: on data that is not linearly separable
// Run only returns once ctx is done.
func (t *Trainer) Run(ctx context.Context, examples []perceptron.Example) (Result, error) {
	var res Result
	if t.config.BatchGenerations < 0 || t.config.MaxBatches < 0 {
		return res, fmt.Errorf("batch generations %d, max batches %d: %w",
			t.config.BatchGenerations, t.config.MaxBatches, perceptron.ErrInvalidArgument)
	}
	if !t.config.Target.Valid() {
		return res, fmt.Errorf("target %d: %w", t.config.Target, perceptron.ErrInvalidArgument)
	}
	// Probe shape is checked once up front so a bad probe fails before training.
	if _, err := t.model.Predict(t.config.Probe); err != nil {
		return res, fmt.Errorf("probe: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			res.LogLen = t.model.LogLen()
			return res, err
		}

		if err := t.model.Train(examples, t.config.BatchGenerations); err != nil {
			return res, fmt.Errorf("train batch %d: %w", res.Batches+1, err)
		}
		res.Batches++
		res.Generations += t.config.BatchGenerations
		res.LogLen = t.model.LogLen()

		if t.afterBatch != nil {
			if err := t.afterBatch(res.Batches, t.model); err != nil {
				return res, fmt.Errorf("after batch %d: %w", res.Batches, err)
			}
		}

		pred, err := t.model.Predict(t.config.Probe)
		if err != nil {
			return res, fmt.Errorf("probe: %w", err)
		}
		res.Prediction = pred

		t.logger.Debug("batch complete",
			"batch", res.Batches,
			"generations", res.Generations,
			"probe", pred,
			"bias", t.model.Bias(),
		)

		if pred == t.config.Target {
			res.Converged = true
			t.logger.Info("probe reached target",
				"batches", res.Batches,
				"generations", res.Generations,
				"log_entries", res.LogLen,
			)
			return res, nil
		}

		if t.config.MaxBatches > 0 && res.Batches >= t.config.MaxBatches {
			t.logger.Warn("batch limit reached", "batches", res.Batches, "target", t.config.Target)
			return res, ErrMaxBatches
		}
	}
}
// #endregion run

// #region evaluate
// Evaluate classifies every example and reports accuracy. It does not train.
func Evaluate(p *perceptron.Perceptron, examples []perceptron.Example) (Report, error) {
	rep := Report{Total: len(examples)}
	for i, ex := range examples {
		got, err := p.Predict(ex.Inputs)
		if err != nil {
			return Report{}, fmt.Errorf("example %d: %w", i, err)
		}
		if got == ex.Expected {
			rep.Correct++
		} else {
			rep.Misclassified = append(rep.Misclassified, i)
		}
	}
	if rep.Total > 0 {
		rep.Accuracy = float64(rep.Correct) / float64(rep.Total)
	}
	rep.WeightNorm = VectorNorm(p.Weights())
	return rep, nil
}

// VectorNorm is the Euclidean length of v.
func VectorNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
// #endregion evaluate
