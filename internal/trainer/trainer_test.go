package trainer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/danielpatrickdp/perceptron/internal/dataset"
	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"github.com/danielpatrickdp/perceptron/internal/trainer"
	"github.com/stretchr/testify/require"
)

// alreadyPositive trains on a single correctly classified example, so the
// model never changes and a Negative target on [1,1] is unreachable.
var alreadyPositive = []perceptron.Example{{Inputs: []float64{1, 1}, Expected: perceptron.Positive}}

func newModel(t *testing.T, size int) *perceptron.Perceptron {
	t.Helper()
	p, err := perceptron.New(size, 0.01)
	require.NoError(t, err)
	return p
}

func TestRun_ReferenceConverges(t *testing.T) {
	f := dataset.Reference()
	p := newModel(t, f.InputSize)

	var hooked []int
	tr := trainer.NewTrainer(p, f.TrainerConfig(), nil)
	tr.OnBatch(func(batch int, m *perceptron.Perceptron) error {
		hooked = append(hooked, batch)
		require.Equal(t, batch*30*70, m.LogLen())
		return nil
	})

	res, err := tr.Run(context.Background(), f.Examples())
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.Equal(t, 5, res.Batches)
	require.Equal(t, 150, res.Generations)
	require.Equal(t, perceptron.Positive, res.Prediction)
	require.Equal(t, 5*30*70, res.LogLen)
	require.Equal(t, []int{1, 2, 3, 4, 5}, hooked)

	got, err := p.Predict(dataset.ReferenceProbe)
	require.NoError(t, err)
	require.Equal(t, perceptron.Positive, got)
}

func TestRun_TrainsBeforeFirstProbe(t *testing.T) {
	p := newModel(t, 2)
	tr := trainer.NewTrainer(p, trainer.Config{BatchGenerations: 3, Probe: []float64{1, 1}}, nil)

	res, err := tr.Run(context.Background(), alreadyPositive)
	require.NoError(t, err)
	require.Equal(t, 1, res.Batches)
	require.Equal(t, 3, p.LogLen())
}

func TestRun_MaxBatches(t *testing.T) {
	p := newModel(t, 2)
	tr := trainer.NewTrainer(p, trainer.Config{
		BatchGenerations: 2,
		MaxBatches:       4,
		Probe:            []float64{1, 1},
		Target:           perceptron.Negative,
	}, nil)

	res, err := tr.Run(context.Background(), alreadyPositive)
	require.ErrorIs(t, err, trainer.ErrMaxBatches)
	require.False(t, res.Converged)
	require.Equal(t, 4, res.Batches)
	require.Equal(t, 8, p.LogLen())
	require.Equal(t, perceptron.Positive, res.Prediction)
}

func TestRun_UnboundedStopsOnCancel(t *testing.T) {
	p := newModel(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := trainer.NewTrainer(p, trainer.Config{
		BatchGenerations: 1,
		Probe:            []float64{1, 1},
		Target:           perceptron.Negative,
	}, nil)
	tr.OnBatch(func(batch int, _ *perceptron.Perceptron) error {
		if batch == 25 {
			cancel()
		}
		return nil
	})

	res, err := tr.Run(ctx, alreadyPositive)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 25, res.Batches)
	require.Equal(t, 25, res.LogLen)
}

func TestRun_HookErrorStops(t *testing.T) {
	p := newModel(t, 2)
	boom := errors.New("disk full")
	tr := trainer.NewTrainer(p, trainer.Config{Probe: []float64{1, 1}, Target: perceptron.Negative}, nil)
	tr.OnBatch(func(int, *perceptron.Perceptron) error { return boom })

	res, err := tr.Run(context.Background(), alreadyPositive)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, res.Batches)
}

func TestRun_InvalidInput(t *testing.T) {
	p := newModel(t, 2)

	_, err := trainer.NewTrainer(p, trainer.Config{Probe: []float64{1}}, nil).Run(context.Background(), alreadyPositive)
	require.ErrorIs(t, err, perceptron.ErrInvalidArgument)
	require.Zero(t, p.LogLen())

	bad := []perceptron.Example{{Inputs: []float64{1, 2, 3}, Expected: perceptron.Positive}}
	_, err = trainer.NewTrainer(p, trainer.Config{Probe: []float64{1, 1}}, nil).Run(context.Background(), bad)
	require.ErrorIs(t, err, perceptron.ErrInvalidArgument)
	require.Zero(t, p.LogLen())

	_, err = trainer.NewTrainer(p, trainer.Config{Probe: []float64{1, 1}, MaxBatches: -1}, nil).Run(context.Background(), alreadyPositive)
	require.ErrorIs(t, err, perceptron.ErrInvalidArgument)
}

func TestNewTrainer_Defaults(t *testing.T) {
	tr := trainer.NewTrainer(newModel(t, 2), trainer.Config{Probe: []float64{0, 0}}, nil)
	cfg := tr.Config()
	require.Equal(t, 30, cfg.BatchGenerations)
	require.Zero(t, cfg.MaxBatches)
	require.Equal(t, perceptron.Positive, cfg.Target)
}

func TestEvaluate(t *testing.T) {
	p := newModel(t, 2)
	examples := []perceptron.Example{
		{Inputs: []float64{0, 0}, Expected: perceptron.Negative}, // -1
		{Inputs: []float64{1, 1}, Expected: perceptron.Positive}, // 1
		{Inputs: []float64{3, 0}, Expected: perceptron.Negative}, // 2, wrong
		{Inputs: []float64{0, 1}, Expected: perceptron.Positive}, // 0, wrong
	}

	rep, err := trainer.Evaluate(p, examples)
	require.NoError(t, err)
	require.Equal(t, 4, rep.Total)
	require.Equal(t, 2, rep.Correct)
	require.InDelta(t, 0.5, rep.Accuracy, 1e-12)
	require.Equal(t, []int{2, 3}, rep.Misclassified)
	require.InDelta(t, 1.41421356, rep.WeightNorm, 1e-6)
	require.Zero(t, p.LogLen())

	_, err = trainer.Evaluate(p, []perceptron.Example{{Inputs: []float64{1}, Expected: perceptron.Positive}})
	require.ErrorIs(t, err, perceptron.ErrInvalidArgument)
}

func TestEvaluate_ReferenceAfterConvergence(t *testing.T) {
	f := dataset.Reference()
	p := newModel(t, f.InputSize)
	_, err := trainer.NewTrainer(p, f.TrainerConfig(), nil).Run(context.Background(), f.Examples())
	require.NoError(t, err)

	rep, err := trainer.Evaluate(p, f.Examples())
	require.NoError(t, err)
	require.Equal(t, 70, rep.Total)
	require.Equal(t, 57, rep.Correct)
}

func TestVectorNorm(t *testing.T) {
	require.Zero(t, trainer.VectorNorm(nil))
	require.Equal(t, 5.0, trainer.VectorNorm([]float64{3, -4}))
	require.InDelta(t, 1.41421356, trainer.VectorNorm([]float64{1, 1}), 1e-6)
}
