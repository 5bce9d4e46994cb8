package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"github.com/danielpatrickdp/perceptron/internal/trainer"
)

// #region errors
// ErrInvalidFixture is returned when a fixture fails validation.
var ErrInvalidFixture = errors.New("dataset: invalid fixture")
// #endregion errors

// #region fixture-types

// Fixture is the JSON structure of a training dataset plus its run settings.
type Fixture struct {
	Description      string           `json:"description"`
	InputSize        int              `json:"input_size"`
	LearningRate     float64          `json:"learning_rate"`
	BatchGenerations int              `json:"batch_generations"`
	MaxBatches       int              `json:"max_batches"`
	Probe            []float64        `json:"probe"`
	Target           perceptron.Label `json:"target"`
	Samples          []Sample         `json:"examples"`
}

// Sample mirrors perceptron.Example with JSON tags.
type Sample struct {
	Inputs   []float64        `json:"inputs"`
	Expected perceptron.Label `json:"expected"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads, parses and validates a JSON fixture file. A missing
// input_size is taken from the first example.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.InputSize == 0 && len(f.Samples) > 0 {
		f.InputSize = len(f.Samples[0].Inputs)
	}
	if f.Target == 0 {
		f.Target = perceptron.Positive
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &f, nil
}

// Save writes the fixture as indented JSON.
func (f *Fixture) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// Validate checks shapes, labels and values.
func (f *Fixture) Validate() error {
	if f.InputSize <= 0 {
		return fmt.Errorf("input size %d: %w", f.InputSize, ErrInvalidFixture)
	}
	if len(f.Samples) == 0 {
		return fmt.Errorf("no examples: %w", ErrInvalidFixture)
	}
	if f.LearningRate < 0 || f.BatchGenerations < 0 || f.MaxBatches < 0 {
		return fmt.Errorf("negative run setting: %w", ErrInvalidFixture)
	}
	if !f.Target.Valid() {
		return fmt.Errorf("target %d: %w", f.Target, ErrInvalidFixture)
	}
	if err := f.checkVector("probe", f.Probe); err != nil {
		return err
	}
	for i, s := range f.Samples {
		if err := f.checkVector(fmt.Sprintf("example %d", i), s.Inputs); err != nil {
			return err
		}
		if !s.Expected.Valid() {
			return fmt.Errorf("example %d: label %d: %w", i, s.Expected, ErrInvalidFixture)
		}
	}
	return nil
}

func (f *Fixture) checkVector(name string, v []float64) error {
	if len(v) != f.InputSize {
		return fmt.Errorf("%s: got %d values, want %d: %w", name, len(v), f.InputSize, ErrInvalidFixture)
	}
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%s: non-finite value: %w", name, ErrInvalidFixture)
		}
	}
	return nil
}

// Examples converts the samples to perceptron examples.
func (f *Fixture) Examples() []perceptron.Example {
	out := make([]perceptron.Example, len(f.Samples))
	for i, s := range f.Samples {
		out[i] = perceptron.Example{
			Inputs:   append([]float64(nil), s.Inputs...),
			Expected: s.Expected,
		}
	}
	return out
}

// TrainerConfig converts the run settings to a trainer configuration.
func (f *Fixture) TrainerConfig() trainer.Config {
	return trainer.Config{
		BatchGenerations: f.BatchGenerations,
		MaxBatches:       f.MaxBatches,
		Probe:            append([]float64(nil), f.Probe...),
		Target:           f.Target,
	}
}

// #endregion fixture-loader
