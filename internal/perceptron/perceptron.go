package perceptron

import (
	"fmt"
	"math"
)

// #region perceptron-struct
// Perceptron is a single-layer binary classifier trained with the perceptron rule.
// It is not safe for concurrent use.
type Perceptron struct {
	weights      []float64
	bias         float64
	learningRate float64
	log          []LogEntry
}
// #endregion perceptron-struct

// #region constructor
// New creates a perceptron for inputSize features. A learningRate of 0 selects
// DefaultLearningRate.
func New(inputSize int, learningRate float64) (*Perceptron, error) {
	if inputSize <= 0 {
		return nil, fmt.Errorf("input size %d: %w", inputSize, ErrInvalidArgument)
	}
	if learningRate == 0 {
		learningRate = DefaultLearningRate
	}
	if learningRate < 0 || math.IsNaN(learningRate) || math.IsInf(learningRate, 0) {
		return nil, fmt.Errorf("learning rate %v: %w", learningRate, ErrInvalidArgument)
	}

	weights := make([]float64, inputSize)
	for i := range weights {
		weights[i] = InitialWeight
	}
	return &Perceptron{
		weights:      weights,
		bias:         InitialBias,
		learningRate: learningRate,
	}, nil
}
// #endregion constructor

// #region accessors
// InputSize returns the number of features the model accepts.
func (p *Perceptron) InputSize() int { return len(p.weights) }

// LearningRate returns the configured learning rate.
func (p *Perceptron) LearningRate() float64 { return p.learningRate }

// Bias returns the current bias.
func (p *Perceptron) Bias() float64 { return p.bias }

// Weights returns a copy of the current weight vector.
func (p *Perceptron) Weights() []float64 {
	return append([]float64(nil), p.weights...)
}

// LogLen returns the number of training log entries.
func (p *Perceptron) LogLen() int { return len(p.log) }

// Log returns a copy of the training log in append order.
func (p *Perceptron) Log() []LogEntry {
	return p.LogSince(0)
}

// LogSince returns copies of the log entries at index offset and later.
func (p *Perceptron) LogSince(offset int) []LogEntry {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(p.log) {
		return nil
	}
	out := make([]LogEntry, 0, len(p.log)-offset)
	for _, e := range p.log[offset:] {
		out = append(out, e.clone())
	}
	return out
}
// #endregion accessors

// #region activation
// Activation maps a weighted sum to a class. A sum of exactly zero is Negative.
func Activation(sum float64) Label {
	if sum > 0 {
		return Positive
	}
	return Negative
}
// #endregion activation

// #region predict
// Predict classifies inputs. It has no side effects.
func (p *Perceptron) Predict(inputs []float64) (Label, error) {
	if err := p.checkArity(inputs); err != nil {
		return 0, err
	}
	return Activation(p.sum(inputs)), nil
}

func (p *Perceptron) sum(inputs []float64) float64 {
	s := p.bias
	for i, x := range inputs {
		// explicit conversion keeps the product from being fused into an FMA
		s += float64(x * p.weights[i])
	}
	return s
}

func (p *Perceptron) checkArity(inputs []float64) error {
	if len(inputs) != len(p.weights) {
		return fmt.Errorf("got %d inputs, want %d: %w", len(inputs), len(p.weights), ErrInvalidArgument)
	}
	return nil
}
// #endregion predict

// #region train
// Train runs generations passes over examples, in order, applying the
// perceptron rule after every example and appending one log entry per example.
// Weights, bias and log carry over between calls. Examples are validated before
// anything is mutated, so a failed call leaves the model untouched.
func (p *Perceptron) Train(examples []Example, generations int) error {
	if generations < 0 {
		return fmt.Errorf("generations %d: %w", generations, ErrInvalidArgument)
	}
	for i, ex := range examples {
		if err := p.checkArity(ex.Inputs); err != nil {
			return fmt.Errorf("example %d: %w", i, err)
		}
		if !ex.Expected.Valid() {
			return fmt.Errorf("example %d: label %d: %w", i, ex.Expected, ErrInvalidArgument)
		}
	}

	for gen := 0; gen < generations; gen++ {
		for _, ex := range examples {
			prediction := Activation(p.sum(ex.Inputs))
			step := p.learningRate * float64(ex.Expected-prediction)

			for i := range p.weights {
				p.weights[i] += float64(step * ex.Inputs[i])
			}
			p.bias += step

			p.log = append(p.log, LogEntry{
				Generation: gen,
				Inputs:     append([]float64(nil), ex.Inputs...),
				Expected:   ex.Expected,
				Predicted:  prediction,
				Weights:    append([]float64(nil), p.weights...),
				Bias:       p.bias,
			})
		}
	}
	return nil
}
// #endregion train
