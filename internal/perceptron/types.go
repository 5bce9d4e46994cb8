package perceptron

import "errors"

// #region errors
// ErrInvalidArgument is returned when an input does not match the model shape
// or a constructor/training argument is out of range.
var ErrInvalidArgument = errors.New("perceptron: invalid argument")
// #endregion errors

// #region constants
const (
	DefaultLearningRate = 0.01
	InitialWeight       = 1.0
	InitialBias         = -1.0
)
// #endregion constants

// #region label
// Label is a binary class, either Negative or Positive.
type Label int

const (
	Negative Label = -1
	Positive Label = 1
)

// Valid reports whether l is one of the two classes.
func (l Label) Valid() bool {
	return l == Negative || l == Positive
}
// #endregion label

// #region example
// Example is one labeled feature vector.
type Example struct {
	Inputs   []float64
	Expected Label
}
// #endregion example

// #region log-entry
// LogEntry records the outcome of one example at one generation.
// Weights and Bias are the values after the update was applied.
type LogEntry struct {
	Generation int
	Inputs     []float64
	Expected   Label
	Predicted  Label
	Weights    []float64
	Bias       float64
}

func (e LogEntry) clone() LogEntry {
	e.Inputs = append([]float64(nil), e.Inputs...)
	e.Weights = append([]float64(nil), e.Weights...)
	return e
}
// #endregion log-entry
