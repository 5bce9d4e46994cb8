package dataset

import "github.com/danielpatrickdp/perceptron/internal/perceptron"

// #region reference
// ReferenceProbe is the input the reference run checks after every batch.
var ReferenceProbe = []float64{4, 1, 4, 4, 0, 6, 6}

// Reference returns the seven-feature scenario: each block of ten varies one
// feature of the probe around its value and labels the variants.
func Reference() *Fixture {
	return &Fixture{
		Description:      "seven-feature threshold scenario",
		InputSize:        7,
		LearningRate:     0.01,
		BatchGenerations: 30,
		Probe:            append([]float64(nil), ReferenceProbe...),
		Target:           perceptron.Positive,
		Samples:          referenceExamples(),
	}
}

func referenceExamples() []Sample {
	return []Sample{
		{Inputs: []float64{4, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 0, 6, 5}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 4, 0, 6, 4}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 4, 0, 6, 3}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 4, 0, 6, 2}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 4, 0, 6, 1}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 4, 0, 6, 0}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 4, 0, 6, 9}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 0, 6, 8}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 0, 6, 7}, Expected: perceptron.Positive},

		{Inputs: []float64{4, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 0, 5, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 4, 0, 4, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 4, 0, 3, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 4, 0, 2, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 4, 0, 1, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 4, 0, 0, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 4, 0, 9, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 0, 8, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 0, 7, 6}, Expected: perceptron.Positive},

		{Inputs: []float64{4, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 1, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 2, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 3, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 4, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 5, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 6, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 7, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 8, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 4, 9, 6, 6}, Expected: perceptron.Positive},

		{Inputs: []float64{4, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 5, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 6, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 7, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 8, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 9, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 4, 0, 0, 6, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 1, 0, 6, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 2, 0, 6, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 4, 3, 0, 6, 6}, Expected: perceptron.Negative},

		{Inputs: []float64{4, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 5, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 6, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 7, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 8, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 9, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 1, 0, 4, 0, 6, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 1, 4, 0, 6, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 2, 4, 0, 6, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{4, 1, 3, 4, 0, 6, 6}, Expected: perceptron.Negative},

		{Inputs: []float64{4, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 2, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 3, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 4, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 5, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 6, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 7, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 8, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 9, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{4, 0, 4, 4, 0, 6, 6}, Expected: perceptron.Negative},

		{Inputs: []float64{4, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{5, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{6, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{7, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{8, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{9, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Positive},
		{Inputs: []float64{0, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{1, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{2, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Negative},
		{Inputs: []float64{3, 1, 4, 4, 0, 6, 6}, Expected: perceptron.Negative},
	}
}
// #endregion reference
