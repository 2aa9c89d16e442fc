package nn

import (
	"context"
	"fmt"
	"runtime"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultLearningRate is the step size used when callers have no preference.
	DefaultLearningRate = 0.01
	// DefaultWeightDecay is the per-pass multiplicative weight shrink.
	DefaultWeightDecay = 0.001
)

// Dataset is one supervised sample: an input vector and the desired output.
type Dataset struct {
	Inputs  []float64 `json:"inputs"`
	Outputs []float64 `json:"outputs"`
}

// Train runs one backpropagation pass over data. Gradients ("smudges") are
// accumulated over the whole batch and applied once at the end:
//
//	w += smudge * learningRate; w *= 1 - weightDecay
//	b += smudge * learningRate
//
// The per-neuron error term is activation * (target - activation). The output
// layer scales it with the sigmoid derivative form, hidden layers with the
// leaky ReLU derivative.
//
// If any sample does not match the network shape the pass is abandoned, the
// weights are left untouched and an error wrapping ErrInputShapeMismatch is
// returned. Cancelling ctx abandons the pass the same way. The goroutine
// yields once the pass is complete so long batches do not starve the
// simulation driving the agents.
func (n *Network) Train(ctx context.Context, data []Dataset, learningRate, weightDecay float64) error {
	last := len(n.layers) - 1

	for s, sample := range data {
		if err := ctx.Err(); err != nil {
			n.resetGradients()
			return err
		}
		if len(sample.Outputs) != n.layers[last] {
			n.resetGradients()
			return fmt.Errorf("%w: sample %d has %d targets, network has %d outputs", ErrInputShapeMismatch, s, len(sample.Outputs), n.layers[last])
		}
		if _, err := n.FeedForward(sample.Inputs); err != nil {
			n.resetGradients()
			return fmt.Errorf("sample %d: %w", s, err)
		}

		copy(n.desired[last], sample.Outputs)
		n.backpropagate()
	}

	n.applyGradients(learningRate, weightDecay)
	runtime.Gosched()
	return nil
}

// backpropagate accumulates smudges for the sample currently loaded into
// neurons and desired.
func (n *Network) backpropagate() {
	count := len(n.layers)
	for j := count - 1; j >= 1; j-- {
		for k := range n.neurons[j] {
			a := n.neurons[j][k]
			delta := layerDelta(j, count, a*(n.desired[j][k]-a))
			n.biasSmudge[j][k] += delta

			floats.AddScaled(n.weightSmudge[j-1][k], delta, n.neurons[j-1])
			floats.AddScaled(n.desired[j-1], delta, n.weights[j-1][k])
		}
	}
}

func (n *Network) applyGradients(learningRate, weightDecay float64) {
	for i := len(n.layers) - 1; i >= 1; i-- {
		floats.AddScaled(n.biases[i], learningRate, n.biasSmudge[i])
		for j := range n.weights[i-1] {
			floats.AddScaled(n.weights[i-1][j], learningRate, n.weightSmudge[i-1][j])
			floats.Scale(1-weightDecay, n.weights[i-1][j])
		}
	}
	n.resetGradients()
}

func (n *Network) resetGradients() {
	for i := range n.layers {
		zero(n.biasSmudge[i])
		zero(n.desired[i])
	}
	for i := range n.weightSmudge {
		for j := range n.weightSmudge[i] {
			zero(n.weightSmudge[i][j])
		}
	}
}

// ApplyWeightDecay shrinks every weight by the factor (1 - weightDecay)
// without training.
func (n *Network) ApplyWeightDecay(weightDecay float64) {
	for i := range n.weights {
		for j := range n.weights[i] {
			floats.Scale(1-weightDecay, n.weights[i][j])
		}
	}
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}
