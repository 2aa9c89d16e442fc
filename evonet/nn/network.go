package nn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrInputShapeMismatch is returned when an input (or target) vector does
	// not match the width of the corresponding layer.
	ErrInputShapeMismatch = errors.New("input shape mismatch")
	// ErrStructure is returned when persisted biases or weights do not match
	// the declared layer sizes.
	ErrStructure = errors.New("network structure mismatch")
	// ErrEmptyLayers is returned when a genome carries no usable layer sizes.
	ErrEmptyLayers = errors.New("network needs at least two non-empty layers")
)

// Network is a fixed-topology, fully-connected feed-forward network.
//
// weights[i] connects layer i to layer i+1 and is indexed
// [neuron in layer i+1][neuron in layer i]. biases carries one slice per
// layer including the input layer; the input-layer biases are persisted but
// never used.
//
// A Network is not safe for concurrent use. Each agent owns its network
// exclusively.
type Network struct {
	layers  []int
	neurons [][]float64
	biases  [][]float64
	weights [][][]float64
	fitness float64

	// Backpropagation scratch, never persisted or copied.
	desired      [][]float64
	biasSmudge   [][]float64
	weightSmudge [][][]float64

	history [][][]mutationHistory
}

// New creates a network with the given layer sizes. Weights are drawn
// uniformly from [-x, x) with x = sqrt(6 / (layers[0] + layers[last])).
// Biases are zero unless randomizeBiases is set, in which case they are drawn
// from [-0.5, 0.5).
//
// New panics if fewer than two layers are given or any layer is empty.
func New(layers []int, randomizeBiases bool) *Network {
	if err := validateLayers(layers); err != nil {
		panic(fmt.Sprintf("nn.New: %v", err))
	}

	n := &Network{layers: append([]int(nil), layers...)}
	limit := xavierLimit(n.layers)

	n.biases = make([][]float64, len(n.layers))
	for i, size := range n.layers {
		n.biases[i] = make([]float64, size)
		if randomizeBiases {
			for j := range n.biases[i] {
				n.biases[i][j] = uniform(-0.5, 0.5)
			}
		}
	}

	n.weights = make([][][]float64, len(n.layers)-1)
	for i := 0; i < len(n.layers)-1; i++ {
		n.weights[i] = make([][]float64, n.layers[i+1])
		for j := range n.weights[i] {
			row := make([]float64, n.layers[i])
			for k := range row {
				row[k] = uniform(-limit, limit)
			}
			n.weights[i][j] = row
		}
	}

	n.allocateScratch()
	return n
}

// Copy returns a deep copy of the network's layers, weights, biases and
// fitness. Scratch buffers and mutation histories start fresh.
func (n *Network) Copy() *Network {
	c := &Network{
		layers:  append([]int(nil), n.layers...),
		biases:  copyMatrix(n.biases),
		weights: copyTensor(n.weights),
		fitness: n.fitness,
	}
	c.allocateScratch()
	return c
}

// allocateScratch sizes neurons, backprop buffers and mutation histories
// from n.layers. It is called on every construction path.
func (n *Network) allocateScratch() {
	n.neurons = zeroMatrix(n.layers)
	n.desired = zeroMatrix(n.layers)
	n.biasSmudge = zeroMatrix(n.layers)

	n.weightSmudge = make([][][]float64, len(n.layers)-1)
	n.history = make([][][]mutationHistory, len(n.layers)-1)
	for i := 0; i < len(n.layers)-1; i++ {
		n.weightSmudge[i] = make([][]float64, n.layers[i+1])
		n.history[i] = make([][]mutationHistory, n.layers[i+1])
		for j := 0; j < n.layers[i+1]; j++ {
			n.weightSmudge[i][j] = make([]float64, n.layers[i])
			n.history[i][j] = make([]mutationHistory, n.layers[i])
		}
	}
}

// FeedForward propagates inputs through the network and returns a copy of the
// output layer. Hidden layers use LeakyReLU, the output layer uses Sigmoid.
// An input of the wrong width returns ErrInputShapeMismatch and leaves the
// network untouched.
func (n *Network) FeedForward(inputs []float64) ([]float64, error) {
	if len(inputs) != n.layers[0] {
		return nil, fmt.Errorf("%w: got %d inputs, network expects %d", ErrInputShapeMismatch, len(inputs), n.layers[0])
	}

	copy(n.neurons[0], inputs)
	last := len(n.layers) - 1
	for i := 1; i <= last; i++ {
		activate := layerActivation(i, len(n.layers))
		for j := range n.neurons[i] {
			sum := floats.Dot(n.neurons[i-1], n.weights[i-1][j]) + n.biases[i][j]
			n.neurons[i][j] = activate(sum)
			n.desired[i][j] = n.neurons[i][j]
		}
	}

	return append([]float64(nil), n.neurons[last]...), nil
}

// Layers returns a copy of the layer sizes.
func (n *Network) Layers() []int { return append([]int(nil), n.layers...) }

// InputSize is the width of the input layer.
func (n *Network) InputSize() int { return n.layers[0] }

// OutputSize is the width of the output layer.
func (n *Network) OutputSize() int { return n.layers[len(n.layers)-1] }

// Weights returns a deep copy of the weight tensor.
func (n *Network) Weights() [][][]float64 { return copyTensor(n.weights) }

// Biases returns a deep copy of the biases, one slice per layer.
func (n *Network) Biases() [][]float64 { return copyMatrix(n.biases) }

// Weight returns the weight from neuron k of layer i to neuron j of layer i+1.
func (n *Network) Weight(i, j, k int) float64 { return n.weights[i][j][k] }

// SetWeight overwrites a single weight.
func (n *Network) SetWeight(i, j, k int, v float64) { n.weights[i][j][k] = v }

// Bias returns the bias of neuron j in layer i.
func (n *Network) Bias(i, j int) float64 { return n.biases[i][j] }

// SetBias overwrites a single bias.
func (n *Network) SetBias(i, j int, v float64) { n.biases[i][j] = v }

// MutationHistory returns the remembered mutations of one weight, oldest first.
func (n *Network) MutationHistory(i, j, k int) []MutationEvent {
	return n.history[i][j][k].snapshot()
}

// Fitness returns the last assigned fitness.
func (n *Network) Fitness() float64 { return n.fitness }

// SetFitness assigns the fitness score.
func (n *Network) SetFitness(f float64) { n.fitness = f }

// AddFitness adds delta to the fitness score.
func (n *Network) AddFitness(delta float64) { n.fitness += delta }

// CompareTo orders networks by descending fitness: it returns -1 when n is
// fitter than other, 1 when it is less fit and 0 on a tie.
func (n *Network) CompareTo(other *Network) int {
	switch {
	case other == nil:
		return -1
	case n.fitness > other.fitness:
		return -1
	case n.fitness < other.fitness:
		return 1
	default:
		return 0
	}
}

// SameArchitecture reports whether both networks have identical layer sizes.
func (n *Network) SameArchitecture(other *Network) bool {
	if other == nil || len(n.layers) != len(other.layers) {
		return false
	}
	for i := range n.layers {
		if n.layers[i] != other.layers[i] {
			return false
		}
	}
	return true
}

// xavierLimit uses only the outermost layer sizes, not per-transition fan-in
// and fan-out. Persisted models depend on this range.
func xavierLimit(layers []int) float64 {
	return math.Sqrt(6.0 / float64(layers[0]+layers[len(layers)-1]))
}

func validateLayers(layers []int) error {
	if len(layers) < 2 {
		return fmt.Errorf("%w: got %d layers", ErrEmptyLayers, len(layers))
	}
	for i, size := range layers {
		if size <= 0 {
			return fmt.Errorf("%w: layer %d has size %d", ErrEmptyLayers, i, size)
		}
	}
	return nil
}

// validateShape checks biases and weights against the layer sizes.
func validateShape(layers []int, biases [][]float64, weights [][][]float64) error {
	if err := validateLayers(layers); err != nil {
		return err
	}
	if len(biases) != len(layers) {
		return fmt.Errorf("%w: %d bias layers for %d layers", ErrStructure, len(biases), len(layers))
	}
	for i, b := range biases {
		if len(b) != layers[i] {
			return fmt.Errorf("%w: bias layer %d has %d entries, want %d", ErrStructure, i, len(b), layers[i])
		}
	}
	if len(weights) != len(layers)-1 {
		return fmt.Errorf("%w: %d weight layers for %d layers", ErrStructure, len(weights), len(layers))
	}
	for i, w := range weights {
		if len(w) != layers[i+1] {
			return fmt.Errorf("%w: weight layer %d has %d rows, want %d", ErrStructure, i, len(w), layers[i+1])
		}
		for j, row := range w {
			if len(row) != layers[i] {
				return fmt.Errorf("%w: weight row [%d][%d] has %d columns, want %d", ErrStructure, i, j, len(row), layers[i])
			}
		}
	}
	return nil
}

func uniform(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

func zeroMatrix(layers []int) [][]float64 {
	m := make([][]float64, len(layers))
	for i, size := range layers {
		m[i] = make([]float64, size)
	}
	return m
}

func copyMatrix(src [][]float64) [][]float64 {
	dst := make([][]float64, len(src))
	for i := range src {
		dst[i] = append([]float64(nil), src[i]...)
	}
	return dst
}

func copyTensor(src [][][]float64) [][][]float64 {
	dst := make([][][]float64, len(src))
	for i := range src {
		dst[i] = copyMatrix(src[i])
	}
	return dst
}
