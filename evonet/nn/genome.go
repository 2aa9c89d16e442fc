package nn

import (
	"encoding/json"
	"fmt"
	"math"
)

// Genome is the persisted form of a Network: layer sizes, all biases, all
// weights and the last fitness. Scratch buffers and mutation histories are
// never persisted.
type Genome struct {
	Layers  []int         `json:"layers"`
	Biases  [][]float64   `json:"biases"`
	Weights [][][]float64 `json:"weights"`
	Fitness float64       `json:"fitness"`
}

// ToGenome snapshots the network. A NaN or infinite fitness is stored as 0.
func (n *Network) ToGenome() Genome {
	return Genome{
		Layers:  n.Layers(),
		Biases:  copyMatrix(n.biases),
		Weights: copyTensor(n.weights),
		Fitness: finiteOrZero(n.fitness),
	}
}

// FromGenome rebuilds a network from its persisted form. It returns
// ErrEmptyLayers when the layer list is unusable and ErrStructure when the
// biases or weights do not match the layer sizes. A NaN or infinite fitness
// is coerced to 0.
func FromGenome(g Genome) (*Network, error) {
	if err := validateShape(g.Layers, g.Biases, g.Weights); err != nil {
		return nil, err
	}
	n := &Network{
		layers:  append([]int(nil), g.Layers...),
		biases:  copyMatrix(g.Biases),
		weights: copyTensor(g.Weights),
		fitness: finiteOrZero(g.Fitness),
	}
	n.allocateScratch()
	return n, nil
}

// EncodeGenome serializes a genome as JSON.
func EncodeGenome(g Genome) ([]byte, error) {
	g.Fitness = finiteOrZero(g.Fitness)
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode genome: %w", err)
	}
	return data, nil
}

// DecodeGenome parses a JSON genome. The shape is not validated here; use
// FromGenome for that.
func DecodeGenome(data []byte) (Genome, error) {
	var g Genome
	if err := json.Unmarshal(data, &g); err != nil {
		return Genome{}, fmt.Errorf("decode genome: %w", err)
	}
	return g, nil
}

// MarshalJSON encodes the network in its Genome form.
func (n *Network) MarshalJSON() ([]byte, error) {
	return EncodeGenome(n.ToGenome())
}

// UnmarshalJSON decodes and validates a Genome into n.
func (n *Network) UnmarshalJSON(data []byte) error {
	g, err := DecodeGenome(data)
	if err != nil {
		return err
	}
	loaded, err := FromGenome(g)
	if err != nil {
		return err
	}
	*n = *loaded
	return nil
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
