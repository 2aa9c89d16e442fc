package nn

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Mutation thresholds, in percent of a [0, 100) roll, before scaling by the
// chance multiplier.
const (
	mutateChance     = 8.0 // any mutation at all
	flipChance       = 1.0 // negate the weight
	resetChance      = 2.0 // redraw from [-0.5, 0.5)
	amplifyChance    = 5.0 // scale by [1, 2); anything above scales by [0.1, 1)
	controlledChance = 4.0
)

// percentRoll draws the [0, 100) roll that selects a weight's mutation.
var percentRoll = func() float64 { return rand.Float64() * 100 }

// Crossover builds a child with the same layer sizes. Every weight and bias is
// taken from other with probability otherSuperiority and from n otherwise.
// The child's fitness is zero.
//
// Crossover panics if the two networks have different architectures.
func (n *Network) Crossover(other *Network, otherSuperiority float64) *Network {
	if !n.SameArchitecture(other) {
		panic(fmt.Sprintf("nn.Crossover: incompatible architectures %v and %v", n.layers, other.Layers()))
	}

	child := n.Copy()
	child.fitness = 0
	for i := range child.weights {
		for j := range child.weights[i] {
			for k := range child.weights[i][j] {
				if rand.Float64() < otherSuperiority {
					child.weights[i][j][k] = other.weights[i][j][k]
				}
			}
		}
	}
	for i := range child.biases {
		for j := range child.biases[i] {
			if rand.Float64() < otherSuperiority {
				child.biases[i][j] = other.biases[i][j]
			}
		}
	}
	return child
}

// Mutate perturbs weights in place. For every weight a roll in [0, 100) is
// drawn; at or below 8*c the weight mutates, where c is chanceMultiplier:
//
//	roll <= 1*c  flip the sign
//	roll <= 2*c  reset to a value in [-0.5, 0.5)
//	roll <= 5*c  scale by [1, 2)
//	otherwise    scale by [0.1, 1)
//
// Each mutation is recorded in the weight's history at time at. The number of
// mutated weights is returned.
func (n *Network) Mutate(at, chanceMultiplier float64) int {
	mutated := 0
	n.eachWeight(func(i, j, k int) {
		roll := percentRoll()
		if roll > mutateChance*chanceMultiplier {
			return
		}
		old := n.weights[i][j][k]
		w := old
		switch {
		case roll <= flipChance*chanceMultiplier:
			w = -w
		case roll <= resetChance*chanceMultiplier:
			w = uniform(-0.5, 0.5)
		case roll <= amplifyChance*chanceMultiplier:
			w *= uniform(1, 2)
		default:
			w *= uniform(0.1, 1)
		}
		n.weights[i][j][k] = w
		n.history[i][j][k].push(MutationEvent{At: at, Magnitude: w - old})
		mutated++
	})
	return mutated
}

// ControlledMutate nudges weights in place: with a 4*chanceMultiplier percent
// chance a weight receives an additive offset from [-strength, strength).
// Mutations are recorded like Mutate's and the count is returned.
func (n *Network) ControlledMutate(at, chanceMultiplier, strength float64) int {
	mutated := 0
	n.eachWeight(func(i, j, k int) {
		roll := percentRoll()
		if roll > controlledChance*chanceMultiplier {
			return
		}
		old := n.weights[i][j][k]
		w := old + uniform(-strength, strength)
		n.weights[i][j][k] = w
		n.history[i][j][k].push(MutationEvent{At: at, Magnitude: w - old})
		mutated++
	})
	return mutated
}

// Reward reinforces (rewardMultiplier > 0) or punishes (rewardMultiplier <= 0)
// recent mutations. For every weight the remembered mutation magnitudes are
// summed with an exponential time kernel exp(-(at - t) / window), giving s,
// and the weight is scaled by 1 + m*s*lr or 1 - |m|*s*lr respectively.
func (n *Network) Reward(at, rewardMultiplier, window, learningRate float64) {
	n.eachWeight(func(i, j, k int) {
		h := &n.history[i][j][k]
		if h.len() == 0 {
			return
		}
		sum := 0.0
		h.each(func(ev MutationEvent) {
			sum += ev.Magnitude * math.Exp(-(at-ev.At)/window)
		})
		if rewardMultiplier > 0 {
			n.weights[i][j][k] *= 1 + rewardMultiplier*sum*learningRate
		} else {
			n.weights[i][j][k] *= 1 - math.Abs(rewardMultiplier)*sum*learningRate
		}
	})
}

func (n *Network) eachWeight(fn func(i, j, k int)) {
	for i := range n.weights {
		for j := range n.weights[i] {
			for k := range n.weights[i][j] {
				fn(i, j, k)
			}
		}
	}
}

// SortByFitness sorts networks fittest first. The sort is stable so ties
// keep their relative order.
func SortByFitness(nets []*Network) {
	sort.SliceStable(nets, func(a, b int) bool {
		return nets[a].CompareTo(nets[b]) < 0
	})
}
