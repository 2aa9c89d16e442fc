package nn

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantNetwork(layers []int, w, b float64) *Network {
	n := New(layers, false)
	n.eachWeight(func(i, j, k int) { n.weights[i][j][k] = w })
	for i := range n.biases {
		for j := range n.biases[i] {
			n.biases[i][j] = b
		}
	}
	return n
}

func TestCrossoverTakesGenesFromParents(t *testing.T) {
	a := constantNetwork([]int{3, 5, 2}, 1, 0.1)
	b := constantNetwork([]int{3, 5, 2}, -1, -0.1)
	a.SetFitness(10)

	for _, superiority := range []float64{0, 0.1, 0.5, 1} {
		child := a.Crossover(b, superiority)
		assertShape(t, child)
		assert.Zero(t, child.Fitness())
		child.eachWeight(func(i, j, k int) {
			w := child.Weight(i, j, k)
			assert.True(t, w == 1 || w == -1, "weight %v from neither parent", w)
		})
		for _, layer := range child.Biases() {
			for _, v := range layer {
				assert.True(t, v == 0.1 || v == -0.1, "bias %v from neither parent", v)
			}
		}
	}

	// Parents are left alone.
	for _, layer := range a.Biases() {
		for _, v := range layer {
			assert.Equal(t, 0.1, v)
		}
	}

	allOther := a.Crossover(b, 1)
	assert.Equal(t, b.Weights(), allOther.Weights())
	allThis := a.Crossover(b, 0)
	assert.Equal(t, a.Weights(), allThis.Weights())
}

func TestCrossoverPanicsOnDifferentArchitectures(t *testing.T) {
	a := New([]int{2, 3, 1}, false)
	b := New([]int{2, 4, 1}, false)
	assert.Panics(t, func() { a.Crossover(b, 0.5) })
}

func TestMutateKeepsShapeAndFinite(t *testing.T) {
	n := New([]int{4, 6, 3}, true)
	for round := 0; round < 50; round++ {
		n.Mutate(float64(round), 3)
		n.ControlledMutate(float64(round), 3, 0.2)
	}
	assertShape(t, n)
	n.eachWeight(func(i, j, k int) {
		w := n.Weight(i, j, k)
		assert.False(t, math.IsNaN(w) || math.IsInf(w, 0))
	})
	out, err := n.FeedForward([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	for _, v := range out {
		assert.False(t, math.IsNaN(v))
	}
}

func TestMutateZeroChanceIsNoop(t *testing.T) {
	n := New([]int{3, 3}, true)
	before := n.Weights()
	assert.Zero(t, n.Mutate(0, 0)+n.ControlledMutate(0, 0, 1))
	// A roll of exactly 0 is possible but vanishingly unlikely.
	assert.Equal(t, before, n.Weights())
}

func TestMutateCertainRecordsHistory(t *testing.T) {
	n := New([]int{2, 2}, false)
	// 8 * 13 > 100, so every weight mutates.
	count := n.Mutate(2.5, 13)
	assert.Equal(t, 4, count)

	ev := n.MutationHistory(0, 0, 0)
	require.Len(t, ev, 1)
	assert.Equal(t, 2.5, ev[0].At)
}

func fixRoll(t *testing.T, roll float64) {
	t.Helper()
	orig := percentRoll
	percentRoll = func() float64 { return roll }
	t.Cleanup(func() { percentRoll = orig })
}

func TestMutateOutcomes(t *testing.T) {
	const old = 0.8
	tests := []struct {
		name  string
		roll  float64
		check func(t *testing.T, w float64)
	}{
		{"flip", 0.5, func(t *testing.T, w float64) {
			assert.Equal(t, -old, w)
		}},
		{"reset", 1.5, func(t *testing.T, w float64) {
			assert.GreaterOrEqual(t, w, -0.5)
			assert.Less(t, w, 0.5)
		}},
		{"amplify", 3, func(t *testing.T, w float64) {
			assert.GreaterOrEqual(t, w/old, 1.0)
			assert.Less(t, w/old, 2.0)
		}},
		{"shrink", 7, func(t *testing.T, w float64) {
			assert.GreaterOrEqual(t, w/old, 0.1)
			assert.Less(t, w/old, 1.0)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixRoll(t, tt.roll)
			n := constantNetwork([]int{3, 4}, old, 0)
			require.Equal(t, 12, n.Mutate(1.5, 1))
			n.eachWeight(func(i, j, k int) {
				w := n.Weight(i, j, k)
				tt.check(t, w)
				ev := n.MutationHistory(i, j, k)
				require.Len(t, ev, 1)
				assert.Equal(t, 1.5, ev[0].At)
				assert.InDelta(t, w-old, ev[0].Magnitude, 1e-12)
			})
		})
	}

	t.Run("above threshold", func(t *testing.T) {
		fixRoll(t, 9)
		n := constantNetwork([]int{3, 4}, old, 0)
		assert.Equal(t, 0, n.Mutate(1.5, 1))
		n.eachWeight(func(i, j, k int) {
			assert.Equal(t, old, n.Weight(i, j, k))
			assert.Empty(t, n.MutationHistory(i, j, k))
		})
	})
}

func TestMutateFullChanceFlipsEveryWeight(t *testing.T) {
	// Every roll in [0, 100) is at or below 1*100.
	n := constantNetwork([]int{4, 6, 2}, 0.3, 0)
	assert.Equal(t, 36, n.Mutate(0, 100))
	n.eachWeight(func(i, j, k int) {
		assert.Equal(t, -0.3, n.Weight(i, j, k))
		ev := n.MutationHistory(i, j, k)
		require.Len(t, ev, 1)
		assert.InDelta(t, -0.6, ev[0].Magnitude, 1e-12)
	})
}

func TestHistoryIsCapped(t *testing.T) {
	n := New([]int{1, 1}, false)
	for i := 0; i < 20; i++ {
		n.ControlledMutate(float64(i), 100, 0.1)
	}
	ev := n.MutationHistory(0, 0, 0)
	require.Len(t, ev, HistoryCapacity)
	assert.Equal(t, 12.0, ev[0].At)
	assert.Equal(t, 19.0, ev[len(ev)-1].At)
}

func TestControlledMutateBounded(t *testing.T) {
	n := constantNetwork([]int{5, 5}, 0.3, 0)
	n.ControlledMutate(0, 100, 0.05)
	n.eachWeight(func(i, j, k int) {
		assert.InDelta(t, 0.3, n.Weight(i, j, k), 0.05)
	})
}

func TestReward(t *testing.T) {
	n := constantNetwork([]int{1, 1}, 1, 0)
	n.history[0][0][0].push(MutationEvent{At: 0, Magnitude: 0.5})

	reward := n.Copy()
	reward.history[0][0][0].push(MutationEvent{At: 0, Magnitude: 0.5})
	reward.Reward(0, 2, 1, 0.1)
	assert.InDelta(t, 1+2*0.5*0.1, reward.Weight(0, 0, 0), 1e-12)

	n.Reward(1, -2, 1, 0.1)
	assert.InDelta(t, 1-2*0.5*math.Exp(-1)*0.1, n.Weight(0, 0, 0), 1e-12)

	untouched := constantNetwork([]int{1, 1}, 1, 0)
	untouched.Reward(5, 3, 1, 1)
	assert.Equal(t, 1.0, untouched.Weight(0, 0, 0))
}

func TestGenomeRoundTrip(t *testing.T) {
	n := New([]int{3, 4, 2}, true)
	n.SetFitness(12.25)

	data, err := json.Marshal(n)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.ElementsMatch(t, []string{"layers", "biases", "weights", "fitness"}, keys(raw))

	loaded := &Network{}
	require.NoError(t, json.Unmarshal(data, loaded))
	assert.Equal(t, n.Layers(), loaded.Layers())
	assert.Equal(t, n.Weights(), loaded.Weights())
	assert.Equal(t, n.Biases(), loaded.Biases())
	assert.Equal(t, 12.25, loaded.Fitness())

	in := []float64{0.1, 0.2, 0.3}
	want, err := n.FeedForward(in)
	require.NoError(t, err)
	got, err := loaded.FeedForward(in)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFromGenomeRejectsBadStructure(t *testing.T) {
	good := New([]int{2, 3, 1}, false).ToGenome()

	badBias := good
	badBias.Biases = [][]float64{{0, 0}, {0, 0}, {0}}

	badWeights := good
	badWeights.Weights = [][][]float64{good.Weights[0]}

	badRow := New([]int{2, 3, 1}, false).ToGenome()
	badRow.Weights[0][1] = []float64{1}

	for name, g := range map[string]Genome{"bias": badBias, "weights": badWeights, "row": badRow} {
		_, err := FromGenome(g)
		assert.True(t, errors.Is(err, ErrStructure), name)
	}

	_, err := FromGenome(Genome{})
	assert.True(t, errors.Is(err, ErrEmptyLayers))
	_, err = FromGenome(Genome{Layers: []int{2, 0}})
	assert.True(t, errors.Is(err, ErrEmptyLayers))
}

func TestGenomeCoercesNonFiniteFitness(t *testing.T) {
	n := New([]int{1, 1}, false)
	n.SetFitness(math.NaN())
	assert.Zero(t, n.ToGenome().Fitness)

	g := n.ToGenome()
	g.Fitness = math.Inf(1)
	loaded, err := FromGenome(g)
	require.NoError(t, err)
	assert.Zero(t, loaded.Fitness())

	data, err := EncodeGenome(g)
	require.NoError(t, err)
	decoded, err := DecodeGenome(data)
	require.NoError(t, err)
	assert.Zero(t, decoded.Fitness)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
