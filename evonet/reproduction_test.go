package evonet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/evonet-go/evonet/nn"
)

func fittestBuffer(k int) []*nn.Network {
	out := make([]*nn.Network, k)
	for i := range out {
		out[i] = nn.New([]int{5, 4, 3}, true)
		out[i].SetFitness(float64(k - i))
	}
	return out
}

func TestRegimeFor(t *testing.T) {
	assert.Equal(t, RegimeStagnating, RegimeFor(-0.1, 5))
	assert.Equal(t, RegimeMinor, RegimeFor(0, 5))
	assert.Equal(t, RegimeMinor, RegimeFor(4.9, 5))
	assert.Equal(t, RegimeMajor, RegimeFor(5, 5))
	assert.Equal(t, "minor", RegimeMinor.String())
}

func TestBreedRoleCounts(t *testing.T) {
	cfg := DefaultConfig().Mutation
	cfg.Controlled = true
	r := NewReproduction(&cfg)
	fittest := fittestBuffer(3)

	tests := []struct {
		regime Regime
		want   map[Role]int
	}{
		{RegimeStagnating, map[Role]int{RoleElite: 3, RoleMutation: 4, RoleControlled: 14}},
		{RegimeMinor, map[Role]int{RoleElite: 3, RoleCrossover: 4, RoleMutation: 14}},
		{RegimeMajor, map[Role]int{RoleDiversity: 3, RoleMutation: 4, RoleElite: 14}},
	}
	for _, tt := range tests {
		t.Run(tt.regime.String(), func(t *testing.T) {
			offspring := r.Breed(fittest, 21, tt.regime, 1, 2, 0.5)
			require.Len(t, offspring, 21)
			assert.Equal(t, tt.want, CountRoles(offspring))
		})
	}
}

func TestBreedElitesAreCopies(t *testing.T) {
	cfg := DefaultConfig().Mutation
	r := NewReproduction(&cfg)
	fittest := fittestBuffer(2)
	before := fittest[0].Weights()

	offspring := r.Breed(fittest, 14, RegimeMajor, 1, 1, 0)
	for _, o := range offspring {
		assert.NotSame(t, fittest[0], o.Net)
		assert.Equal(t, fittest[0].Layers(), o.Net.Layers())
		if o.Role == RoleElite {
			assert.Equal(t, before, o.Net.Weights())
		}
	}
	// Breeding never mutates the buffer itself.
	assert.Equal(t, before, fittest[0].Weights())
}

func TestBreedSmallPopulation(t *testing.T) {
	cfg := DefaultConfig().Mutation
	r := NewReproduction(&cfg)
	offspring := r.Breed(fittestBuffer(1), 2, RegimeStagnating, 1, 1, 0)
	// With n < 7 every bucket but the last is empty.
	assert.Equal(t, map[Role]int{RoleMutation: 2}, CountRoles(offspring))
}

func TestBreedStagnatingWithoutControlledMutation(t *testing.T) {
	cfg := DefaultConfig().Mutation
	cfg.Controlled = false
	r := NewReproduction(&cfg)
	offspring := r.Breed(fittestBuffer(3), 21, RegimeStagnating, 1, 2, 0)
	assert.Equal(t, map[Role]int{RoleElite: 3, RoleMutation: 18}, CountRoles(offspring))
}

func TestBreedEmptyBufferPanics(t *testing.T) {
	cfg := DefaultConfig().Mutation
	r := NewReproduction(&cfg)
	assert.Panics(t, func() { r.Breed(nil, 5, RegimeMinor, 1, 1, 0) })
}
