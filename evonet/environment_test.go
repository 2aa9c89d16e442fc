package evonet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/evonet-go/evonet/nn"
)

func TestWaitForAgentsPolling(t *testing.T) {
	gated := newGatedAgent()
	agents := []Agent{&fixedAgent{}, gated}

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(gated.release)
	}()

	start := time.Now()
	require.NoError(t, WaitForAgents(context.Background(), agents, time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWaitForAgentsAlreadyDone(t *testing.T) {
	agents := []Agent{&fixedAgent{}, &fixedAgent{}}
	// A long interval would stall the test if the first check were skipped.
	require.NoError(t, WaitForAgents(context.Background(), agents, time.Hour))
}

func TestWaitForAgentsNotifier(t *testing.T) {
	a, b := &notifyingAgent{}, &notifyingAgent{}
	net := nn.New([]int{5, 3}, false)
	require.NoError(t, a.Begin(context.Background(), net))
	require.NoError(t, b.Begin(context.Background(), net))

	require.NoError(t, WaitForAgents(context.Background(), []Agent{a, b}, time.Hour))
}

func TestWaitForAgentsCancel(t *testing.T) {
	gated := newGatedAgent()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := WaitForAgents(ctx, []Agent{gated}, time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTrainingBuffer(t *testing.T) {
	var b TrainingBuffer
	in := []float64{1, 2, 3, 4, 5}
	b.Add(in, []float64{1, 0, 0})
	in[0] = 99
	b.Add([]float64{0, 0, 0, 0, 0}, []float64{0, 1, 0})

	require.Equal(t, 2, b.Len())
	assert.Equal(t, 1.0, b.Samples()[0].Inputs[0])

	ctx := context.Background()
	s := newMemorySink(t)
	require.NoError(t, b.SaveTo(ctx, s, "demo"))

	b.Reset()
	assert.Equal(t, 0, b.Len())

	ok, err := b.LoadFrom(ctx, s, "demo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, b.Len())

	ok, err = b.LoadFrom(ctx, s, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, b.Len())
}

func TestLearningRates(t *testing.T) {
	assert.Equal(t, []float64{0.01, 0.01, 0.01}, LearningRates(0.01, 0.05, 3))

	rates := LearningRates(0.1, 0.5, 4)
	require.Len(t, rates, 4)
	for i, want := range []float64{0.2, 0.3, 0.4, 0.5} {
		assert.InDelta(t, want, rates[i], 1e-12)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "genetic engineering", StateGeneticEngineering.String())
	assert.Equal(t, "unknown", State(99).String())
}
