package evonet

import (
	"context"
	"sync"

	"github.com/baldhumanity/evonet-go/evonet/nn"
)

// TrainingBuffer collects demonstration samples recorded while a human
// drives. It is safe for concurrent use.
type TrainingBuffer struct {
	mu      sync.Mutex
	samples []nn.Dataset
}

// Add appends a copy of one sample.
func (b *TrainingBuffer) Add(inputs, outputs []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(b.samples, nn.Dataset{
		Inputs:  append([]float64(nil), inputs...),
		Outputs: append([]float64(nil), outputs...),
	})
}

// Len returns the number of samples collected.
func (b *TrainingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// Samples returns a snapshot of the collected samples.
func (b *TrainingBuffer) Samples() []nn.Dataset {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]nn.Dataset(nil), b.samples...)
}

// Reset drops all samples.
func (b *TrainingBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = nil
}

// SaveTo persists the samples under key.
func (b *TrainingBuffer) SaveTo(ctx context.Context, sink Sink, key string) error {
	return sink.SaveDatasets(ctx, key, b.Samples())
}

// LoadFrom appends the samples stored under key. It reports whether the key
// existed.
func (b *TrainingBuffer) LoadFrom(ctx context.Context, sink Sink, key string) (bool, error) {
	data, ok, err := sink.LoadDatasets(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(b.samples, data...)
	return true, nil
}
