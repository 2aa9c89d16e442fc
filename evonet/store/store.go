// Package store persists genomes, demonstration datasets and evaluation logs.
//
// Every backend satisfies evonet.Sink, so schedulers can write through any of
// them. Lookups return (value, found, error); a missing key is not an error.
package store

import (
	"context"

	"github.com/baldhumanity/evonet-go/evonet/nn"
	"github.com/baldhumanity/evonet-go/evonet/record"
)

// Store is the full persistence surface shared by all backends.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, key string, genome nn.Genome) error
	LoadGenome(ctx context.Context, key string) (nn.Genome, bool, error)
	SaveDatasets(ctx context.Context, key string, data []nn.Dataset) error
	LoadDatasets(ctx context.Context, key string) ([]nn.Dataset, bool, error)
	SaveEvolutionLog(ctx context.Context, log record.EvolutionLog) error
	LoadEvolutionLog(ctx context.Context, runID string) (record.EvolutionLog, bool, error)
	SaveTrainingLog(ctx context.Context, log record.TrainingLog) error
	LoadTrainingLog(ctx context.Context, runID string) (record.TrainingLog, bool, error)
}
