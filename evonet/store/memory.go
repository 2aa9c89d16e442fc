package store

import (
	"context"
	"errors"
	"sync"

	"github.com/baldhumanity/evonet-go/evonet/nn"
	"github.com/baldhumanity/evonet-go/evonet/record"
)

var errNotInitialized = errors.New("store is not initialized")

// MemoryStore keeps everything in maps. Values are deep-copied on the way in
// and out so callers cannot alias stored state.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	genomes     map[string]nn.Genome
	datasets    map[string][]nn.Dataset
	evolution   map[string]record.EvolutionLog
	training    map[string]record.TrainingLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.genomes = make(map[string]nn.Genome)
	s.datasets = make(map[string][]nn.Dataset)
	s.evolution = make(map[string]record.EvolutionLog)
	s.training = make(map[string]record.TrainingLog)
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, key string, genome nn.Genome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.genomes[key] = cloneGenome(genome)
	return nil
}

func (s *MemoryStore) LoadGenome(_ context.Context, key string) (nn.Genome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nn.Genome{}, false, errNotInitialized
	}
	genome, ok := s.genomes[key]
	if !ok {
		return nn.Genome{}, false, nil
	}
	return cloneGenome(genome), true, nil
}

func (s *MemoryStore) SaveDatasets(_ context.Context, key string, data []nn.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.datasets[key] = cloneDatasets(data)
	return nil
}

func (s *MemoryStore) LoadDatasets(_ context.Context, key string) ([]nn.Dataset, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, errNotInitialized
	}
	data, ok := s.datasets[key]
	if !ok {
		return nil, false, nil
	}
	return cloneDatasets(data), true, nil
}

func (s *MemoryStore) SaveEvolutionLog(_ context.Context, log record.EvolutionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.evolution[log.RunID] = cloneEvolutionLog(log)
	return nil
}

func (s *MemoryStore) LoadEvolutionLog(_ context.Context, runID string) (record.EvolutionLog, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return record.EvolutionLog{}, false, errNotInitialized
	}
	log, ok := s.evolution[runID]
	if !ok {
		return record.EvolutionLog{}, false, nil
	}
	return cloneEvolutionLog(log), true, nil
}

func (s *MemoryStore) SaveTrainingLog(_ context.Context, log record.TrainingLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.training[log.RunID] = cloneTrainingLog(log)
	return nil
}

func (s *MemoryStore) LoadTrainingLog(_ context.Context, runID string) (record.TrainingLog, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return record.TrainingLog{}, false, errNotInitialized
	}
	log, ok := s.training[runID]
	if !ok {
		return record.TrainingLog{}, false, nil
	}
	return cloneTrainingLog(log), true, nil
}

func cloneGenome(g nn.Genome) nn.Genome {
	out := nn.Genome{
		Layers:  append([]int(nil), g.Layers...),
		Biases:  make([][]float64, len(g.Biases)),
		Weights: make([][][]float64, len(g.Weights)),
		Fitness: g.Fitness,
	}
	for i := range g.Biases {
		out.Biases[i] = append([]float64(nil), g.Biases[i]...)
	}
	for i := range g.Weights {
		out.Weights[i] = make([][]float64, len(g.Weights[i]))
		for j := range g.Weights[i] {
			out.Weights[i][j] = append([]float64(nil), g.Weights[i][j]...)
		}
	}
	return out
}

func cloneDatasets(data []nn.Dataset) []nn.Dataset {
	out := make([]nn.Dataset, len(data))
	for i, d := range data {
		out[i] = nn.Dataset{
			Inputs:  append([]float64(nil), d.Inputs...),
			Outputs: append([]float64(nil), d.Outputs...),
		}
	}
	return out
}

func cloneEvolutionLog(log record.EvolutionLog) record.EvolutionLog {
	out := log
	out.Evaluations = make([]record.EvolutionEvaluation, len(log.Evaluations))
	for i, e := range log.Evaluations {
		c := record.EvolutionEvaluation{
			LayerStructure:     append([]int(nil), e.LayerStructure...),
			FitnessConvergence: append([]float64(nil), e.FitnessConvergence...),
			Epochs:             append([]record.EpochSummary(nil), e.Epochs...),
		}
		if e.FittestNetwork != nil {
			g := cloneGenome(*e.FittestNetwork)
			c.FittestNetwork = &g
		}
		out.Evaluations[i] = c
	}
	return out
}

func cloneTrainingLog(log record.TrainingLog) record.TrainingLog {
	out := log
	out.Evaluations = make([]record.TrainingEvaluation, len(log.Evaluations))
	for i, e := range log.Evaluations {
		out.Evaluations[i] = record.TrainingEvaluation{
			LearningRate:       e.LearningRate,
			FitnessConvergence: append([]float64(nil), e.FitnessConvergence...),
		}
	}
	return out
}
