package evonet

import (
	"context"
	"errors"
	"fmt"

	"github.com/baldhumanity/evonet-go/evonet/nn"
	"github.com/baldhumanity/evonet-go/evonet/record"
)

// collapsedRange is the learning-rate spread below which every agent uses the
// minimum rate.
const collapsedRange = 0.05

// Training runs supervised backpropagation over a shared demonstration set.
// Every agent trains its own network with its own learning rate, then drives
// an episode so the fitness of each rate can be compared over repetitions.
type Training struct {
	runGuard

	Config *Config
	agents []Agent
	opts   options
}

// NewTraining creates a scheduler for the given agents.
func NewTraining(config *Config, agents []Agent, opts ...Option) (*Training, error) {
	if config == nil {
		return nil, errors.New("training requires a config")
	}
	if len(agents) == 0 {
		return nil, errors.New("training requires at least one agent")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Training{Config: config, agents: agents, opts: o}, nil
}

// LearningRates spreads n learning rates over (lo, hi]. When the range is
// narrower than 0.05 every agent gets lo.
func LearningRates(lo, hi float64, n int) []float64 {
	rates := make([]float64, n)
	for i := range rates {
		if hi-lo <= collapsedRange {
			rates[i] = lo
		} else {
			rates[i] = lo + (hi-lo)/float64(n)*float64(i+1)
		}
	}
	return rates
}

// RunStored loads the demonstration set named by the training config from
// the sink and runs on it.
func (t *Training) RunStored(ctx context.Context) (*record.TrainingLog, error) {
	if t.opts.sink == nil {
		return nil, errors.New("no sink configured to load demonstrations from")
	}
	key := t.Config.Training.DatasetKey
	data, ok, err := t.opts.sink.LoadDatasets(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load demonstrations %q: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("no demonstrations stored under %q", key)
	}
	return t.Run(ctx, data)
}

// Run trains every agent's network on data for the configured number of
// repetitions. If a run is already active the call is ignored and Run
// returns nil, nil. Samples that do not fit the network shape abandon that
// agent's pass for the repetition and are logged.
func (t *Training) Run(ctx context.Context, data []nn.Dataset) (*record.TrainingLog, error) {
	if !t.tryStart() {
		t.opts.logger.Printf("WARN: training already running, start request ignored")
		return nil, nil
	}
	defer t.stop()
	defer t.set(StateIdle)

	cfg := t.Config
	t.set(StateInitializing)
	nets, err := t.initialize(ctx)
	if err != nil {
		return nil, err
	}

	rates := LearningRates(cfg.Training.LearningRateMin, cfg.Training.LearningRateMax, len(t.agents))
	trainLog := record.NewTrainingLog(rates)
	fmt.Printf("Training %d agents on %d samples, learning rates %v\n", len(t.agents), len(data), rates)

	for rep := 0; rep < cfg.Training.Repetitions; rep++ {
		t.set(StateTrainPass)
		for j, net := range nets {
			if err := net.Train(ctx, data, rates[j], cfg.Training.WeightDecay); err != nil {
				if ctx.Err() != nil {
					return trainLog, ctx.Err()
				}
				t.opts.logger.Printf("WARN: Training pass %d of agent %d skipped: %v", rep, j, err)
			}
		}

		t.set(StateEvaluatePass)
		for j, agent := range t.agents {
			if err := agent.Begin(ctx, nets[j]); err != nil {
				t.opts.logger.Printf("WARN: Agent %d failed to begin episode: %v", j, err)
			}
		}
		if err := WaitForAgents(ctx, t.agents, cfg.PollInterval()); err != nil {
			return trainLog, fmt.Errorf("repetition %d: %w", rep, err)
		}

		fitnesses := make([]float64, len(nets))
		for j, agent := range t.agents {
			fitness := cfg.Fitness.Evaluate(agent.Outcome())
			nets[j].SetFitness(fitness)
			fitnesses[j] = fitness
			trainLog.Evaluations[j].FitnessConvergence = append(trainLog.Evaluations[j].FitnessConvergence, fitness)
		}
		fmt.Printf(" Repetition %d: best %.4f, mean %.4f\n", rep, MaxFloat(fitnesses), Mean(fitnesses))
	}

	if cfg.Training.SaveConverged && t.opts.sink != nil {
		ranked := append([]*nn.Network(nil), nets...)
		nn.SortByFitness(ranked)
		key := cfg.Store.TrainingGenomeKey
		if err := t.opts.sink.SaveGenome(ctx, key, ranked[0].ToGenome()); err != nil {
			t.opts.logger.Printf("WARN: Failed to save trained genome %q: %v", key, err)
		}
	}
	if cfg.Training.SaveEvaluation && t.opts.sink != nil {
		if err := t.opts.sink.SaveTrainingLog(ctx, *trainLog); err != nil {
			t.opts.logger.Printf("WARN: Failed to save training log %s: %v", trainLog.RunID, err)
		}
	}
	return trainLog, nil
}

// initialize creates one network per agent, either random or copied from the
// persisted training genome.
func (t *Training) initialize(ctx context.Context) ([]*nn.Network, error) {
	cfg := t.Config
	nets := make([]*nn.Network, len(t.agents))

	if !cfg.Training.StartRandomized {
		seed, err := loadSavedNetwork(ctx, t.opts, cfg.Store.TrainingGenomeKey)
		if err != nil {
			return nil, err
		}
		if seed != nil {
			for i := range nets {
				nets[i] = seed.Copy()
			}
			return nets, nil
		}
	}

	layers := cfg.TrainingLayers()
	for i := range nets {
		nets[i] = nn.New(layers, cfg.Network.RandomizeBiases)
	}
	return nets, nil
}
