package evonet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/baldhumanity/evonet-go/evonet/nn"
	"github.com/baldhumanity/evonet-go/evonet/record"
)

// Evolution runs the genetic training loop over a fixed set of agents.
//
// Each epoch every agent drives one episode with its own network, the
// population is ranked by fitness and the next generation is bred from a
// small buffer of the fittest networks seen so far. A run consists of one or
// more cycles; every cycle starts a fresh population, optionally with a
// wider hidden layer.
type Evolution struct {
	runGuard

	Config *Config
	agents []Agent
	opts   options
	repro  *Reproduction

	// Published at the end of every epoch. The networks are copies owned by
	// the snapshot, so readers never share memory with the running cycle.
	mu      sync.Mutex
	runID   string
	cycle   int
	fittest []*nn.Network
	highest float64
	counter int
	resume  *evolutionCheckpoint
}

// NewEvolution creates a scheduler for the given agents.
func NewEvolution(config *Config, agents []Agent, opts ...Option) (*Evolution, error) {
	if config == nil {
		return nil, errors.New("evolution requires a config")
	}
	if len(agents) == 0 {
		return nil, errors.New("evolution requires at least one agent")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Evolution{
		Config: config,
		agents: agents,
		opts:   o,
		repro:  NewReproduction(&config.Mutation),
	}, nil
}

// Run executes all configured cycles and returns the evaluation log. If a
// run is already active the call is ignored and Run returns nil, nil.
// Cancelling ctx abandons the run; the partial log is returned together
// with the context error.
func (e *Evolution) Run(ctx context.Context) (*record.EvolutionLog, error) {
	if !e.tryStart() {
		e.opts.logger.Printf("WARN: evolution already running, start request ignored")
		return nil, nil
	}
	defer e.stop()

	cfg := e.Config
	evalLog := record.NewEvolutionLog("", cfg.Evolution.Notes)
	start := e.opts.now()

	firstCycle := 0
	e.mu.Lock()
	resume := e.resume
	e.resume = nil
	if resume != nil {
		evalLog.RunID = resume.RunID
		firstCycle = resume.Cycle
	}
	e.runID = evalLog.RunID
	e.mu.Unlock()

	for cycle := firstCycle; cycle < cfg.Evolution.Cycles; cycle++ {
		e.set(StateInitializing)
		fmt.Printf("****** Evolution cycle %d ******\n", cycle)

		pop, stag, fittest, err := e.initialize(ctx, cycle, resume)
		resume = nil
		if err != nil {
			e.set(StateIdle)
			return evalLog, fmt.Errorf("initialize cycle %d: %w", cycle, err)
		}

		evalLog.Evaluations = append(evalLog.Evaluations, record.EvolutionEvaluation{
			LayerStructure: pop[0].Layers(),
		})
		if err := e.runCycle(ctx, cycle, pop, stag, fittest, start, evalLog.Last()); err != nil {
			e.set(StateIdle)
			return evalLog, err
		}
	}

	elapsed := e.opts.now().Sub(start)
	evalLog.Info = fmt.Sprintf("A total of %d cycles, each trained for %d epochs, with a total of %d agents, for a total of %.2f minutes.",
		cfg.Evolution.Cycles, cfg.Evolution.Epochs, len(e.agents), elapsed.Minutes())

	if cfg.Evolution.SaveEvaluation && e.opts.sink != nil {
		if err := e.opts.sink.SaveEvolutionLog(ctx, *evalLog); err != nil {
			e.opts.logger.Printf("WARN: Failed to save evolution log %s: %v", evalLog.RunID, err)
		}
	}

	e.set(StateFinished)
	return evalLog, nil
}

// initialize builds the population of a cycle: copies of a checkpointed
// fittest buffer, copies of the persisted fittest genome, or fresh random
// networks.
func (e *Evolution) initialize(ctx context.Context, cycle int, resume *evolutionCheckpoint) ([]*nn.Network, *Stagnation, []*nn.Network, error) {
	cfg := e.Config
	stag := NewStagnation(cfg.Evolution.StagnationReset, cfg.Evolution.Greedy)
	pop := make([]*nn.Network, len(e.agents))

	if resume != nil && len(resume.Fittest) > 0 {
		fittest := make([]*nn.Network, len(resume.Fittest))
		for i, g := range resume.Fittest {
			net, err := nn.FromGenome(g)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("checkpoint genome %d: %w", i, err)
			}
			fittest[i] = net
		}
		for i := range pop {
			pop[i] = fittest[i%len(fittest)].Copy()
		}
		stag.Highest = resume.Highest
		stag.Counter = resume.Counter
		stag.primed = true
		fmt.Printf(" Resumed %d fittest networks from checkpoint (highest %.4f)\n", len(fittest), stag.Highest)
		return pop, stag, fittest, nil
	}

	if cfg.Evolution.StartFromSaved {
		seed, err := e.loadSaved(ctx, cfg.Store.EvolutionGenomeKey)
		if err != nil {
			return nil, nil, nil, err
		}
		if seed != nil {
			for i := range pop {
				pop[i] = seed.Copy()
			}
			return pop, stag, nil, nil
		}
	}

	layers := cfg.EvolutionLayers(cycle)
	for i := range pop {
		pop[i] = nn.New(layers, cfg.Network.RandomizeBiases)
	}
	return pop, stag, nil, nil
}

// loadSaved fetches a persisted genome. A missing or unreadable genome is
// logged and reported as nil so the caller can fall back to random networks;
// a genome that does not match its own layer sizes is an error.
func (e *Evolution) loadSaved(ctx context.Context, key string) (*nn.Network, error) {
	return loadSavedNetwork(ctx, e.opts, key)
}

func loadSavedNetwork(ctx context.Context, o options, key string) (*nn.Network, error) {
	if o.sink == nil {
		o.logger.Printf("WARN: No sink configured, cannot load genome %q. Starting from random networks.", key)
		return nil, nil
	}
	g, ok, err := o.sink.LoadGenome(ctx, key)
	if err != nil {
		o.logger.Printf("WARN: Failed to load genome %q: %v. Starting from random networks.", key, err)
		return nil, nil
	}
	if !ok {
		o.logger.Printf("WARN: No saved genome %q found. Starting from random networks.", key)
		return nil, nil
	}
	net, err := nn.FromGenome(g)
	if err != nil {
		return nil, fmt.Errorf("saved genome %q: %w", key, err)
	}
	return net, nil
}

func (e *Evolution) runCycle(ctx context.Context, cycle int, pop []*nn.Network, stag *Stagnation, fittest []*nn.Network, start time.Time, eval *record.EvolutionEvaluation) error {
	cfg := e.Config
	difference, completion := 0.0, 0.0
	regimeOverride := false

	for epoch := 0; epoch < cfg.Evolution.Epochs; epoch++ {
		epochStart := e.opts.now()
		at := epochStart.Sub(start).Seconds()

		// The first epoch of a fresh cycle runs the initial population as is.
		// A resumed cycle already has a fittest buffer to breed from.
		if epoch > 0 || fittest != nil {
			e.set(StateGeneticEngineering)
			regime := RegimeFor(difference, cfg.Mutation.MinorImprovement)
			if regimeOverride {
				regime = RegimeMajor
			}
			chance := cfg.Mutation.MutationCurve.Evaluate(completion)
			divider := stag.Divider(completion, cfg.Mutation.MaxDivider)
			offspring := e.repro.Breed(fittest, len(e.agents), regime, chance, divider, at)
			for i, o := range offspring {
				pop[i] = o.Net
			}
			fmt.Printf(" Epoch %d: %s regime %v\n", epoch, regime, CountRoles(offspring))
		}

		e.set(StateRunningEpisode)
		for i, agent := range e.agents {
			if err := agent.Begin(ctx, pop[i]); err != nil {
				e.opts.logger.Printf("WARN: Agent %d failed to begin episode: %v", i, err)
			}
		}
		if err := WaitForAgents(ctx, e.agents, cfg.PollInterval()); err != nil {
			return fmt.Errorf("cycle %d epoch %d: %w", cycle, epoch, err)
		}

		e.set(StateEvaluating)
		ranked, outcomes := e.evaluate(pop)
		best := ranked[0]
		completion = outcomes[best].Completed

		u := stag.Update(pop[best].Fitness())
		difference = u.Difference
		regimeOverride = u.Reset

		if u.Improved {
			if cfg.Mutation.Reinforce {
				e.reinforce(pop, ranked, at)
			}
			fittest = topNetworks(pop, ranked, cfg.Evolution.FittestCount)
			if cfg.Evolution.SaveFittest {
				e.persist(ctx, fittest[0])
			}
			fmt.Printf(" New all-time best in cycle %d: %.4f\n", cycle, stag.Highest)
		} else if u.Reset {
			for j := 1; j < len(fittest); j++ {
				fittest[j] = fittest[0].Copy()
			}
			fmt.Printf(" No improvement for %d epochs, collapsing fittest buffer\n", cfg.Evolution.StagnationReset)
		}

		fitnesses := make([]float64, len(pop))
		for i, net := range pop {
			fitnesses[i] = net.Fitness()
		}
		eval.FitnessConvergence = append(eval.FitnessConvergence, pop[best].Fitness())
		eval.Epochs = append(eval.Epochs, record.EpochSummary{
			Epoch:      epoch,
			Best:       pop[best].Fitness(),
			Mean:       Mean(fitnesses),
			Stdev:      Stdev(fitnesses),
			Highest:    stag.Highest,
			Difference: difference,
			Stagnation: stag.Counter,
			Reset:      u.Reset,
		})

		e.publish(cycle, fittest, stag)

		fmt.Printf(" Epoch %d best %.4f (mean %.4f, all-time %.4f, without improvement %d) in %s\n",
			epoch, pop[best].Fitness(), Mean(fitnesses), stag.Highest, stag.Counter, e.opts.now().Sub(epochStart))
	}

	if len(fittest) > 0 {
		g := fittest[0].ToGenome()
		eval.FittestNetwork = &g
	}
	return nil
}

// publish replaces the snapshot read by Fittest and SaveCheckpoint.
func (e *Evolution) publish(cycle int, fittest []*nn.Network, stag *Stagnation) {
	snapshot := make([]*nn.Network, len(fittest))
	for i, n := range fittest {
		snapshot[i] = n.Copy()
	}
	e.mu.Lock()
	e.cycle = cycle
	e.fittest = snapshot
	e.highest = stag.Highest
	e.counter = stag.Counter
	e.mu.Unlock()
}

// evaluate scores every network and returns population indices sorted by
// descending fitness, together with the episode outcomes.
func (e *Evolution) evaluate(pop []*nn.Network) ([]int, []EpisodeOutcome) {
	outcomes := make([]EpisodeOutcome, len(pop))
	ranked := make([]int, len(pop))
	for i, agent := range e.agents {
		outcomes[i] = agent.Outcome()
		pop[i].SetFitness(e.Config.Fitness.Evaluate(outcomes[i]))
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return pop[ranked[a]].CompareTo(pop[ranked[b]]) < 0
	})
	return ranked, outcomes
}

// reinforce strengthens the recent mutations of the networks about to enter
// the fittest buffer.
func (e *Evolution) reinforce(pop []*nn.Network, ranked []int, at float64) {
	m := e.Config.Mutation
	for _, idx := range ranked[:min(len(ranked), e.Config.Evolution.FittestCount)] {
		pop[idx].Reward(at, m.RewardMultiplier, m.RewardWindow, m.RewardLearningRate)
	}
}

func (e *Evolution) persist(ctx context.Context, net *nn.Network) {
	if e.opts.sink == nil {
		return
	}
	key := e.Config.Store.EvolutionGenomeKey
	if err := e.opts.sink.SaveGenome(ctx, key, net.ToGenome()); err != nil {
		e.opts.logger.Printf("WARN: Failed to save fittest genome %q: %v", key, err)
	}
}

// topNetworks deep-copies the k best networks. When the population is
// smaller than k the remaining slots hold copies of the best network.
func topNetworks(pop []*nn.Network, ranked []int, k int) []*nn.Network {
	out := make([]*nn.Network, k)
	for j := range out {
		if j < len(ranked) {
			out[j] = pop[ranked[j]].Copy()
		} else {
			out[j] = pop[ranked[0]].Copy()
		}
	}
	return out
}

// Fittest returns copies of the current fittest buffer, best first.
func (e *Evolution) Fittest() []*nn.Network {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*nn.Network, len(e.fittest))
	for i, n := range e.fittest {
		out[i] = n.Copy()
	}
	return out
}
