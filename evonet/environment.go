package evonet

import (
	"context"
	"time"

	"github.com/baldhumanity/evonet-go/evonet/nn"
	"github.com/baldhumanity/evonet-go/evonet/record"
)

// Agent is an actor in the simulation controlled by a network. The
// simulation owns timing, sensing and actuation; the schedulers only hand
// out networks and wait for episodes to end.
type Agent interface {
	// Begin resets the agent to a fresh starting condition, installs net as
	// its controller and enables acting. The agent owns net until the
	// episode ends.
	Begin(ctx context.Context, net *nn.Network) error
	// Active reports whether the current episode is still running.
	Active() bool
	// Outcome describes the last finished episode.
	Outcome() EpisodeOutcome
}

// Notifier is implemented by agents that can signal episode completion
// instead of being polled. Done returns a channel that is closed when the
// episode started by the last Begin has ended.
type Notifier interface {
	Done() <-chan struct{}
}

// Sink persists scheduler output. Every method may fail; schedulers log the
// failure and keep running.
type Sink interface {
	SaveGenome(ctx context.Context, key string, genome nn.Genome) error
	LoadGenome(ctx context.Context, key string) (nn.Genome, bool, error)
	SaveDatasets(ctx context.Context, key string, data []nn.Dataset) error
	LoadDatasets(ctx context.Context, key string) ([]nn.Dataset, bool, error)
	SaveEvolutionLog(ctx context.Context, log record.EvolutionLog) error
	SaveTrainingLog(ctx context.Context, log record.TrainingLog) error
}

// WaitForAgents blocks until no agent is active. When every agent implements
// Notifier the wait is driven by their completion channels; otherwise the
// agents are polled every interval. Cancelling ctx abandons the wait at once.
func WaitForAgents(ctx context.Context, agents []Agent, interval time.Duration) error {
	if chans, ok := notifiers(agents); ok {
		for _, done := range chans {
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}

	if allInactive(agents) {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if allInactive(agents) {
				return nil
			}
		}
	}
}

func notifiers(agents []Agent) ([]<-chan struct{}, bool) {
	chans := make([]<-chan struct{}, 0, len(agents))
	for _, a := range agents {
		n, ok := a.(Notifier)
		if !ok {
			return nil, false
		}
		chans = append(chans, n.Done())
	}
	return chans, true
}

func allInactive(agents []Agent) bool {
	for _, a := range agents {
		if a.Active() {
			return false
		}
	}
	return true
}
