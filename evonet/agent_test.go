package evonet

import (
	"bytes"
	"context"
	"log"
	"sync"
	"testing"

	"github.com/baldhumanity/evonet-go/evonet/nn"
)

// probeInputs is fed to every network a fake agent drives.
var probeInputs = []float64{1, 0.5, -0.5, 0.25, -1}

// scriptedAgent finishes its episode inside Begin. The completion fraction is
// the first network output, so fitness depends on the weights.
type scriptedAgent struct {
	mu      sync.Mutex
	outcome EpisodeOutcome
	nets    []*nn.Network
	done    chan struct{}
}

func (a *scriptedAgent) Begin(_ context.Context, net *nn.Network) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nets = append(a.nets, net)
	out, err := net.FeedForward(probeInputs)
	if err != nil {
		return err
	}
	a.outcome = EpisodeOutcome{Completed: out[0], RightIndicator: 1, LeftIndicator: 1}
	a.done = make(chan struct{})
	close(a.done)
	return nil
}

func (a *scriptedAgent) Active() bool { return false }

func (a *scriptedAgent) Outcome() EpisodeOutcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.outcome
}

func (a *scriptedAgent) episodes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.nets)
}

// notifyingAgent adds the Notifier capability to scriptedAgent.
type notifyingAgent struct{ scriptedAgent }

func (a *notifyingAgent) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

// fixedAgent always reports the same outcome.
type fixedAgent struct {
	outcome EpisodeOutcome
}

func (a *fixedAgent) Begin(context.Context, *nn.Network) error { return nil }
func (a *fixedAgent) Active() bool                              { return false }
func (a *fixedAgent) Outcome() EpisodeOutcome                   { return a.outcome }

// gatedAgent stays active until release is closed.
type gatedAgent struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedAgent() *gatedAgent {
	return &gatedAgent{started: make(chan struct{}), release: make(chan struct{})}
}

func (a *gatedAgent) Begin(context.Context, *nn.Network) error {
	a.once.Do(func() { close(a.started) })
	return nil
}

func (a *gatedAgent) Active() bool {
	select {
	case <-a.release:
		return false
	default:
		return true
	}
}

func (a *gatedAgent) Outcome() EpisodeOutcome { return EpisodeOutcome{Completed: 0.5} }

func scriptedAgents(n int) ([]Agent, []*scriptedAgent) {
	agents := make([]Agent, n)
	raw := make([]*scriptedAgent, n)
	for i := range agents {
		raw[i] = &scriptedAgent{}
		agents[i] = raw[i]
	}
	return agents, raw
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Network.HiddenLayers = []int{4}
	cfg.Training.HiddenLayers = []int{4}
	cfg.Evolution.Epochs = 8
	cfg.Evolution.PollIntervalMS = 1
	cfg.Training.Repetitions = 3
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config: %v", err)
	}
	return cfg
}

func testLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}
