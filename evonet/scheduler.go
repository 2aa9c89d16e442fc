package evonet

import (
	"log"
	"sync/atomic"
	"time"
)

// State is the phase a scheduler is currently in.
type State int32

const (
	StateIdle State = iota
	StateInitializing
	StateRunningEpisode
	StateEvaluating
	StateGeneticEngineering
	StateTrainPass
	StateEvaluatePass
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateRunningEpisode:
		return "running episode"
	case StateEvaluating:
		return "evaluating"
	case StateGeneticEngineering:
		return "genetic engineering"
	case StateTrainPass:
		return "train pass"
	case StateEvaluatePass:
		return "evaluate pass"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Option configures a scheduler.
type Option func(*options)

type options struct {
	sink   Sink
	logger *log.Logger
	now    func() time.Time
}

func defaultOptions() options {
	return options{logger: log.Default(), now: time.Now}
}

// WithSink sets where genomes and evaluation logs are persisted. Without a
// sink nothing is persisted and saved genomes cannot be loaded.
func WithSink(s Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithLogger sets the progress and warning logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the time source used to timestamp mutations.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// runGuard gives a scheduler single-flight semantics.
type runGuard struct {
	running atomic.Bool
	state   atomic.Int32
}

func (g *runGuard) tryStart() bool { return g.running.CompareAndSwap(false, true) }

func (g *runGuard) stop() { g.running.Store(false) }

func (g *runGuard) set(s State) { g.state.Store(int32(s)) }

// Running reports whether a run is in progress.
func (g *runGuard) Running() bool { return g.running.Load() }

// State reports the current phase.
func (g *runGuard) State() State { return State(g.state.Load()) }
