// Package record holds the evaluation logs written by the evolution and
// training schedulers. The logs are a write-only analysis format: nothing in
// the library reads them back to resume work.
package record

import (
	"time"

	"github.com/google/uuid"

	"github.com/baldhumanity/evonet-go/evonet/nn"
)

// SchemaVersion is stamped into every log so offline tooling can tell
// formats apart.
const SchemaVersion = 1

// NewRunID returns a fresh identifier for an evolution or training run.
func NewRunID() string {
	return uuid.NewString()
}

// EvolutionLog is the result of one evolution run, one evaluation per cycle.
type EvolutionLog struct {
	SchemaVersion   int                   `json:"schema_version"`
	RunID           string                `json:"run_id"`
	StartedAt       time.Time             `json:"started_at"`
	Info            string                `json:"info"`
	AdditionalNotes string                `json:"additional_notes"`
	Evaluations     []EvolutionEvaluation `json:"evaluations"`
}

// EvolutionEvaluation covers one cycle of a fixed network architecture.
type EvolutionEvaluation struct {
	LayerStructure     []int          `json:"layer_structure"`
	FitnessConvergence []float64      `json:"fitness_convergence"` // best fitness per epoch
	Epochs             []EpochSummary `json:"epochs"`
	FittestNetwork     *nn.Genome     `json:"fittest_network,omitempty"`
}

// EpochSummary describes the population after one evaluated epoch.
type EpochSummary struct {
	Epoch      int     `json:"epoch"`
	Best       float64 `json:"best"`
	Mean       float64 `json:"mean"`
	Stdev      float64 `json:"stdev"`
	Highest    float64 `json:"highest"`    // all-time best in this cycle
	Difference float64 `json:"difference"` // best minus the previous all-time best
	Stagnation int     `json:"stagnation"`
	Reset      bool    `json:"reset"` // greedy stagnation reset fired this epoch
}

// NewEvolutionLog starts an empty log for a new run.
func NewEvolutionLog(info, notes string) *EvolutionLog {
	return &EvolutionLog{
		SchemaVersion:   SchemaVersion,
		RunID:           NewRunID(),
		StartedAt:       time.Now().UTC(),
		Info:            info,
		AdditionalNotes: notes,
	}
}

// Last returns the evaluation currently being filled, or nil.
func (l *EvolutionLog) Last() *EvolutionEvaluation {
	if len(l.Evaluations) == 0 {
		return nil
	}
	return &l.Evaluations[len(l.Evaluations)-1]
}

// TrainingLog is the result of one supervised training run.
type TrainingLog struct {
	SchemaVersion int                  `json:"schema_version"`
	RunID         string               `json:"run_id"`
	StartedAt     time.Time            `json:"started_at"`
	Evaluations   []TrainingEvaluation `json:"evaluations"`
}

// TrainingEvaluation tracks one agent: its learning rate and the fitness
// measured after every repetition.
type TrainingEvaluation struct {
	LearningRate       float64   `json:"learning_rate"`
	FitnessConvergence []float64 `json:"fitness_convergence"`
}

// NewTrainingLog starts a log with one evaluation per learning rate.
func NewTrainingLog(learningRates []float64) *TrainingLog {
	l := &TrainingLog{
		SchemaVersion: SchemaVersion,
		RunID:         NewRunID(),
		StartedAt:     time.Now().UTC(),
		Evaluations:   make([]TrainingEvaluation, len(learningRates)),
	}
	for i, lr := range learningRates {
		l.Evaluations[i] = TrainingEvaluation{LearningRate: lr}
	}
	return l
}
