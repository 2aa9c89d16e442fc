package record

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvolutionLog(t *testing.T) {
	l := NewEvolutionLog("track", "notes")
	_, err := uuid.Parse(l.RunID)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, l.SchemaVersion)
	assert.Nil(t, l.Last())

	l.Evaluations = append(l.Evaluations, EvolutionEvaluation{LayerStructure: []int{1, 1}})
	l.Last().FitnessConvergence = append(l.Last().FitnessConvergence, 3)
	assert.Equal(t, []float64{3}, l.Evaluations[0].FitnessConvergence)
}

func TestNewTrainingLog(t *testing.T) {
	l := NewTrainingLog([]float64{0.1, 0.2})
	require.Len(t, l.Evaluations, 2)
	assert.Equal(t, 0.2, l.Evaluations[1].LearningRate)
	assert.NotEqual(t, l.RunID, NewTrainingLog(nil).RunID)
}
