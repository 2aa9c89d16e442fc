package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/baldhumanity/evonet-go/evonet/nn"
	"github.com/baldhumanity/evonet-go/evonet/record"
)

// ErrVersionMismatch is returned when a log was written with a schema this
// build does not understand.
var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeEvolutionLog serializes an evolution log as indented JSON.
func EncodeEvolutionLog(l record.EvolutionLog) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// DecodeEvolutionLog parses an evolution log and checks its schema version.
func DecodeEvolutionLog(data []byte) (record.EvolutionLog, error) {
	var l record.EvolutionLog
	if err := json.Unmarshal(data, &l); err != nil {
		return record.EvolutionLog{}, err
	}
	if err := checkVersion(l.SchemaVersion); err != nil {
		return record.EvolutionLog{}, err
	}
	return l, nil
}

// EncodeTrainingLog serializes a training log as indented JSON.
func EncodeTrainingLog(l record.TrainingLog) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// DecodeTrainingLog parses a training log and checks its schema version.
func DecodeTrainingLog(data []byte) (record.TrainingLog, error) {
	var l record.TrainingLog
	if err := json.Unmarshal(data, &l); err != nil {
		return record.TrainingLog{}, err
	}
	if err := checkVersion(l.SchemaVersion); err != nil {
		return record.TrainingLog{}, err
	}
	return l, nil
}

// EncodeDatasets serializes demonstration samples.
func EncodeDatasets(data []nn.Dataset) ([]byte, error) {
	return json.Marshal(data)
}

// DecodeDatasets parses demonstration samples.
func DecodeDatasets(payload []byte) ([]nn.Dataset, error) {
	var data []nn.Dataset
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func checkVersion(v int) error {
	if v != record.SchemaVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, v, record.SchemaVersion)
	}
	return nil
}
