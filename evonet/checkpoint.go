package evonet

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"github.com/baldhumanity/evonet-go/evonet/nn"
)

// evolutionCheckpoint holds the parts of an Evolution needed to resume a run.
// Populations are not saved; a resumed cycle is bred from the fittest buffer.
type evolutionCheckpoint struct {
	RunID   string
	Cycle   int
	Fittest []nn.Genome
	Highest float64
	Counter int
}

// SaveCheckpoint writes the fittest buffer and stagnation state of the
// current (or last) run to a gzip-compressed gob file. It may be called
// while a run is in progress, in which case it saves the state as of the
// last completed epoch.
func (e *Evolution) SaveCheckpoint(filePath string) error {
	e.mu.Lock()
	if len(e.fittest) == 0 {
		e.mu.Unlock()
		return errors.New("nothing to checkpoint: no epoch has been evaluated yet")
	}
	saveData := evolutionCheckpoint{
		RunID:   e.runID,
		Cycle:   e.cycle,
		Fittest: make([]nn.Genome, len(e.fittest)),
		Highest: e.highest,
		Counter: e.counter,
	}
	for i, n := range e.fittest {
		saveData.Fittest[i] = n.ToGenome()
	}
	e.mu.Unlock()

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(saveData); err != nil {
		_ = gzWriter.Close()
		return fmt.Errorf("failed to encode evolution checkpoint: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint file '%s': %w", filePath, err)
	}

	fmt.Printf("Checkpoint saved to %s\n", filePath)
	return nil
}

// LoadCheckpoint reads a checkpoint written by SaveCheckpoint. The next Run
// continues the checkpointed run id and cycle, breeding from the saved
// fittest buffer instead of initializing a fresh population.
func (e *Evolution) LoadCheckpoint(checkpointPath string) error {
	if e.Running() {
		return errors.New("cannot load a checkpoint while evolution is running")
	}

	file, err := os.Open(checkpointPath)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	var saveData evolutionCheckpoint
	if err := gob.NewDecoder(gzReader).Decode(&saveData); err != nil {
		return fmt.Errorf("failed to decode evolution checkpoint: %w", err)
	}
	if len(saveData.Fittest) == 0 {
		return errors.New("checkpoint holds no fittest networks")
	}
	for i, g := range saveData.Fittest {
		if _, err := nn.FromGenome(g); err != nil {
			return fmt.Errorf("checkpoint genome %d: %w", i, err)
		}
	}

	e.mu.Lock()
	e.resume = &saveData
	e.mu.Unlock()

	fmt.Printf("Checkpoint loaded from %s (cycle %d, highest %.4f)\n", checkpointPath, saveData.Cycle, saveData.Highest)
	return nil
}
