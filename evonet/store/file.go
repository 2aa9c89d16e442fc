package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/baldhumanity/evonet-go/evonet/nn"
	"github.com/baldhumanity/evonet-go/evonet/record"
)

// FileStore writes one JSON document per key below a root directory:
//
//	genomes/<key>.json
//	datasets/<key>.json
//	evaluation/<run id>.json
//	training/<run id>.json
//
// Writes go to a temporary file first and are renamed into place.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) Init(_ context.Context) error {
	if s.root == "" {
		return errors.New("file store root is required")
	}
	for _, dir := range []string{"genomes", "datasets", "evaluation", "training"} {
		if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}
	return nil
}

func (s *FileStore) SaveGenome(_ context.Context, key string, genome nn.Genome) error {
	payload, err := nn.EncodeGenome(genome)
	if err != nil {
		return err
	}
	return s.write("genomes", key, payload)
}

func (s *FileStore) LoadGenome(_ context.Context, key string) (nn.Genome, bool, error) {
	payload, ok, err := s.read("genomes", key)
	if err != nil || !ok {
		return nn.Genome{}, ok, err
	}
	genome, err := nn.DecodeGenome(payload)
	if err != nil {
		return nn.Genome{}, false, fmt.Errorf("genome %s: %w", key, err)
	}
	return genome, true, nil
}

func (s *FileStore) SaveDatasets(_ context.Context, key string, data []nn.Dataset) error {
	payload, err := EncodeDatasets(data)
	if err != nil {
		return err
	}
	return s.write("datasets", key, payload)
}

func (s *FileStore) LoadDatasets(_ context.Context, key string) ([]nn.Dataset, bool, error) {
	payload, ok, err := s.read("datasets", key)
	if err != nil || !ok {
		return nil, ok, err
	}
	data, err := DecodeDatasets(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode datasets %s: %w", key, err)
	}
	return data, true, nil
}

func (s *FileStore) SaveEvolutionLog(_ context.Context, log record.EvolutionLog) error {
	payload, err := EncodeEvolutionLog(log)
	if err != nil {
		return err
	}
	return s.write("evaluation", log.RunID, payload)
}

func (s *FileStore) LoadEvolutionLog(_ context.Context, runID string) (record.EvolutionLog, bool, error) {
	payload, ok, err := s.read("evaluation", runID)
	if err != nil || !ok {
		return record.EvolutionLog{}, ok, err
	}
	log, err := DecodeEvolutionLog(payload)
	if err != nil {
		return record.EvolutionLog{}, false, fmt.Errorf("decode evolution log %s: %w", runID, err)
	}
	return log, true, nil
}

func (s *FileStore) SaveTrainingLog(_ context.Context, log record.TrainingLog) error {
	payload, err := EncodeTrainingLog(log)
	if err != nil {
		return err
	}
	return s.write("training", log.RunID, payload)
}

func (s *FileStore) LoadTrainingLog(_ context.Context, runID string) (record.TrainingLog, bool, error) {
	payload, ok, err := s.read("training", runID)
	if err != nil || !ok {
		return record.TrainingLog{}, ok, err
	}
	log, err := DecodeTrainingLog(payload)
	if err != nil {
		return record.TrainingLog{}, false, fmt.Errorf("decode training log %s: %w", runID, err)
	}
	return log, true, nil
}

// Path returns the file a key of the given kind is stored in.
func (s *FileStore) Path(kind, key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid store key %q", key)
	}
	return filepath.Join(s.root, kind, key+".json"), nil
}

func (s *FileStore) write(kind, key string, payload []byte) error {
	path, err := s.Path(kind, key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) read(kind, key string) ([]byte, bool, error) {
	path, err := s.Path(kind, key)
	if err != nil {
		return nil, false, err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return payload, true, nil
}
