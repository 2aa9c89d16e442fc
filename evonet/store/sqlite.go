package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/baldhumanity/evonet-go/evonet/nn"
	"github.com/baldhumanity/evonet-go/evonet/record"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every record as a JSON payload in a single SQLite file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveGenome(ctx context.Context, key string, genome nn.Genome) error {
	payload, err := nn.EncodeGenome(genome)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "genomes", key, payload)
}

func (s *SQLiteStore) LoadGenome(ctx context.Context, key string) (nn.Genome, bool, error) {
	payload, ok, err := s.payload(ctx, "genomes", key)
	if err != nil || !ok {
		return nn.Genome{}, ok, err
	}
	genome, err := nn.DecodeGenome(payload)
	if err != nil {
		return nn.Genome{}, false, fmt.Errorf("genome %s: %w", key, err)
	}
	return genome, true, nil
}

func (s *SQLiteStore) SaveDatasets(ctx context.Context, key string, data []nn.Dataset) error {
	payload, err := EncodeDatasets(data)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "datasets", key, payload)
}

func (s *SQLiteStore) LoadDatasets(ctx context.Context, key string) ([]nn.Dataset, bool, error) {
	payload, ok, err := s.payload(ctx, "datasets", key)
	if err != nil || !ok {
		return nil, ok, err
	}
	data, err := DecodeDatasets(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode datasets %s: %w", key, err)
	}
	return data, true, nil
}

func (s *SQLiteStore) SaveEvolutionLog(ctx context.Context, log record.EvolutionLog) error {
	payload, err := EncodeEvolutionLog(log)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "evolution_logs", log.RunID, payload)
}

func (s *SQLiteStore) LoadEvolutionLog(ctx context.Context, runID string) (record.EvolutionLog, bool, error) {
	payload, ok, err := s.payload(ctx, "evolution_logs", runID)
	if err != nil || !ok {
		return record.EvolutionLog{}, ok, err
	}
	log, err := DecodeEvolutionLog(payload)
	if err != nil {
		return record.EvolutionLog{}, false, fmt.Errorf("decode evolution log %s: %w", runID, err)
	}
	return log, true, nil
}

func (s *SQLiteStore) SaveTrainingLog(ctx context.Context, log record.TrainingLog) error {
	payload, err := EncodeTrainingLog(log)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "training_logs", log.RunID, payload)
}

func (s *SQLiteStore) LoadTrainingLog(ctx context.Context, runID string) (record.TrainingLog, bool, error) {
	payload, ok, err := s.payload(ctx, "training_logs", runID)
	if err != nil || !ok {
		return record.TrainingLog{}, ok, err
	}
	log, err := DecodeTrainingLog(payload)
	if err != nil {
		return record.TrainingLog{}, false, fmt.Errorf("decode training log %s: %w", runID, err)
	}
	return log, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// upsert and payload only ever receive one of the fixed table names created
// in createTables.
func (s *SQLiteStore) upsert(ctx context.Context, table, id string, payload []byte) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO `+table+` (id, schema_version, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schema_version = excluded.schema_version,
			payload = excluded.payload
	`, id, record.SchemaVersion, payload)
	return err
}

func (s *SQLiteStore) payload(ctx context.Context, table, id string) ([]byte, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM `+table+` WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS genomes (
			id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS evolution_logs (
			id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS training_logs (
			id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
