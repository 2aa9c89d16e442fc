package store

import "fmt"

// New returns an uninitialized store for the named backend. path is the
// directory for "file" and the database file for "sqlite"; it is ignored for
// "memory".
func New(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes stores that hold external resources.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
