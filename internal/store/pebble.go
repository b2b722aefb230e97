package store

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// PebbleStore persists scope documents in a local pebble database.
type PebbleStore struct {
	db *pebble.DB
}

// OpenPebble opens (or creates) a pebble database at path.
func OpenPebble(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble store at %s: %w", path, err)
	}
	return &PebbleStore{db: db}, nil
}

// Get returns the value for key and whether it exists.
func (p *PebbleStore) Get(key string) ([]byte, bool, error) {
	v, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pebble get %s: %w", key, err)
	}
	defer closer.Close()

	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Put overwrites the value for key with a synced write.
func (p *PebbleStore) Put(key string, value []byte) error {
	if err := p.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (p *PebbleStore) Close() error {
	return p.db.Close()
}
