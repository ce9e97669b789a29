package options

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Store is a small key-value options store backed by Badger. It holds
// installation-wide settings and cached values that do not belong in
// the relational catalog, such as the compiled CSS cache slot.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) an options store at the given directory.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open options store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens an options store that lives only in memory.
// Useful for tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory options store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key. The second return value reports
// whether the key was present; an empty stored value is still a hit.
func (s *Store) Get(key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read option %q: %w", key, err)
	}
	return string(value), true, nil
}

// Set stores the value under key, overwriting any previous value.
func (s *Store) Set(key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to write option %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete option %q: %w", key, err)
	}
	return nil
}
