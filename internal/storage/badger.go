package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Key prefix for values written through the badger backend.
const badgerKeyPrefix = "kv:"

// BadgerBackend stores values in a BadgerDB instance.
type BadgerBackend struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger database in dir.
func OpenBadger(dir string) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

// OpenBadgerInMemory opens a badger database that lives only in memory.
func OpenBadgerInMemory() (*BadgerBackend, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

// Close closes the underlying database.
func (b *BadgerBackend) Close() error {
	return b.db.Close()
}

func (b *BadgerBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (b *BadgerBackend) Put(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+key), value)
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (b *BadgerBackend) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerKeyPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (b *BadgerBackend) DeleteAll(_ context.Context) error {
	if err := b.db.DropPrefix([]byte(badgerKeyPrefix)); err != nil {
		return fmt.Errorf("drop values: %w", err)
	}
	return nil
}
