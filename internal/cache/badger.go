package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const nameSeparator = "|"

// BadgerCache implements Cache on an on-disk BadgerDB.
// Every key is namespaced by the cache name so versions never mix.
type BadgerCache struct {
	db   *badger.DB
	name string
}

// OpenBadger opens (or creates) the cache directory and drops entries that
// belong to any other cache name.
func OpenBadger(path, name string) (*BadgerCache, error) {
	if name == "" {
		name = DefaultName
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger logs to stderr, which corrupts TUI output

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	c := &BadgerCache{db: db, name: name}
	if err := c.dropStale(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Name implements the Cache interface Name method
func (c *BadgerCache) Name() string {
	return c.name
}

func (c *BadgerCache) key(k string) []byte {
	return []byte(c.name + nameSeparator + k)
}

// dropStale deletes entries written under other cache names
func (c *BadgerCache) dropStale() error {
	var stale [][]byte
	own := c.name + nameSeparator

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			k := it.Item().KeyCopy(nil)
			if !strings.HasPrefix(string(k), own) {
				stale = append(stale, k)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan cache: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	return c.db.Update(func(txn *badger.Txn) error {
		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return fmt.Errorf("failed to drop stale cache entry: %w", err)
			}
		}
		return nil
	})
}

// Put implements the Cache interface Put method
func (c *BadgerCache) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrKeyEmpty
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(c.key(key), value))
	})
}

// Match implements the Cache interface Match method
func (c *BadgerCache) Match(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}

	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		// Copy value to prevent access after transaction
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Keys implements the Cache interface Keys method
func (c *BadgerCache) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	prefix := []byte(c.name + nameSeparator)

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Close implements the Cache interface Close method
func (c *BadgerCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
