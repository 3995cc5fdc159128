package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/config"
)

// BadgerCache persists cached chart responses in BadgerDB so a restart
// does not hammer the upstream telemetry API with cold queries. Entry
// expiry is delegated to badger's native TTL support.
type BadgerCache struct {
	db     *badger.DB
	hits   atomic.Int64
	misses atomic.Int64

	ttl map[TTLClass]time.Duration
}

// BadgerConfig holds the store configuration.
type BadgerConfig struct {
	// Path to the database files.
	Path string

	// InMemory mode (for testing).
	InMemory bool
}

// NewBadgerCache opens the store. Memory options are tuned down from
// badger's defaults: cached chart payloads are small JSON blobs and the
// working set fits in a few megabytes.
func NewBadgerCache(cfg BadgerConfig) (*BadgerCache, error) {
	opts := badger.DefaultOptions(cfg.Path)

	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}

	opts = opts.
		WithCompression(options.Snappy).
		WithNumVersionsToKeep(1).
		WithMemTableSize(16 << 20).
		WithNumMemtables(2).
		WithBlockCacheSize(8 << 20).
		WithIndexCacheSize(4 << 20).
		WithMaxLevels(4).
		WithNumCompactors(1).
		WithValueLogFileSize(64 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return &BadgerCache{
		db: db,
		ttl: map[TTLClass]time.Duration{
			Current:    config.CacheTTLCurrent,
			Historical: config.CacheTTLHistorical,
		},
	}, nil
}

// Get returns the cached payload if present and unexpired. Read errors
// degrade to a miss; the caller refetches from upstream either way.
func (c *BadgerCache) Get(key string) ([]byte, bool) {
	var payload []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return payload, true
}

// Set stores the payload with the TTL for its class. Write failures are
// swallowed: the cache is an optimization, not a system of record.
func (c *BadgerCache) Set(key string, payload []byte, class TTLClass) {
	_ = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), payload).WithTTL(c.ttl[class])
		return txn.SetEntry(entry)
	})
}

func (c *BadgerCache) Stats() Stats {
	var entries int
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			entries++
		}
		return nil
	})

	return Stats{
		Entries: entries,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

func (c *BadgerCache) Close() error {
	return c.db.Close()
}
