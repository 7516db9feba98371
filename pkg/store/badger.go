package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Key prefixes for BadgerDB storage. Snapshot keys embed a nanosecond
// timestamp plus a per-process sequence so appends at the same instant never
// collide; ordering semantics still come from the stored Timestamp field.
const (
	itemKeyPrefix  = "item:"
	scoreKeyPrefix = "score:"
	snapKeyPrefix  = "snap:"
)

// OpenBadger opens a BadgerDB instance at dir with logging routed to the
// given zerolog logger.
func OpenBadger(dir string, log zerolog.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogAdapter{log: log})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %s: %w", dir, err)
	}
	return db, nil
}

// badgerLogAdapter routes badger's internal logging through zerolog.
type badgerLogAdapter struct {
	log zerolog.Logger
}

func (a badgerLogAdapter) Errorf(format string, args ...any) {
	a.log.Error().Msgf(format, args...)
}

func (a badgerLogAdapter) Warningf(format string, args ...any) {
	a.log.Warn().Msgf(format, args...)
}

func (a badgerLogAdapter) Infof(format string, args ...any) {
	a.log.Debug().Msgf(format, args...)
}

func (a badgerLogAdapter) Debugf(format string, args ...any) {
	a.log.Debug().Msgf(format, args...)
}

// BadgerCatalog is a Catalog persisted in BadgerDB.
type BadgerCatalog struct {
	db *badger.DB
}

// NewBadgerCatalog creates a catalog over an open BadgerDB handle.
func NewBadgerCatalog(db *badger.DB) *BadgerCatalog {
	return &BadgerCatalog{db: db}
}

func itemKey(owner, itemID string) []byte {
	return []byte(itemKeyPrefix + owner + ":" + itemID)
}

// MarkWatched stores an item in the owner's watched list.
func (c *BadgerCatalog) MarkWatched(_ context.Context, owner string, item Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(itemKey(owner, item.ID), data)
	})
}

// Watched returns all items the owner has marked watched, in key order.
func (c *BadgerCatalog) Watched(_ context.Context, owner string) ([]Item, error) {
	var items []Item

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(itemKeyPrefix + owner + ":")
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var item Item
				if err := json.Unmarshal(val, &item); err != nil {
					return fmt.Errorf("unmarshal item: %w", err)
				}
				items = append(items, item)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Resolve returns the catalog entry for an item ID.
func (c *BadgerCatalog) Resolve(_ context.Context, owner, itemID string) (Item, error) {
	var item Item

	err := c.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get(itemKey(owner, itemID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
		}
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}
		return entry.Value(func(val []byte) error {
			return json.Unmarshal(val, &item)
		})
	})
	if err != nil {
		return Item{}, err
	}

	return item, nil
}

// BadgerScoreStore is a ScoreStore persisted in BadgerDB. Missing records
// read as DefaultDisplay per the ScoreStore contract.
type BadgerScoreStore struct {
	db *badger.DB
}

// NewBadgerScoreStore creates a score store over an open BadgerDB handle.
func NewBadgerScoreStore(db *badger.DB) *BadgerScoreStore {
	return &BadgerScoreStore{db: db}
}

func badgerScoreKey(owner, itemID string) []byte {
	return []byte(scoreKeyPrefix + owner + ":" + itemID)
}

// Get returns the stored display score or DefaultDisplay.
func (s *BadgerScoreStore) Get(_ context.Context, owner, itemID string) (int, error) {
	display := DefaultDisplay

	err := s.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get(badgerScoreKey(owner, itemID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get score: %w", err)
		}
		return entry.Value(func(val []byte) error {
			parsed, err := strconv.Atoi(string(val))
			if err != nil {
				return fmt.Errorf("corrupt score value: %w", err)
			}
			display = ClampDisplay(parsed)
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	return display, nil
}

// Put overwrites the display score for the pair.
func (s *BadgerScoreStore) Put(_ context.Context, owner, itemID string, display int) error {
	value := strconv.Itoa(ClampDisplay(display))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerScoreKey(owner, itemID), []byte(value))
	})
}

// BadgerSnapshotStore is an append-only SnapshotStore persisted in BadgerDB.
// The Score and Snapshot writes of one session round remain independent
// best-effort writes even though Badger supports transactions; the engine's
// failure semantics assume either write can fail alone.
type BadgerSnapshotStore struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerSnapshotStore creates a snapshot store over an open BadgerDB
// handle.
func NewBadgerSnapshotStore(db *badger.DB) (*BadgerSnapshotStore, error) {
	seq, err := db.GetSequence([]byte("seq:snapshot"), 128)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate snapshot sequence: %w", err)
	}
	return &BadgerSnapshotStore{db: db, seq: seq}, nil
}

// Append adds one snapshot to the log.
func (s *BadgerSnapshotStore) Append(_ context.Context, snap Snapshot) error {
	n, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to advance snapshot sequence: %w", err)
	}

	key := fmt.Sprintf("%s%s:%020d:%d", snapKeyPrefix, snap.Owner, snap.Timestamp.UnixNano(), n)
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Range returns all snapshots matching the query. The per-owner key prefix
// bounds the scan; the time window and kind filter are applied per record.
func (s *BadgerSnapshotStore) Range(_ context.Context, q SnapshotQuery) ([]Snapshot, error) {
	var out []Snapshot

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(snapKeyPrefix + q.Owner + ":")
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var snap Snapshot
				if err := json.Unmarshal(val, &snap); err != nil {
					return fmt.Errorf("unmarshal snapshot: %w", err)
				}
				if q.Matches(snap) {
					out = append(out, snap)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Close releases the snapshot key sequence. The owning *badger.DB is closed
// by the caller.
func (s *BadgerSnapshotStore) Close() error {
	if s.seq == nil {
		return nil
	}
	return s.seq.Release()
}
