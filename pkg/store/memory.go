package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryCatalog is an in-memory Catalog keyed by owner. It doubles as the
// test fake and as the backing type for small ad-hoc pools.
type MemoryCatalog struct {
	mutex sync.RWMutex
	items map[string][]Item // owner -> watched items, insertion order
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{items: make(map[string][]Item)}
}

// MarkWatched adds an item to the owner's watched list, replacing any entry
// with the same ID.
func (c *MemoryCatalog) MarkWatched(_ context.Context, owner string, item Item) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	list := c.items[owner]
	for i := range list {
		if list[i].ID == item.ID {
			list[i] = item
			return nil
		}
	}
	c.items[owner] = append(list, item)
	return nil
}

// Watched returns a copy of the owner's watched items.
func (c *MemoryCatalog) Watched(_ context.Context, owner string) ([]Item, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	list := c.items[owner]
	out := make([]Item, len(list))
	copy(out, list)
	return out, nil
}

// Resolve looks up a single item by ID.
func (c *MemoryCatalog) Resolve(_ context.Context, owner, itemID string) (Item, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	for _, it := range c.items[owner] {
		if it.ID == itemID {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
}

// MemoryScoreStore is an in-memory ScoreStore. Missing records read as
// DefaultDisplay per the ScoreStore contract.
type MemoryScoreStore struct {
	mutex  sync.RWMutex
	scores map[string]int // owner+"/"+itemID -> display
}

// NewMemoryScoreStore creates an empty in-memory score store.
func NewMemoryScoreStore() *MemoryScoreStore {
	return &MemoryScoreStore{scores: make(map[string]int)}
}

func scoreKey(owner, itemID string) string {
	return owner + "/" + itemID
}

// Get returns the stored display score or DefaultDisplay.
func (s *MemoryScoreStore) Get(_ context.Context, owner, itemID string) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if display, ok := s.scores[scoreKey(owner, itemID)]; ok {
		return display, nil
	}
	return DefaultDisplay, nil
}

// Put overwrites the display score for the pair.
func (s *MemoryScoreStore) Put(_ context.Context, owner, itemID string, display int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.scores[scoreKey(owner, itemID)] = ClampDisplay(display)
	return nil
}

// MemorySnapshotStore is an in-memory append-only SnapshotStore.
type MemorySnapshotStore struct {
	mutex sync.RWMutex
	log   []Snapshot
}

// NewMemorySnapshotStore creates an empty in-memory snapshot store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

// Append adds one snapshot to the log.
func (s *MemorySnapshotStore) Append(_ context.Context, snap Snapshot) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.log = append(s.log, snap)
	return nil
}

// Range returns all snapshots matching the query in append order.
func (s *MemorySnapshotStore) Range(_ context.Context, q SnapshotQuery) ([]Snapshot, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var out []Snapshot
	for _, snap := range s.log {
		if q.Matches(snap) {
			out = append(out, snap)
		}
	}
	return out, nil
}

// Len returns the total number of snapshots in the log.
func (s *MemorySnapshotStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.log)
}
