// Package store defines the data model and persistence contracts for the
// ranking engine: watched items, per-owner preference scores, and the
// append-only score snapshot log. It ships three interchangeable backends
// (in-memory, JSONL journal, BadgerDB) behind the same narrow interfaces so
// the engine can be wired with fakes in tests and durable stores in the CLI.
package store

import (
	"context"
	"errors"
	"time"
)

// Error types for store operations
var (
	ErrItemNotFound = errors.New("item not found in catalog")
	ErrStoreClosed  = errors.New("store is closed")
)

// DefaultDisplay is the score assigned to an item the first time it is seen.
const DefaultDisplay = 50

// Display score bounds.
const (
	MinDisplay = 0
	MaxDisplay = 100
)

// Kind categorizes a catalog item.
type Kind string

const (
	KindMovie Kind = "movie"
	KindShow  Kind = "show"
)

// Item is a watched catalog entry. The engine treats it as an identity; title
// and kind exist for presentation and snapshot tagging only.
type Item struct {
	ID    string `json:"id"`    // Stable opaque identifier
	Title string `json:"title"` // Human-readable title (may be empty)
	Kind  Kind   `json:"kind"`  // movie or show
}

// Label returns the item's title, falling back to its ID.
func (it Item) Label() string {
	if it.Title != "" {
		return it.Title
	}
	return it.ID
}

// Snapshot is one immutable record of an item's score at a point in time.
// Snapshots are append-only and never pruned; ordering across records is
// defined only by Timestamp, never by append order.
type Snapshot struct {
	Owner     string    `json:"owner"`     // Owning user
	ItemID    string    `json:"item_id"`   // Item the score belongs to
	Title     string    `json:"title"`     // Item title at snapshot time
	Kind      Kind      `json:"kind"`      // Item kind at snapshot time
	Score     int       `json:"score"`     // Display score after the change
	Timestamp time.Time `json:"timestamp"` // When the score change happened
}

// SnapshotQuery filters a snapshot range scan. Since is inclusive, Until is
// exclusive; a zero Until means "no upper bound". An empty Kind matches all
// kinds.
type SnapshotQuery struct {
	Owner string    // Required owner filter
	Since time.Time // Window start (inclusive)
	Until time.Time // Window end (exclusive, zero = open)
	Kind  Kind      // Optional kind filter ("" = any)
}

// Matches reports whether a snapshot satisfies the query.
func (q SnapshotQuery) Matches(s Snapshot) bool {
	if s.Owner != q.Owner {
		return false
	}
	if q.Kind != "" && s.Kind != q.Kind {
		return false
	}
	if s.Timestamp.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && !s.Timestamp.Before(q.Until) {
		return false
	}
	return true
}

// Catalog enumerates the items an owner has marked watched. It is supplied by
// an external collaborator; the engine only reads from it.
type Catalog interface {
	// Watched returns all items in "watched" state for the owner.
	Watched(ctx context.Context, owner string) ([]Item, error)

	// Resolve returns the catalog entry for an item ID.
	// Returns ErrItemNotFound for unknown IDs.
	Resolve(ctx context.Context, owner, itemID string) (Item, error)
}

// ScoreStore reads and writes per-(owner, item) display scores. A missing
// score is never an error: Get materializes the default and the record is
// created on the next Put. Writes are best-effort last-write-wins.
type ScoreStore interface {
	// Get returns the current display score, or DefaultDisplay if the pair
	// has no record yet.
	Get(ctx context.Context, owner, itemID string) (int, error)

	// Put stores the display score for the pair, overwriting any prior value.
	Put(ctx context.Context, owner, itemID string, display int) error
}

// SnapshotStore appends immutable score snapshots and serves time-window
// range queries over them. Appended records are never updated or deleted.
type SnapshotStore interface {
	// Append adds one snapshot to the log.
	Append(ctx context.Context, snap Snapshot) error

	// Range returns all snapshots matching the query, in unspecified order.
	Range(ctx context.Context, q SnapshotQuery) ([]Snapshot, error)
}

// ClampDisplay forces a display score into [MinDisplay, MaxDisplay].
func ClampDisplay(display int) int {
	if display < MinDisplay {
		return MinDisplay
	}
	if display > MaxDisplay {
		return MaxDisplay
	}
	return display
}
