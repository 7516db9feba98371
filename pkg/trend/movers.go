package trend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kingspham/MovieRanker-sub001/pkg/store"
)

// Defaults for mover queries.
const (
	DefaultWindowDays = 7
	DefaultTopN       = 6
)

// Mover is an item whose score changed within the query window. Delta is the
// chronologically last in-window score minus the first.
type Mover struct {
	ItemID string     `json:"item_id"`
	Title  string     `json:"title"`
	Kind   store.Kind `json:"kind"`
	Delta  int        `json:"delta"`
}

// Label returns the mover's title, falling back to its item ID.
func (m Mover) Label() string {
	if m.Title != "" {
		return m.Title
	}
	return m.ItemID
}

// Aggregator computes top movers from the snapshot log.
type Aggregator struct {
	snapshots store.SnapshotStore
	clock     func() time.Time
}

// NewAggregator creates a trend aggregator. A nil clock defaults to time.Now.
func NewAggregator(snapshots store.SnapshotStore, clock func() time.Time) *Aggregator {
	if clock == nil {
		clock = time.Now
	}
	return &Aggregator{snapshots: snapshots, clock: clock}
}

// Movers returns up to topN items with the largest absolute score change over
// the trailing window. kind filters to one item kind when non-empty.
// windowDays and topN fall back to their defaults when non-positive.
//
// An item with exactly one in-window snapshot has delta 0 and still appears
// in the result (ranked last by magnitude); an item with no in-window
// snapshots is absent entirely.
func (a *Aggregator) Movers(ctx context.Context, owner string, kind store.Kind, windowDays, topN int) ([]Mover, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	now := a.clock()
	snaps, err := a.snapshots.Range(ctx, store.SnapshotQuery{
		Owner: owner,
		Since: now.AddDate(0, 0, -windowDays),
		Kind:  kind,
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot range query failed: %w", err)
	}

	// Process in ascending time order: the first snapshot per item sets its
	// early score, every later one overwrites its late score.
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})

	type span struct {
		early int
		late  int
		item  Mover
	}
	spans := make(map[string]*span)
	order := make([]string, 0, len(snaps))

	for _, snap := range snaps {
		sp, seen := spans[snap.ItemID]
		if !seen {
			spans[snap.ItemID] = &span{
				early: snap.Score,
				late:  snap.Score,
				item:  Mover{ItemID: snap.ItemID, Title: snap.Title, Kind: snap.Kind},
			}
			order = append(order, snap.ItemID)
			continue
		}
		sp.late = snap.Score
		sp.item.Title = snap.Title
		sp.item.Kind = snap.Kind
	}

	movers := make([]Mover, 0, len(order))
	for _, id := range order {
		sp := spans[id]
		m := sp.item
		m.Delta = sp.late - sp.early
		movers = append(movers, m)
	}

	sort.SliceStable(movers, func(i, j int) bool {
		di, dj := absInt(movers[i].Delta), absInt(movers[j].Delta)
		if di != dj {
			return di > dj
		}
		return movers[i].ItemID < movers[j].ItemID
	})

	if len(movers) > topN {
		movers = movers[:topN]
	}
	return movers, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
