// Package trend records score snapshots after every session-driven change and
// aggregates them into time-windowed "top movers" summaries.
package trend

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kingspham/MovieRanker-sub001/pkg/store"
)

// Recorder appends one immutable snapshot per score mutation. It is a pure
// write sink: fire-and-forget, no read path. Append failures are logged and
// swallowed; the caller's session state advances regardless.
type Recorder struct {
	snapshots store.SnapshotStore
	clock     func() time.Time
	log       zerolog.Logger
}

// NewRecorder creates a snapshot recorder. A nil clock defaults to time.Now.
func NewRecorder(snapshots store.SnapshotStore, clock func() time.Time, log zerolog.Logger) *Recorder {
	if clock == nil {
		clock = time.Now
	}
	return &Recorder{snapshots: snapshots, clock: clock, log: log}
}

// Record appends a snapshot of the item's score as of now.
func (r *Recorder) Record(ctx context.Context, owner string, item store.Item, score int) {
	snap := store.Snapshot{
		Owner:     owner,
		ItemID:    item.ID,
		Title:     item.Title,
		Kind:      item.Kind,
		Score:     score,
		Timestamp: r.clock(),
	}

	if err := r.snapshots.Append(ctx, snap); err != nil {
		r.log.Warn().
			Err(err).
			Str("owner", owner).
			Str("item", item.ID).
			Int("score", score).
			Msg("snapshot append failed; continuing")
	}
}
