package trend

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingspham/MovieRanker-sub001/pkg/store"
)

type failingSnapshotStore struct{}

func (f *failingSnapshotStore) Append(ctx context.Context, snap store.Snapshot) error {
	return errors.New("disk full")
}

func (f *failingSnapshotStore) Range(ctx context.Context, q store.SnapshotQuery) ([]store.Snapshot, error) {
	return nil, nil
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	item := store.Item{ID: "heat", Title: "Heat", Kind: store.KindMovie}

	t.Run("records a stamped snapshot", func(t *testing.T) {
		snaps := store.NewMemorySnapshotStore()
		rec := NewRecorder(snaps, fixedClock, zerolog.Nop())

		rec.Record(ctx, "alice", item, 64)

		got, err := snaps.Range(ctx, store.SnapshotQuery{Owner: "alice"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "heat", got[0].ItemID)
		assert.Equal(t, "Heat", got[0].Title)
		assert.Equal(t, store.KindMovie, got[0].Kind)
		assert.Equal(t, 64, got[0].Score)
		assert.Equal(t, testNow, got[0].Timestamp)
	})

	t.Run("append failure is swallowed", func(t *testing.T) {
		rec := NewRecorder(&failingSnapshotStore{}, fixedClock, zerolog.Nop())

		assert.NotPanics(t, func() {
			rec.Record(ctx, "alice", item, 64)
		})
	})
}
