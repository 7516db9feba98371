package rank

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingspham/MovieRanker-sub001/pkg/store"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "preparing", StatePreparing.String())
	assert.Equal(t, "awaiting-choice", StateAwaitingChoice.String())
	assert.Equal(t, "updating", StateUpdating.String())
	assert.Equal(t, "finished", StateFinished.String())
	assert.Equal(t, "unknown", State(99).String())
}

func deltaFor(id string, values ...int) []Delta {
	item := store.Item{ID: id, Title: id, Kind: store.KindMovie}
	out := make([]Delta, len(values))
	for i, v := range values {
		out[i] = Delta{Item: item, Value: v}
	}
	return out
}

func TestSessionSummary(t *testing.T) {
	t.Run("empty session", func(t *testing.T) {
		s := &Session{}
		summary := s.Summary()
		assert.Empty(t, summary.Risers)
		assert.Empty(t, summary.Droppers)
	})

	t.Run("sums per item across rounds", func(t *testing.T) {
		s := &Session{}
		s.deltas = append(s.deltas, deltaFor("up", 14, 5, 1)...)
		s.deltas = append(s.deltas, deltaFor("down", -14, -23, -13)...)

		summary := s.Summary()
		require.Len(t, summary.Risers, 1)
		require.Len(t, summary.Droppers, 1)
		assert.Equal(t, 20, summary.Risers[0].Delta)
		assert.Equal(t, -50, summary.Droppers[0].Delta)
	})

	t.Run("cancelled movement appears on neither side", func(t *testing.T) {
		s := &Session{}
		s.deltas = append(s.deltas, deltaFor("wash", 14, -14)...)
		s.deltas = append(s.deltas, deltaFor("up", 7)...)

		summary := s.Summary()
		require.Len(t, summary.Risers, 1)
		assert.Equal(t, "up", summary.Risers[0].Item.ID)
		assert.Empty(t, summary.Droppers)
	})

	t.Run("risers descend and droppers ascend", func(t *testing.T) {
		s := &Session{}
		s.deltas = append(s.deltas, deltaFor("small-up", 3)...)
		s.deltas = append(s.deltas, deltaFor("big-up", 21)...)
		s.deltas = append(s.deltas, deltaFor("small-down", -2)...)
		s.deltas = append(s.deltas, deltaFor("big-down", -18)...)

		summary := s.Summary()
		require.Len(t, summary.Risers, 2)
		require.Len(t, summary.Droppers, 2)
		assert.Equal(t, "big-up", summary.Risers[0].Item.ID)
		assert.Equal(t, "small-up", summary.Risers[1].Item.ID)
		assert.Equal(t, "big-down", summary.Droppers[0].Item.ID)
		assert.Equal(t, "small-down", summary.Droppers[1].Item.ID)
	})

	t.Run("each side truncates to five", func(t *testing.T) {
		s := &Session{}
		for i := 1; i <= 8; i++ {
			s.deltas = append(s.deltas, deltaFor(fmt.Sprintf("up-%d", i), i)...)
			s.deltas = append(s.deltas, deltaFor(fmt.Sprintf("down-%d", i), -i)...)
		}

		summary := s.Summary()
		require.Len(t, summary.Risers, 5)
		require.Len(t, summary.Droppers, 5)
		assert.Equal(t, 8, summary.Risers[0].Delta)
		assert.Equal(t, 4, summary.Risers[4].Delta, "smallest three risers cut")
		assert.Equal(t, -8, summary.Droppers[0].Delta)
		assert.Equal(t, -4, summary.Droppers[4].Delta)
	})
}

func TestSessionScoreDefault(t *testing.T) {
	s := &Session{scores: map[string]int{"known": 72}}
	assert.Equal(t, 72, s.Score("known"))
	assert.Equal(t, store.DefaultDisplay, s.Score("unknown"))
}
