package rank

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingspham/MovieRanker-sub001/pkg/store"
)

func testPool(n int) []store.Item {
	pool := make([]store.Item, n)
	for i := range pool {
		pool[i] = store.Item{
			ID:    fmt.Sprintf("item-%02d", i),
			Title: fmt.Sprintf("Item %02d", i),
			Kind:  store.KindMovie,
		}
	}
	return pool
}

func flatScores(pool []store.Item, display int) map[string]int {
	scores := make(map[string]int, len(pool))
	for _, it := range pool {
		scores[it.ID] = display
	}
	return scores
}

func TestPairKey(t *testing.T) {
	assert.Equal(t, "a:b", PairKey("a", "b"))
	assert.Equal(t, "a:b", PairKey("b", "a"))
	assert.Equal(t, "x:x", PairKey("x", "x"))

	pair := Pair{A: store.Item{ID: "zed"}, B: store.Item{ID: "alf"}}
	assert.Equal(t, "alf:zed", pair.Key())
}

func TestPairContainsOther(t *testing.T) {
	pair := Pair{
		A: store.Item{ID: "a", Title: "Alpha"},
		B: store.Item{ID: "b", Title: "Beta"},
	}

	assert.True(t, pair.Contains("a"))
	assert.True(t, pair.Contains("b"))
	assert.False(t, pair.Contains("c"))

	assert.Equal(t, "b", pair.Other("a").ID)
	assert.Equal(t, "a", pair.Other("b").ID)
}

func TestRandomSelector(t *testing.T) {
	t.Run("pool too small", func(t *testing.T) {
		s := NewSeededSelector(1)

		_, ok := s.SelectPair(nil, nil, map[string]bool{})
		assert.False(t, ok)

		_, ok = s.SelectPair(testPool(1), nil, map[string]bool{})
		assert.False(t, ok)
	})

	t.Run("never returns identical items", func(t *testing.T) {
		s := NewSeededSelector(42)
		pool := testPool(5)
		scores := flatScores(pool, 50)
		shown := map[string]bool{}

		for i := 0; i < 50; i++ {
			pair, ok := s.SelectPair(pool, scores, shown)
			require.True(t, ok)
			assert.NotEqual(t, pair.A.ID, pair.B.ID)
		}
	})

	t.Run("marks pair as shown", func(t *testing.T) {
		s := NewSeededSelector(7)
		pool := testPool(4)
		shown := map[string]bool{}

		pair, ok := s.SelectPair(pool, flatScores(pool, 50), shown)
		require.True(t, ok)
		assert.True(t, shown[pair.Key()])
	})

	t.Run("prefers the smallest score gap", func(t *testing.T) {
		pool := testPool(4)
		scores := map[string]int{
			"item-00": 10,
			"item-01": 90,
			"item-02": 50,
			"item-03": 52,
		}

		// The sampler is randomized, so assert on the aggregate: across many
		// seeds the 2-point pair must dominate the selections.
		hits := 0
		for seed := int64(0); seed < 100; seed++ {
			s := NewSeededSelector(seed)
			pair, ok := s.SelectPair(pool, scores, map[string]bool{})
			require.True(t, ok)
			if pair.Key() == "item-02:item-03" {
				hits++
			}
		}
		assert.Greater(t, hits, 60, "closest pair chosen in only %d of 100 runs", hits)
	})

	t.Run("avoids already shown pairs", func(t *testing.T) {
		pool := testPool(3)
		scores := flatScores(pool, 50)

		// Two of the three pairs are pre-marked shown; the randomized search
		// should land on the remaining novel pair almost every time.
		hits := 0
		for seed := int64(0); seed < 100; seed++ {
			s := NewSeededSelector(seed)
			shown := map[string]bool{
				PairKey("item-00", "item-01"): true,
				PairKey("item-00", "item-02"): true,
			}
			pair, ok := s.SelectPair(pool, scores, shown)
			require.True(t, ok)
			if pair.Key() == PairKey("item-01", "item-02") {
				hits++
			}
		}
		assert.Greater(t, hits, 60, "novel pair chosen in only %d of 100 runs", hits)
	})

	t.Run("falls back when every pair was shown", func(t *testing.T) {
		s := NewSeededSelector(9)
		pool := testPool(2)
		shown := map[string]bool{PairKey("item-00", "item-01"): true}

		pair, ok := s.SelectPair(pool, flatScores(pool, 50), shown)
		require.True(t, ok, "exhausted novelty still yields the fallback pair")
		assert.Equal(t, "item-00:item-01", pair.Key())
	})

	t.Run("pool of duplicates cannot pair", func(t *testing.T) {
		s := NewSeededSelector(11)
		dup := store.Item{ID: "same", Title: "Same"}
		pool := []store.Item{dup, dup, dup}

		_, ok := s.SelectPair(pool, map[string]int{}, map[string]bool{})
		assert.False(t, ok)
	})
}

func TestNearestSelector(t *testing.T) {
	s := NewNearestSelector()

	t.Run("picks the globally closest pair", func(t *testing.T) {
		pool := testPool(5)
		scores := map[string]int{
			"item-00": 10,
			"item-01": 40,
			"item-02": 41,
			"item-03": 70,
			"item-04": 95,
		}

		pair, ok := s.SelectPair(pool, scores, map[string]bool{})
		require.True(t, ok)
		assert.Equal(t, "item-01:item-02", pair.Key())
	})

	t.Run("ties break by canonical key", func(t *testing.T) {
		pool := testPool(4)
		scores := flatScores(pool, 50)

		pair, ok := s.SelectPair(pool, scores, map[string]bool{})
		require.True(t, ok)
		assert.Equal(t, "item-00:item-01", pair.Key())
	})

	t.Run("walks through all pairs without repeats", func(t *testing.T) {
		pool := testPool(4)
		scores := flatScores(pool, 50)
		shown := map[string]bool{}

		seen := map[string]bool{}
		for i := 0; i < 6; i++ {
			pair, ok := s.SelectPair(pool, scores, shown)
			require.True(t, ok)
			assert.False(t, seen[pair.Key()])
			seen[pair.Key()] = true
		}
		assert.Len(t, seen, 6)
	})
}
