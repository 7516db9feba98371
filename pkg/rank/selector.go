// Package rank implements the pairwise comparison workflow: pair selection,
// the bounded comparison session state machine, and the engine facade that
// ties them to the score and snapshot stores.
package rank

import (
	"math/rand"
	"time"

	"github.com/kingspham/MovieRanker-sub001/pkg/store"
)

// maxSelectAttempts caps the randomized pair search independent of pool size.
const maxSelectAttempts = 200

// Pair is one comparison matchup. A and B are always distinct items.
type Pair struct {
	A store.Item
	B store.Item
}

// Contains reports whether the pair includes the given item ID.
func (p Pair) Contains(itemID string) bool {
	return p.A.ID == itemID || p.B.ID == itemID
}

// Other returns the pair member that is not itemID.
func (p Pair) Other(itemID string) store.Item {
	if p.A.ID == itemID {
		return p.B
	}
	return p.A
}

// Key returns the pair's canonical key.
func (p Pair) Key() string {
	return PairKey(p.A.ID, p.B.ID)
}

// PairKey builds a canonical unordered key for two item IDs, ordering the IDs
// lexicographically so A-B and B-A collapse to one key.
func PairKey(idA, idB string) string {
	if idA < idB {
		return idA + ":" + idB
	}
	return idB + ":" + idA
}

// PairSelector chooses the next comparison pair from a candidate pool.
// Implementations must never return a pair of identical items and must mark
// the returned pair's canonical key in shown before returning. The boolean is
// false when the pool cannot produce a pair at all.
type PairSelector interface {
	SelectPair(pool []store.Item, scores map[string]int, shown map[string]bool) (Pair, bool)
}

// RandomSelector picks pairs by bounded random sampling, biased toward the
// smallest display-score gap among novel pairs. Comparisons between
// similarly rated items are more informative and feel fairer; the attempt cap
// keeps the cost independent of pool size.
type RandomSelector struct {
	rng *rand.Rand
}

// NewRandomSelector creates a selector with a time-seeded random source.
func NewRandomSelector() *RandomSelector {
	return NewSeededSelector(time.Now().UnixNano())
}

// NewSeededSelector creates a selector with a fixed seed for reproducible
// pair sequences.
func NewSeededSelector(seed int64) *RandomSelector {
	return &RandomSelector{rng: rand.New(rand.NewSource(seed))}
}

// SelectPair samples up to min(200, poolSize^2) random candidate pairs,
// skipping identical items and pairs already shown, and keeps the candidate
// with the smallest absolute score gap. When every sampled pair was already
// shown it falls back deterministically to the first item and the first
// different item in the pool.
func (s *RandomSelector) SelectPair(pool []store.Item, scores map[string]int, shown map[string]bool) (Pair, bool) {
	if len(pool) < 2 {
		return Pair{}, false
	}

	attempts := maxSelectAttempts
	if n := len(pool) * len(pool); n < attempts {
		attempts = n
	}

	var best Pair
	bestGap := -1

	for i := 0; i < attempts; i++ {
		a := pool[s.rng.Intn(len(pool))]
		b := pool[s.rng.Intn(len(pool))]
		if a.ID == b.ID {
			continue
		}
		if shown[PairKey(a.ID, b.ID)] {
			continue
		}

		gap := absInt(scores[a.ID] - scores[b.ID])
		if bestGap < 0 || gap < bestGap {
			best = Pair{A: a, B: b}
			bestGap = gap
		}
	}

	if bestGap < 0 {
		fallback, ok := firstDistinctPair(pool)
		if !ok {
			return Pair{}, false
		}
		best = fallback
	}

	shown[best.Key()] = true
	return best, true
}

// NearestSelector is a deterministic alternative strategy: it scans all pairs
// and picks the unseen pair with the smallest score gap, breaking ties by
// canonical key order.
type NearestSelector struct{}

// NewNearestSelector creates the deterministic nearest-by-score selector.
func NewNearestSelector() *NearestSelector {
	return &NearestSelector{}
}

// SelectPair returns the globally closest unseen pair, or the deterministic
// first-distinct fallback when every pair has been shown.
func (s *NearestSelector) SelectPair(pool []store.Item, scores map[string]int, shown map[string]bool) (Pair, bool) {
	if len(pool) < 2 {
		return Pair{}, false
	}

	var best Pair
	bestGap := -1

	for i := range pool {
		for j := i + 1; j < len(pool); j++ {
			a, b := pool[i], pool[j]
			if a.ID == b.ID || shown[PairKey(a.ID, b.ID)] {
				continue
			}

			gap := absInt(scores[a.ID] - scores[b.ID])
			if bestGap < 0 || gap < bestGap ||
				(gap == bestGap && PairKey(a.ID, b.ID) < best.Key()) {
				best = Pair{A: a, B: b}
				bestGap = gap
			}
		}
	}

	if bestGap < 0 {
		fallback, ok := firstDistinctPair(pool)
		if !ok {
			return Pair{}, false
		}
		best = fallback
	}

	shown[best.Key()] = true
	return best, true
}

// firstDistinctPair returns the first item and the first different item in
// the pool.
func firstDistinctPair(pool []store.Item) (Pair, bool) {
	first := pool[0]
	for _, other := range pool[1:] {
		if other.ID != first.ID {
			return Pair{A: first, B: other}, true
		}
	}
	return Pair{}, false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
