package rank

import (
	"errors"
	"sort"

	"github.com/kingspham/MovieRanker-sub001/pkg/store"
)

// Error types for session operations
var (
	ErrSessionFinished = errors.New("session is finished")
	ErrNoActivePair    = errors.New("no pair is awaiting a choice")
	ErrWinnerNotInPair = errors.New("chosen winner is not part of the current pair")
)

// DefaultMaxRounds bounds a comparison session.
const DefaultMaxRounds = 7

// State is the comparison session lifecycle position.
type State int

const (
	// StatePreparing assembles the candidate pool.
	StatePreparing State = iota
	// StateAwaitingChoice holds a selected pair and waits on the user. This
	// is the engine's only suspension point; no timeout is enforced.
	StateAwaitingChoice
	// StateUpdating applies a choice: rating update, persistence, snapshots.
	StateUpdating
	// StateFinished means the round budget is spent or the pool was too
	// small. Only the summary remains.
	StateFinished
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StatePreparing:
		return "preparing"
	case StateAwaitingChoice:
		return "awaiting-choice"
	case StateUpdating:
		return "updating"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Delta is one per-round score movement for one participant. Winner entries
// carry a positive value, loser entries a negative one; an item compared in
// several rounds accumulates several entries.
type Delta struct {
	Item  store.Item
	Value int
}

// Session is the state of one bounded comparison run. It is created by
// Engine.StartSession, mutated through Engine.Choose, and discarded once its
// summary is consumed; it is never persisted.
//
// Sessions are not safe for concurrent use: the engine assumes a single
// active session per owner with single-threaded access, per the stores'
// last-write-wins semantics.
type Session struct {
	id    string
	owner string

	state     State
	round     int // 1-based; advances once per completed choice
	maxRounds int

	pool    []store.Item
	scores  map[string]int  // current display score per pool item
	shown   map[string]bool // canonical pair keys already presented
	current *Pair

	deltas []Delta
}

// ID returns the session's opaque handle value.
func (s *Session) ID() string { return s.id }

// Owner returns the owner the session ranks for.
func (s *Session) Owner() string { return s.owner }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Round returns the 1-based number of the round in progress. After the final
// choice it is maxRounds+1.
func (s *Session) Round() int { return s.round }

// MaxRounds returns the session's round budget.
func (s *Session) MaxRounds() int { return s.maxRounds }

// PoolSize returns the number of candidate items.
func (s *Session) PoolSize() int { return len(s.pool) }

// Score returns the session's view of an item's current display score.
func (s *Session) Score(itemID string) int {
	if display, ok := s.scores[itemID]; ok {
		return display
	}
	return store.DefaultDisplay
}

// SummaryEntry is one aggregated per-item movement in a session summary.
type SummaryEntry struct {
	Item  store.Item
	Delta int
}

// Summary splits the session's net per-item movements into the top risers
// and droppers.
type Summary struct {
	Risers   []SummaryEntry // positive deltas, largest first, at most 5
	Droppers []SummaryEntry // negative deltas, most negative first, at most 5
}

// summaryTopN caps each side of the session summary.
const summaryTopN = 5

// Summary aggregates the accumulated per-round deltas: entries are summed
// per item, then split into risers (positive, descending) and droppers
// (negative, most negative first), five each. Items whose movements cancel
// out to zero appear on neither side.
func (s *Session) Summary() Summary {
	totals := make(map[string]int)
	items := make(map[string]store.Item)
	order := make([]string, 0, len(s.deltas))

	for _, d := range s.deltas {
		if _, seen := totals[d.Item.ID]; !seen {
			order = append(order, d.Item.ID)
			items[d.Item.ID] = d.Item
		}
		totals[d.Item.ID] += d.Value
	}

	var risers, droppers []SummaryEntry
	for _, id := range order {
		entry := SummaryEntry{Item: items[id], Delta: totals[id]}
		switch {
		case entry.Delta > 0:
			risers = append(risers, entry)
		case entry.Delta < 0:
			droppers = append(droppers, entry)
		}
	}

	sort.SliceStable(risers, func(i, j int) bool {
		if risers[i].Delta != risers[j].Delta {
			return risers[i].Delta > risers[j].Delta
		}
		return risers[i].Item.Label() < risers[j].Item.Label()
	})
	sort.SliceStable(droppers, func(i, j int) bool {
		if droppers[i].Delta != droppers[j].Delta {
			return droppers[i].Delta < droppers[j].Delta
		}
		return droppers[i].Item.Label() < droppers[j].Item.Label()
	})

	if len(risers) > summaryTopN {
		risers = risers[:summaryTopN]
	}
	if len(droppers) > summaryTopN {
		droppers = droppers[:summaryTopN]
	}

	return Summary{Risers: risers, Droppers: droppers}
}
