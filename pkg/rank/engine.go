package rank

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kingspham/MovieRanker-sub001/pkg/rating"
	"github.com/kingspham/MovieRanker-sub001/pkg/store"
	"github.com/kingspham/MovieRanker-sub001/pkg/trend"
)

// Config holds tunables for the ranking engine. Zero values fall back to the
// documented defaults.
type Config struct {
	KFactor   float64      // Rating step per comparison (default 28)
	MaxRounds int          // Rounds per session (default 7)
	Selector  PairSelector // Pair selection strategy (default RandomSelector)
	Clock     func() time.Time
	Logger    zerolog.Logger
}

// Engine orchestrates comparison sessions and trend queries over injected
// stores. The score store, snapshot store, and catalog are explicit
// dependencies rather than ambient singletons so tests can wire in-memory
// fakes.
type Engine struct {
	catalog  store.Catalog
	scores   store.ScoreStore
	recorder *trend.Recorder
	trends   *trend.Aggregator
	selector PairSelector

	k         float64
	maxRounds int
	clock     func() time.Time
	log       zerolog.Logger

	mutex    sync.Mutex
	sessions map[string]*Session
}

// NewEngine creates an engine over the given collaborators.
func NewEngine(catalog store.Catalog, scores store.ScoreStore, snapshots store.SnapshotStore, cfg Config) (*Engine, error) {
	if cfg.KFactor < 0 {
		return nil, rating.ErrInvalidKFactor
	}
	if cfg.KFactor == 0 {
		cfg.KFactor = rating.DefaultKFactor
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.Selector == nil {
		cfg.Selector = NewRandomSelector()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Engine{
		catalog:   catalog,
		scores:    scores,
		recorder:  trend.NewRecorder(snapshots, cfg.Clock, cfg.Logger),
		trends:    trend.NewAggregator(snapshots, cfg.Clock),
		selector:  cfg.Selector,
		k:         cfg.KFactor,
		maxRounds: cfg.MaxRounds,
		clock:     cfg.Clock,
		log:       cfg.Logger,
		sessions:  make(map[string]*Session),
	}, nil
}

// StartSession assembles the candidate pool and returns a new session. When
// pool is nil the owner's watched items are loaded from the catalog. seed,
// if non-nil, is added to the pool unless already present. A pool smaller
// than two items yields a session that is already Finished with an empty
// summary; that is a normal terminal outcome, not an error.
func (e *Engine) StartSession(ctx context.Context, owner string, pool []store.Item, seed *store.Item) (*Session, error) {
	if pool == nil {
		watched, err := e.catalog.Watched(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to load watched items: %w", err)
		}
		pool = watched
	}

	candidates := make([]store.Item, len(pool))
	copy(candidates, pool)

	if seed != nil {
		present := false
		for _, it := range candidates {
			if it.ID == seed.ID {
				present = true
				break
			}
		}
		if !present {
			candidates = append(candidates, *seed)
		}
	}

	s := &Session{
		id:        uuid.NewString(),
		owner:     owner,
		state:     StatePreparing,
		round:     1,
		maxRounds: e.maxRounds,
		pool:      candidates,
		scores:    make(map[string]int, len(candidates)),
		shown:     make(map[string]bool),
	}

	if len(candidates) < 2 {
		s.state = StateFinished
	} else {
		for _, it := range candidates {
			display, err := e.scores.Get(ctx, owner, it.ID)
			if err != nil {
				e.log.Warn().Err(err).Str("owner", owner).Str("item", it.ID).
					Msg("score read failed; using default")
				display = store.DefaultDisplay
			}
			s.scores[it.ID] = display
		}
		s.state = StateAwaitingChoice
	}

	e.mutex.Lock()
	e.sessions[s.id] = s
	e.mutex.Unlock()

	e.log.Debug().Str("session", s.id).Str("owner", owner).
		Int("pool", len(candidates)).Msg("session started")

	return s, nil
}

// Session returns a previously started session by handle.
func (e *Engine) Session(id string) (*Session, bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	s, ok := e.sessions[id]
	return s, ok
}

// CurrentPair returns the pair awaiting the user's choice, selecting one if
// the session just advanced. nil signals an insufficient pool or a finished
// session. Repeated calls without an intervening Choose return the same
// pair.
func (e *Engine) CurrentPair(s *Session) *Pair {
	if s.state != StateAwaitingChoice {
		return nil
	}
	if s.current != nil {
		pair := *s.current
		return &pair
	}

	pair, ok := e.selector.SelectPair(s.pool, s.scores, s.shown)
	if !ok {
		s.state = StateFinished
		return nil
	}
	s.current = &pair

	out := pair
	return &out
}

// Choose resolves the current pair with winnerID and advances exactly one
// round. Score and snapshot writes are independent best-effort operations:
// either may fail, the failure is logged, and the in-memory session still
// advances. There is no rollback across rounds; abandoning a session keeps
// all completed rounds' effects.
func (e *Engine) Choose(ctx context.Context, s *Session, winnerID string) error {
	if s.state == StateFinished {
		return ErrSessionFinished
	}
	if s.state != StateAwaitingChoice || s.current == nil {
		return ErrNoActivePair
	}
	if !s.current.Contains(winnerID) {
		return fmt.Errorf("%w: %s", ErrWinnerNotInPair, winnerID)
	}

	s.state = StateUpdating

	var winner store.Item
	if s.current.A.ID == winnerID {
		winner = s.current.A
	} else {
		winner = s.current.B
	}
	loser := s.current.Other(winnerID)

	oldWinner := s.Score(winner.ID)
	oldLoser := s.Score(loser.ID)

	newWinner, newLoser, err := rating.Update(oldWinner, oldLoser, e.k)
	if err != nil {
		// K is validated at construction; only a programming error lands here.
		s.state = StateAwaitingChoice
		return err
	}

	s.scores[winner.ID] = newWinner
	s.scores[loser.ID] = newLoser

	if err := e.scores.Put(ctx, s.owner, winner.ID, newWinner); err != nil {
		e.log.Warn().Err(err).Str("owner", s.owner).Str("item", winner.ID).
			Msg("score write failed; session continues")
	}
	if err := e.scores.Put(ctx, s.owner, loser.ID, newLoser); err != nil {
		e.log.Warn().Err(err).Str("owner", s.owner).Str("item", loser.ID).
			Msg("score write failed; session continues")
	}

	s.deltas = append(s.deltas,
		Delta{Item: winner, Value: newWinner - oldWinner},
		Delta{Item: loser, Value: newLoser - oldLoser},
	)

	e.recorder.Record(ctx, s.owner, winner, newWinner)
	e.recorder.Record(ctx, s.owner, loser, newLoser)

	s.current = nil
	s.round++
	if s.round <= s.maxRounds {
		s.state = StateAwaitingChoice
	} else {
		s.state = StateFinished
	}

	e.log.Debug().Str("session", s.id).Int("round", s.round-1).
		Str("winner", winner.ID).Str("loser", loser.ID).
		Int("winner_score", newWinner).Int("loser_score", newLoser).
		Msg("round applied")

	return nil
}

// Summary returns the session's aggregated movement summary. It is valid at
// any point; callers normally read it once the session is Finished and then
// drop the session.
func (e *Engine) Summary(s *Session) Summary {
	summary := s.Summary()

	e.mutex.Lock()
	delete(e.sessions, s.id)
	e.mutex.Unlock()

	return summary
}

// Movers returns the owner's top score movers over the trailing window. kind
// filters to one item kind when non-empty; windowDays and topN fall back to
// the trend package defaults when non-positive.
func (e *Engine) Movers(ctx context.Context, owner string, kind store.Kind, windowDays, topN int) ([]trend.Mover, error) {
	return e.trends.Movers(ctx, owner, kind, windowDays, topN)
}
