// Package main provides the movieranker command-line interface: log watched
// movies and shows, run interactive pairwise ranking sessions, and print
// time-windowed trending summaries.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/kingspham/MovieRanker-sub001/pkg/config"
	"github.com/kingspham/MovieRanker-sub001/pkg/logging"
	"github.com/kingspham/MovieRanker-sub001/pkg/rank"
	"github.com/kingspham/MovieRanker-sub001/pkg/store"
	"github.com/kingspham/MovieRanker-sub001/pkg/tui"
)

// Version information - set by build process
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// GlobalOptions defines flags shared by all subcommands.
type GlobalOptions struct {
	Config  string `long:"config" short:"c" description:"Configuration file path"`
	Owner   string `long:"owner" description:"Owner whose library to operate on" default:"default"`
	Verbose bool   `long:"verbose" short:"v" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version information"`
}

func showVersion() error {
	fmt.Printf("movieranker %s (%s)\n", Version, GitCommit)
	return nil
}

// WatchCommand handles 'movieranker watch'.
type WatchCommand struct {
	ID    string `long:"id" description:"Item identifier (defaults to a slug of the title)"`
	Title string `long:"title" short:"t" description:"Item title" required:"true"`
	Kind  string `long:"kind" short:"k" description:"Item kind (movie/show)" default:"movie" choice:"movie" choice:"show"`

	Global *GlobalOptions
}

// RankCommand handles 'movieranker rank'.
type RankCommand struct {
	Seed string `long:"seed" description:"Item ID to force into the session pool"`

	Global *GlobalOptions
}

// MoversCommand handles 'movieranker movers'.
type MoversCommand struct {
	Kind string `long:"kind" short:"k" description:"Filter by kind (movie/show)" choice:"movie" choice:"show"`
	Days int    `long:"days" short:"d" description:"Trailing window in days (0 = configured default)"`
	Top  int    `long:"top" short:"n" description:"Result count (0 = configured default)"`

	Global *GlobalOptions
}

// ListCommand handles 'movieranker list'.
type ListCommand struct {
	Global *GlobalOptions
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "movieranker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	global := &GlobalOptions{}
	parser := flags.NewParser(global, flags.Default)
	parser.Usage = "[OPTIONS] COMMAND [COMMAND-OPTIONS]"

	watchCmd := &WatchCommand{Global: global}
	rankCmd := &RankCommand{Global: global}
	moversCmd := &MoversCommand{Global: global}
	listCmd := &ListCommand{Global: global}

	parser.AddCommand("watch", "Mark a movie or show as watched", "", watchCmd)
	parser.AddCommand("rank", "Run an interactive comparison session", "", rankCmd)
	parser.AddCommand("movers", "Show the biggest score movers", "", moversCmd)
	parser.AddCommand("list", "List watched items with current scores", "", listCmd)

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if ok := asFlagsError(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		os.Exit(1)
	}
	return nil
}

func asFlagsError(err error, target **flags.Error) bool {
	fe, ok := err.(*flags.Error)
	if ok {
		*target = fe
	}
	return ok
}

// app bundles the wired application services plus their teardown hooks.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	catalog watchableCatalog
	scores  store.ScoreStore
	engine  *rank.Engine
	closers []func() error
}

// watchableCatalog is the CLI-facing catalog: the engine's read contract plus
// the write used by the watch command.
type watchableCatalog interface {
	store.Catalog
	MarkWatched(ctx context.Context, owner string, item store.Item) error
}

// bootstrap loads configuration, builds the logger, opens the configured
// store backend, and constructs the engine.
func bootstrap(global *GlobalOptions) (*app, error) {
	cfg, err := config.Load(global.Config)
	if err != nil {
		return nil, err
	}
	if global.Verbose {
		cfg.LogLevel = "debug"
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	a := &app{cfg: cfg, log: log}

	var scores store.ScoreStore
	var snapshots store.SnapshotStore

	switch cfg.Store {
	case config.StoreBadger:
		db, err := store.OpenBadger(filepath.Join(cfg.DataDir, "badger"), log)
		if err != nil {
			return nil, err
		}
		snapStore, err := store.NewBadgerSnapshotStore(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.catalog = store.NewBadgerCatalog(db)
		scores = store.NewBadgerScoreStore(db)
		snapshots = snapStore
		a.closers = append(a.closers, snapStore.Close, db.Close)

	case config.StoreJournal:
		journal, err := store.OpenSnapshotJournal(filepath.Join(cfg.DataDir, "snapshots.jsonl"))
		if err != nil {
			return nil, err
		}
		a.catalog = store.NewMemoryCatalog()
		scores = store.NewMemoryScoreStore()
		snapshots = journal
		a.closers = append(a.closers, journal.Close)

	case config.StoreMemory:
		a.catalog = store.NewMemoryCatalog()
		scores = store.NewMemoryScoreStore()
		snapshots = store.NewMemorySnapshotStore()
	}

	a.scores = scores

	engine, err := rank.NewEngine(a.catalog, scores, snapshots, rank.Config{
		KFactor:   cfg.KFactor,
		MaxRounds: cfg.MaxRounds,
		Logger:    log,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.engine = engine

	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("store close failed")
		}
	}
}

// Execute implements the Command interface for WatchCommand.
func (c *WatchCommand) Execute(_ []string) error {
	if c.Global.Version {
		return showVersion()
	}

	a, err := bootstrap(c.Global)
	if err != nil {
		return err
	}
	defer a.close()

	id := c.ID
	if id == "" {
		id = slugify(c.Title)
	}

	item := store.Item{ID: id, Title: c.Title, Kind: store.Kind(c.Kind)}
	if err := a.catalog.MarkWatched(context.Background(), c.Global.Owner, item); err != nil {
		return fmt.Errorf("failed to mark item watched: %w", err)
	}

	fmt.Printf("watched: %s (%s, id=%s)\n", item.Title, item.Kind, item.ID)
	return nil
}

// Execute implements the Command interface for RankCommand.
func (c *RankCommand) Execute(_ []string) error {
	if c.Global.Version {
		return showVersion()
	}

	a, err := bootstrap(c.Global)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()

	var seed *store.Item
	if c.Seed != "" {
		item, err := a.catalog.Resolve(ctx, c.Global.Owner, c.Seed)
		if err != nil {
			return fmt.Errorf("seed item: %w", err)
		}
		seed = &item
	}

	session, err := a.engine.StartSession(ctx, c.Global.Owner, nil, seed)
	if err != nil {
		return err
	}

	if session.State() == rank.StateFinished {
		fmt.Println("not enough watched items to compare; add more with 'movieranker watch'")
		return nil
	}

	summary, err := tui.NewCompareApp(a.engine, session).Run()
	if err != nil {
		return err
	}

	fmt.Print(tui.FormatSummary(summary))
	return nil
}

// Execute implements the Command interface for MoversCommand.
func (c *MoversCommand) Execute(_ []string) error {
	if c.Global.Version {
		return showVersion()
	}

	a, err := bootstrap(c.Global)
	if err != nil {
		return err
	}
	defer a.close()

	days := c.Days
	if days <= 0 {
		days = a.cfg.WindowDays
	}
	top := c.Top
	if top <= 0 {
		top = a.cfg.TopN
	}

	movers, err := a.engine.Movers(context.Background(), c.Global.Owner, store.Kind(c.Kind), days, top)
	if err != nil {
		return err
	}

	if len(movers) == 0 {
		fmt.Printf("no score changes in the last %d days\n", days)
		return nil
	}

	fmt.Printf("Top movers, last %d days:\n", days)
	for _, m := range movers {
		fmt.Printf("  %-40s %-5s %+d\n", m.Label(), m.Kind, m.Delta)
	}
	return nil
}

// Execute implements the Command interface for ListCommand.
func (c *ListCommand) Execute(_ []string) error {
	if c.Global.Version {
		return showVersion()
	}

	a, err := bootstrap(c.Global)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	items, err := a.catalog.Watched(ctx, c.Global.Owner)
	if err != nil {
		return fmt.Errorf("failed to list watched items: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("no watched items; add one with 'movieranker watch --title ...'")
		return nil
	}

	for _, item := range items {
		score, err := a.scores.Get(ctx, c.Global.Owner, item.ID)
		if err != nil {
			return fmt.Errorf("failed to read score for %s: %w", item.ID, err)
		}
		fmt.Printf("  %-40s %-5s %3d\n", item.Label(), item.Kind, score)
	}
	return nil
}

// slugify derives a stable item ID from a title.
func slugify(title string) string {
	out := make([]rune, 0, len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ', r == '-', r == '_':
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		return "item"
	}
	return string(out)
}
