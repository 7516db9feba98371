// Package tui provides the terminal interface for running a comparison
// session: two item cards side by side, a keystroke to pick the winner, and a
// closing summary of the session's biggest risers and droppers.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/kingspham/MovieRanker-sub001/pkg/rank"
)

// CompareApp drives one comparison session to completion. The engine never
// blocks on the UI; the app simply resumes the session with the user's choice
// each round.
type CompareApp struct {
	app     *tview.Application
	engine  *rank.Engine
	session *rank.Session

	container *tview.Flex
	cardsRow  *tview.Flex
	leftCard  *tview.TextView
	rightCard *tview.TextView
	progress  *tview.TextView
	statusBar *tview.TextView

	current *rank.Pair
	runErr  error
}

// NewCompareApp creates the comparison UI for an already started session.
func NewCompareApp(engine *rank.Engine, session *rank.Session) *CompareApp {
	c := &CompareApp{
		app:       tview.NewApplication(),
		engine:    engine,
		session:   session,
		container: tview.NewFlex(),
		cardsRow:  tview.NewFlex(),
		leftCard:  tview.NewTextView(),
		rightCard: tview.NewTextView(),
		progress:  tview.NewTextView(),
		statusBar: tview.NewTextView(),
	}

	c.setupUI()
	return c
}

// setupUI builds the screen layout.
func (c *CompareApp) setupUI() {
	for i, card := range []*tview.TextView{c.leftCard, c.rightCard} {
		card.SetBorder(true)
		card.SetTitle(fmt.Sprintf(" [%d] ", i+1))
		card.SetWordWrap(true)
		card.SetDynamicColors(true)
		card.SetTextAlign(tview.AlignCenter)
	}
	c.leftCard.SetBorderColor(tcell.ColorBlue)
	c.rightCard.SetBorderColor(tcell.ColorGreen)

	c.cardsRow.SetDirection(tview.FlexColumn).
		AddItem(c.leftCard, 0, 1, false).
		AddItem(c.rightCard, 0, 1, false)

	c.progress.SetBorder(true)
	c.progress.SetTitle(" Progress ")
	c.progress.SetDynamicColors(true)

	c.statusBar.SetDynamicColors(true)
	c.statusBar.SetText("[yellow]1[-]/[yellow]2[-] pick winner    [yellow]q[-] quit")

	c.container.SetDirection(tview.FlexRow).
		AddItem(c.cardsRow, 0, 1, true).
		AddItem(c.progress, 3, 0, false).
		AddItem(c.statusBar, 1, 0, false)

	c.container.SetInputCapture(c.handleInput)
}

// handleInput maps keystrokes to choices.
func (c *CompareApp) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case event.Key() == tcell.KeyEscape, event.Rune() == 'q':
		c.app.Stop()
		return nil
	case event.Rune() == '1', event.Key() == tcell.KeyLeft:
		c.choose(true)
		return nil
	case event.Rune() == '2', event.Key() == tcell.KeyRight:
		c.choose(false)
		return nil
	}
	return event
}

// choose resolves the visible pair and advances the session.
func (c *CompareApp) choose(left bool) {
	if c.current == nil {
		return
	}

	winner := c.current.B
	if left {
		winner = c.current.A
	}

	if err := c.engine.Choose(context.Background(), c.session, winner.ID); err != nil {
		c.runErr = err
		c.app.Stop()
		return
	}
	c.refresh()
}

// refresh pulls the next pair, or stops once the session is finished.
func (c *CompareApp) refresh() {
	c.current = c.engine.CurrentPair(c.session)
	if c.current == nil {
		c.app.Stop()
		return
	}

	c.leftCard.SetText(c.cardText(c.current.A.Label(), c.session.Score(c.current.A.ID)))
	c.rightCard.SetText(c.cardText(c.current.B.Label(), c.session.Score(c.current.B.ID)))

	round := c.session.Round()
	if round > c.session.MaxRounds() {
		round = c.session.MaxRounds()
	}
	c.progress.SetText(fmt.Sprintf("Round [yellow]%d[-] of %d    Pool: %d items",
		round, c.session.MaxRounds(), c.session.PoolSize()))
}

// cardText renders one item card.
func (c *CompareApp) cardText(label string, score int) string {
	return fmt.Sprintf("\n[::b]%s[::-]\n\ncurrent score: [yellow]%d[-]", tview.Escape(label), score)
}

// Run shows the UI until the session finishes or the user quits, then
// returns the session summary. An abandoned session keeps all completed
// rounds' effects; there is no rollback.
func (c *CompareApp) Run() (rank.Summary, error) {
	c.refresh()
	if c.current == nil {
		// Insufficient pool: nothing to show.
		return c.engine.Summary(c.session), nil
	}

	if err := c.app.SetRoot(c.container, true).Run(); err != nil {
		return rank.Summary{}, fmt.Errorf("terminal UI failed: %w", err)
	}
	if c.runErr != nil {
		return rank.Summary{}, c.runErr
	}

	return c.engine.Summary(c.session), nil
}

// FormatSummary renders a session summary for plain terminal output.
func FormatSummary(summary rank.Summary) string {
	var b strings.Builder

	b.WriteString("Session summary\n")
	if len(summary.Risers) == 0 && len(summary.Droppers) == 0 {
		b.WriteString("  no score changes\n")
		return b.String()
	}

	if len(summary.Risers) > 0 {
		b.WriteString("  Risers:\n")
		for _, entry := range summary.Risers {
			fmt.Fprintf(&b, "    %-40s +%d\n", entry.Item.Label(), entry.Delta)
		}
	}
	if len(summary.Droppers) > 0 {
		b.WriteString("  Droppers:\n")
		for _, entry := range summary.Droppers {
			fmt.Fprintf(&b, "    %-40s %d\n", entry.Item.Label(), entry.Delta)
		}
	}
	return b.String()
}
