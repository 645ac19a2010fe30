package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/local/pdfplanner/internal/extract"
	"github.com/local/pdfplanner/internal/gridload"
	"github.com/local/pdfplanner/internal/imagerender"
	"github.com/local/pdfplanner/internal/reveal"
	"github.com/local/pdfplanner/internal/session"
	"github.com/local/pdfplanner/internal/tui"
)

func runTUI(_ *cobra.Command, o *options, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("panic in TUI")
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	cfg := o.cfg
	store := o.prefs()

	// temp files left by an interrupted extraction
	if n := extract.SweepTemps(store.LastOutputDir(), cfg.Extract.TempMaxAge); n > 0 {
		log.Info().Int("removed", n).Msg("removed stale extraction temp files")
	}

	renderer := imagerender.NewPageRenderer()
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Warn().Err(err).Msg("closing renderer")
		}
	}()

	sess := session.New(session.Deps{
		Renderer: renderer,
		Prefs:    store,
		Revealer: reveal.New(),
	}, session.Options{
		Loader: gridload.Options{
			Width:     cfg.Thumbs.Width,
			BatchSize: cfg.Thumbs.BatchSize,
			Lookahead: cfg.Thumbs.Lookahead,
		},
	})

	opts := tui.Options{
		Prefs:         store,
		ThumbWidth:    cfg.Thumbs.Width,
		Tick:          cfg.Thumbs.Tick,
		Watch:         cfg.Watch.Enabled,
		WatchDebounce: cfg.Watch.Debounce,
	}
	if len(args) == 1 {
		opts.File = args[0]
	}

	app := tui.NewApp(sess, opts)
	defer app.Close()

	log.Info().Str("version", version).Msg("starting terminal UI")

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
