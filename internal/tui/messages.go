package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/local/pdfplanner/internal/watch"
)

// loaderTickMsg runs one thumbnail batch.
type loaderTickMsg struct{}

// extractTickMsg runs one extraction step.
type extractTickMsg struct{}

// openFileMsg loads a file picked outside a prompt, such as a CLI argument.
type openFileMsg struct{ Path string }

// sourceChangedMsg reports a change of the loaded file from w.
type sourceChangedMsg struct {
	Change  watch.Change
	watcher *watch.Watcher
}

func loaderTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return loaderTickMsg{} })
}

func extractTick() tea.Msg { return extractTickMsg{} }

// waitForChange blocks on the next change of w. A closed watcher yields no
// message.
func waitForChange(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return sourceChangedMsg{Change: c, watcher: w}
	}
}
