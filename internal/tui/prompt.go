package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/local/pdfplanner/internal/apperr"
	"github.com/local/pdfplanner/internal/fileutil"
	"github.com/local/pdfplanner/internal/session"
	"github.com/local/pdfplanner/internal/tui/keymap"
	"github.com/local/pdfplanner/internal/validate"
)

func newInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 4096
	ti.Width = 60
	return ti
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~"+string(filepath.Separator)) && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

// parseRange reads "a-b" or a single page "a" as a 1-based range.
func parseRange(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, apperr.Invalid("range", apperr.ReasonStartRequired, "Start page is required")
	}
	lo, hi, found := strings.Cut(s, "-")
	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, apperr.Invalid("start", apperr.ReasonStartRequired, "Start page must be a number")
	}
	if !found {
		return start, start, nil
	}
	if strings.TrimSpace(hi) == "" {
		return 0, 0, apperr.Invalid("end", apperr.ReasonEndRequired, "End page is required")
	}
	end, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, apperr.Invalid("end", apperr.ReasonEndRequired, "End page must be a number")
	}
	return start, end, nil
}

// validateOutputName checks the file name part of an output path as it is typed.
func validateOutputName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, string(filepath.Separator)) {
		return apperr.Invalid("filename", apperr.ReasonEmptyName, "Filename cannot be empty")
	}
	return validate.Filename(filepath.Base(s))
}

func (a *App) openPrompt(m mode) tea.Cmd {
	a.mode = m
	a.input = newInput()
	a.confirmPath = ""

	switch m {
	case modeOpen:
		a.input.Prompt = "Open: "
		a.input.Placeholder = "path/to/document.pdf"
		a.input.ShowSuggestions = true
		if a.prefs != nil {
			a.input.SetSuggestions(a.prefs.RecentFiles())
			a.input.SetValue(a.prefs.LastInputDir() + string(filepath.Separator))
		}

	case modeSave:
		a.input.Prompt = "Save as: "
		a.input.Validate = validateOutputName
		doc := a.session.Doc()
		name := fileutil.SuggestName(doc.Path, a.session.Selection().Selected())
		path := validate.EnsurePDFExt(name)
		if a.prefs != nil {
			path = a.prefs.OutputPath(name)
		}
		a.input.SetValue(path)

	case modeRange:
		a.input.Prompt = "Pages: "
		a.input.Placeholder = fmt.Sprintf("1-%d", a.session.Selection().PageCount())
	}

	a.input.CursorEnd()
	return a.input.Focus()
}

func (a *App) closePrompt() {
	a.input.Blur()
	a.mode = modeGrid
	a.confirmPath = ""
}

func (a *App) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch {
	case keymap.Matches(msg.String(), a.keys.Back):
		a.closePrompt()
		return nil
	case keymap.Matches(msg.String(), a.keys.Confirm):
		return a.submitPrompt()
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return cmd
}

func (a *App) submitPrompt() tea.Cmd {
	value := strings.TrimSpace(a.input.Value())

	switch a.mode {
	case modeOpen:
		if value == "" {
			return nil
		}
		path := expandHome(value)
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		a.closePrompt()
		return a.dispatch(session.FileSelected{Path: path})

	case modeRange:
		start, end, err := parseRange(value)
		if err != nil {
			a.setError(err)
			return nil
		}
		eff := a.session.Dispatch(session.RangeChosen{Start: start, End: end})
		if eff.Err != nil {
			a.setError(eff.Err)
			return nil
		}
		a.closePrompt()
		a.setInfo(fmt.Sprintf("Selected pages %d-%d", start, end))
		return a.apply(eff)

	case modeSave:
		if err := validateOutputName(value); err != nil {
			a.setError(err)
			return nil
		}
		path := validate.EnsurePDFExt(expandHome(value))
		if err := validate.OutputPath(path); err != nil {
			a.setError(err)
			return nil
		}
		if _, err := os.Stat(path); err == nil {
			a.mode = modeConfirm
			a.confirmPath = path
			a.input.Blur()
			return nil
		}
		return a.startExtraction(path)
	}
	return nil
}

func (a *App) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch k := msg.String(); {
	case keymap.Matches(k, a.keys.Yes):
		return a.startExtraction(a.confirmPath)
	case keymap.Matches(k, a.keys.Unique):
		return a.startExtraction(fileutil.EnsureUnique(a.confirmPath))
	case keymap.Matches(k, a.keys.No):
		a.mode = modeSave
		a.confirmPath = ""
		return a.input.Focus()
	}
	return nil
}

func (a *App) startExtraction(path string) tea.Cmd {
	eff := a.session.Dispatch(session.ExtractRequested{OutputPath: path})
	if eff.Err != nil {
		// stay in the prompt so the name can be corrected
		a.mode = modeSave
		a.confirmPath = ""
		a.setError(eff.Err)
		return a.input.Focus()
	}
	a.closePrompt()
	a.setInfo("Extracting to " + fileutil.TruncatePath(path, 60))
	return a.apply(eff)
}

func (a *App) promptView() string {
	var lines []string

	if a.mode == modeConfirm {
		lines = append(lines,
			a.styles.Warning.Render("File already exists:"),
			a.styles.Normal.Render(fileutil.TruncatePath(a.confirmPath, max(a.width-4, 20))),
			"",
			a.styles.Muted.Render("y overwrite · u keep both · n back"),
		)
		return a.styles.InputField.Render(strings.Join(lines, "\n"))
	}

	lines = append(lines, a.input.View())
	if err := a.input.Err; err != nil {
		lines = append(lines, a.styles.Error.Render(apperr.UserMessage(err)))
	}

	if a.mode == modeOpen && a.prefs != nil {
		if recent := a.prefs.RecentFiles(); len(recent) > 0 {
			lines = append(lines, "", a.styles.Subtitle.Render("Recent files (tab completes)"))
			for _, f := range recent {
				lines = append(lines, a.recentLine(f))
			}
		}
	}
	return a.styles.InputField.Render(strings.Join(lines, "\n"))
}

func (a *App) recentLine(path string) string {
	line := fileutil.TruncatePath(path, max(a.width-30, 20))
	st, err := os.Stat(path)
	if err != nil {
		return a.styles.Muted.Render(line)
	}
	meta := fmt.Sprintf("%s, %s", fileutil.FormatBytes(st.Size()), fileutil.Ago(st.ModTime()))
	return lipgloss.JoinHorizontal(lipgloss.Top, a.styles.Normal.Render(line), "  ", a.styles.Muted.Render(meta))
}
