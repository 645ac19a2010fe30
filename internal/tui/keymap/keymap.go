// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help toggles the full help.
	Help key.Binding

	// Back leaves the viewer or a prompt, or cancels a running extraction.
	Back key.Binding

	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Toggle flips the selection of the page under the cursor.
	Toggle    key.Binding
	SelectAll key.Binding
	Clear     key.Binding
	// Range prompts for a page range that replaces the selection.
	Range key.Binding

	First10   key.Binding
	Last10    key.Binding
	FirstHalf key.Binding
	All       key.Binding

	RotateCW  key.Binding
	RotateCCW key.Binding

	// View opens the page under the cursor in the viewer.
	View    key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding

	// Bigger and Smaller change the thumbnail size of the grid.
	Bigger  key.Binding
	Smaller key.Binding

	Extract    key.Binding
	Open       key.Binding
	OpenOutput key.Binding
	Theme      key.Binding

	// Confirm accepts a prompt.
	Confirm key.Binding
	// Yes, No and Unique answer the overwrite question.
	Yes    key.Binding
	No     key.Binding
	Unique key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back/cancel"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first page"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last page"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		Range: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "select range"),
		),
		First10: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "first 10"),
		),
		Last10: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "last 10"),
		),
		FirstHalf: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "first half"),
		),
		All: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "all pages"),
		),
		RotateCW: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rotate right"),
		),
		RotateCCW: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "rotate left"),
		),
		View: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view page"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		Bigger: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "bigger thumbnails"),
		),
		Smaller: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "smaller thumbnails"),
		),
		Extract: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "extract"),
		),
		Open: key.NewBinding(
			key.WithKeys("f", "ctrl+o"),
			key.WithHelp("f", "open file"),
		),
		OpenOutput: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open output folder"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "overwrite"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "back"),
		),
		Unique: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "keep both"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.RotateCW, k.View, k.Extract, k.Open, k.Help, k.Quit}
}

// FullHelp returns all grid bindings, grouped in columns.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Toggle, k.SelectAll, k.Clear, k.Range, k.First10, k.Last10, k.FirstHalf, k.All},
		{k.RotateCW, k.RotateCCW, k.View, k.Bigger, k.Smaller, k.Theme},
		{k.Extract, k.Open, k.OpenOutput, k.Back, k.Help, k.Quit},
	}
}

// ViewerHelp returns the bindings shown while viewing a page.
func (k *KeyMap) ViewerHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Left, k.Right, k.RotateCW, k.Toggle, k.Back}
}

// PromptHelp returns the bindings shown while a prompt is open.
func (k *KeyMap) PromptHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Back}
}

// ConfirmHelp returns the bindings of the overwrite question.
func (k *KeyMap) ConfirmHelp() []key.Binding {
	return []key.Binding{k.Yes, k.Unique, k.No}
}

// Matches checks if a key string matches any key in the binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
