// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme names accepted by ByName.
const (
	Dark  = "dark"
	Light = "light"
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	Name string

	// Primary is the main accent colour, used for the cursor.
	Primary lipgloss.Color

	// Secondary marks selected pages.
	Secondary lipgloss.Color

	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color

	// Paper fills thumbnail tiles that have not been rendered yet.
	Paper lipgloss.Color

	// Bar is the status bar background.
	Bar lipgloss.Color
}

// DarkTheme returns the dark palette.
func DarkTheme() *Theme {
	return &Theme{
		Name:       Dark,
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Background: lipgloss.Color("#1E1E2E"),
		Foreground: lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Success:    lipgloss.Color("#A6E3A1"),
		Warning:    lipgloss.Color("#F9E2AF"),
		Error:      lipgloss.Color("#F38BA8"),
		Border:     lipgloss.Color("#45475A"),
		Paper:      lipgloss.Color("#313244"),
		Bar:        lipgloss.Color("#181825"),
	}
}

// LightTheme returns the light palette.
func LightTheme() *Theme {
	return &Theme{
		Name:       Light,
		Primary:    lipgloss.Color("#6D28D9"),
		Secondary:  lipgloss.Color("#0891B2"),
		Background: lipgloss.Color("#EFF1F5"),
		Foreground: lipgloss.Color("#4C4F69"),
		Muted:      lipgloss.Color("#8C8FA1"),
		Success:    lipgloss.Color("#40A02B"),
		Warning:    lipgloss.Color("#DF8E1D"),
		Error:      lipgloss.Color("#D20F39"),
		Border:     lipgloss.Color("#BCC0CC"),
		Paper:      lipgloss.Color("#DCE0E8"),
		Bar:        lipgloss.Color("#E6E9EF"),
	}
}

// ByName returns the theme called name, falling back to dark.
func ByName(name string) *Theme {
	if name == Light {
		return LightTheme()
	}
	return DarkTheme()
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// Cell frames an unselected thumbnail; CellCursor, CellSelected and
	// CellBoth frame the cursor page, selected pages, and a selected cursor page.
	Cell         lipgloss.Style
	CellCursor   lipgloss.Style
	CellSelected lipgloss.Style
	CellBoth     lipgloss.Style

	// Badge shows a page's rotation override.
	Badge lipgloss.Style

	// Placeholder fills a tile that is loading or failed to render.
	Placeholder lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DarkTheme()
	}

	cell := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Cell:       cell,
		CellCursor: cell.BorderForeground(theme.Primary),
		CellSelected: cell.
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Secondary),
		CellBoth: cell.
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Primary),

		Badge: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Warning),

		Placeholder: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Paper),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Bar).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
	}
}

// DefaultStyles returns styles with the dark theme.
func DefaultStyles() *Styles {
	return NewStyles(DarkTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
