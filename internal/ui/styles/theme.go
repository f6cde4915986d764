package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kanban/internal/models"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	// Base colors
	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// UI element colors
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
	Cursor      lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),
	Accent:    lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
	Info:    lipgloss.Color("#7aa2f7"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
	Cursor:      lipgloss.Color("#c0caf5"),
}

// Current holds the active theme
var Current = TokyoNight

// MaxWidth is the maximum content width for the app (classic terminal width)
const MaxWidth = 80

// ContentWidth returns the actual content width to use (min of terminal width and MaxWidth)
func ContentWidth(terminalWidth int) int {
	if terminalWidth > MaxWidth {
		return MaxWidth
	}
	return terminalWidth
}

// CenterView wraps content and centers it horizontally if terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// StatusColor is the accent of a board column
func StatusColor(status models.Status) lipgloss.Color {
	switch status {
	case models.StatusInProgress:
		return Current.Warning
	case models.StatusDone:
		return Current.Success
	}
	return Current.Info
}

// ColumnWidth splits the terminal width across the three board columns
func ColumnWidth(terminalWidth int) int {
	return max((terminalWidth-2)/3, 20)
}

// Styles holds all the pre-computed styles for the UI
type Styles struct {
	// Title bar
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	// Lists
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	// Board columns
	Column       lipgloss.Style
	ColumnFocus  lipgloss.Style
	ColumnTarget lipgloss.Style
	ColumnHeader lipgloss.Style

	// Cards
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	CardLifted   lipgloss.Style
	CardMeta     lipgloss.Style
	Overdue      lipgloss.Style

	// Filter bar
	FilterBar lipgloss.Style
	FilterTag lipgloss.Style

	// Buttons
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	// Input fields
	Input        lipgloss.Style
	InputFocused lipgloss.Style

	// Detail tabs
	Tab       lipgloss.Style
	TabActive lipgloss.Style

	// Help text
	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	// Status bar and banners
	StatusBar   lipgloss.Style
	Banner      lipgloss.Style
	BannerError lipgloss.Style
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current

	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	card := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Border).
		PaddingLeft(1).
		MarginBottom(1)

	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 2),

		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		Column:       column,
		ColumnFocus:  column.BorderForeground(t.BorderFocus),
		ColumnTarget: column.Border(lipgloss.DoubleBorder()).BorderForeground(t.Accent),

		ColumnHeader: lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1),

		Card: card,

		CardSelected: card.
			Foreground(t.Primary).
			Background(t.Selection).
			BorderForeground(t.Primary).
			Bold(true),

		CardLifted: card.
			Foreground(t.Background).
			Background(t.Accent).
			BorderForeground(t.Accent).
			Bold(true),

		CardMeta: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Overdue: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		FilterBar: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),

		FilterTag: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Padding(0, 1),

		Button: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2),

		ButtonFocused: lipgloss.NewStyle().
			Foreground(t.Primary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 2).
			Bold(true),

		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Tab: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 2),

		TabActive: lipgloss.NewStyle().
			Foreground(t.Primary).
			Underline(true).
			Padding(0, 2).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(1, 2),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		StatusBar: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		Banner: lipgloss.NewStyle().
			Foreground(t.Success).
			Padding(0, 1),

		BannerError: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Error).
			Padding(0, 1).
			Bold(true),
	}
}
