// Package ui provides the visual styling for the sitetheme reader.
// Every style is derived from one of two palettes, light or dark.
package ui

import (
	"strings"

	"sitetheme/internal/preference"

	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f7f7f5")
	LightForeground = lipgloss.Color("#1c2733")
	LightPrimary    = lipgloss.Color("#003580") // Nordic blue
	LightAccent     = lipgloss.Color("#d4a017")
	LightMuted      = lipgloss.Color("#6b7785")
	LightBorder     = lipgloss.Color("#d5dae0")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#11161d")
	DarkForeground = lipgloss.Color("#e8ecf0")
	DarkPrimary    = lipgloss.Color("#7fb2ff")
	DarkAccent     = lipgloss.Color("#f2c744")
	DarkMuted      = lipgloss.Color("#8b96a3")
	DarkBorder     = lipgloss.Color("#2a3441")
	DarkCard       = lipgloss.Color("#1a222c")

	Warning = lipgloss.Color("#FFC107")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// ThemeFor maps a preference theme onto its palette.
func ThemeFor(t preference.Theme) Theme {
	if t == preference.ThemeDark {
		return DarkTheme()
	}
	return LightTheme()
}

// GlamourStyle names the Markdown renderer style matching the palette.
func (t Theme) GlamourStyle() string {
	if t.IsDark {
		return styles.DarkStyle
	}
	return styles.LightStyle
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	App     lipgloss.Style
	Header  lipgloss.Style
	Tab     lipgloss.Style
	TabOn   lipgloss.Style
	Icon    lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	Banner       lipgloss.Style
	BannerTitle  lipgloss.Style
	BannerAction lipgloss.Style

	Section   lipgloss.Style
	SectionOn lipgloss.Style
	Muted     lipgloss.Style
	Divider   lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		App: lipgloss.NewStyle().
			Background(theme.Background).
			Foreground(theme.Foreground),

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(theme.Background).
			Padding(0, 1).
			Bold(true),

		Tab: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		TabOn: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Underline(true).
			Bold(true).
			Padding(0, 1),

		Icon: lipgloss.NewStyle().
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Content: lipgloss.NewStyle().
			Padding(0, 1),

		Banner: lipgloss.NewStyle().
			Background(theme.Card).
			Foreground(theme.Foreground).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent),

		BannerTitle: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		BannerAction: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Section: lipgloss.NewStyle().
			Foreground(theme.Muted),

		SectionOn: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		width = 1
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
