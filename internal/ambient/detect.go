// Package ambient reports the terminal's color-scheme preference, the
// environment signal a theme falls back to when the user saved no choice.
package ambient

import (
	"os"
	"strconv"
	"strings"

	"sitetheme/internal/preference"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// OverrideEnv forces the ambient signal to "dark" or "light".
const OverrideEnv = "SITETHEME_COLOR_SCHEME"

// DetectFunc probes the environment once.
type DetectFunc func() (preference.Theme, bool)

var (
	hasDarkBackground = lipgloss.HasDarkBackground
	stdoutIsTerminal  = func() bool { return isatty.IsTerminal(os.Stdout.Fd()) }
)

// Detect resolves the ambient theme from, in order: the override variable,
// COLORFGBG, and a terminal background query. It reports false when none of
// them is available.
func Detect() (preference.Theme, bool) {
	if t, ok := DetectEnv(); ok {
		return t, true
	}
	if !stdoutIsTerminal() {
		return "", false
	}
	if hasDarkBackground() {
		return preference.ThemeDark, true
	}
	return preference.ThemeLight, true
}

// DetectEnv consults only the environment variables. It never touches the
// terminal, so it is safe to call while another component reads stdin.
func DetectEnv() (preference.Theme, bool) {
	if t, ok := fromOverride(os.Getenv(OverrideEnv)); ok {
		return t, true
	}
	return fromColorFGBG(os.Getenv("COLORFGBG"))
}

func fromOverride(v string) (preference.Theme, bool) {
	return preference.ParseTheme(strings.ToLower(strings.TrimSpace(v)))
}

// fromColorFGBG parses "fg;bg" (some terminals emit "fg;default;bg").
// Background indexes 0-6 and 8 are dark.
func fromColorFGBG(v string) (preference.Theme, bool) {
	if v == "" {
		return "", false
	}
	parts := strings.Split(v, ";")
	bg, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || len(parts) < 2 {
		return "", false
	}
	if (bg >= 0 && bg <= 6) || bg == 8 {
		return preference.ThemeDark, true
	}
	return preference.ThemeLight, true
}
