// Package preference implements the consent-gated theme preference engine.
// A theme choice is only ever persisted after the user has explicitly
// accepted storage; the effective theme is resolved from the saved choice,
// then the ambient color-scheme signal, then Light.
package preference

// Persisted keys.
const (
	KeyConsent = "consent-status"
	KeyTheme   = "theme-preference"
)

// ConsentState is the user's storage consent decision.
type ConsentState int

const (
	ConsentUnknown ConsentState = iota
	ConsentAccepted
	ConsentDeclined
)

func (c ConsentState) String() string {
	switch c {
	case ConsentAccepted:
		return "accepted"
	case ConsentDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

// ParseConsent maps a stored value to a ConsentState. Unrecognized values
// are Unknown.
func ParseConsent(s string) ConsentState {
	switch s {
	case "accepted":
		return ConsentAccepted
	case "declined":
		return ConsentDeclined
	default:
		return ConsentUnknown
	}
}

// Theme is a light/dark presentation choice.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme reports whether s names a known theme.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), true
	default:
		return "", false
	}
}

// Toggle returns the opposite theme. Anything that is not Dark toggles to Dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Icon is the indicator shown on the toggle control: it names the theme a
// toggle would switch to.
func (t Theme) Icon() string {
	if t == ThemeDark {
		return "☀️"
	}
	return "🌙"
}

func (t Theme) String() string { return string(t) }
