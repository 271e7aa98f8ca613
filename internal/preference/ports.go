package preference

// KeyValueStore is the string key-value persistence the engine writes
// consent and theme into. Get reports ok=false for an absent key.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// AmbientSource reports the environment's color-scheme preference.
// Current returns ok=false when the signal is unavailable.
type AmbientSource interface {
	Current() (Theme, bool)
	Subscribe(handler func(Theme)) (unsubscribe func())
}

// Presenter renders the effective theme.
type Presenter interface {
	ApplyTheme(Theme)
	SetIcon(string)
}

// ConsentPrompt is the banner asking the user for a storage decision.
type ConsentPrompt interface {
	Show()
	Hide()
}
