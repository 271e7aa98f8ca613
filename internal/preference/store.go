package preference

import (
	"errors"
	"sync"

	"sitetheme/internal/logging"
)

var errNoStore = errors.New("no key-value store configured")

// ConsentedStore gates persistence of the theme choice behind a persisted
// consent decision and keeps the effective theme applied to the presenter.
//
// All methods are safe for concurrent use. Collaborators are invoked while
// the store's lock is held and must not call back into the store.
type ConsentedStore struct {
	mu sync.Mutex

	kv        KeyValueStore
	ambient   AmbientSource
	presenter Presenter
	prompt    ConsentPrompt

	consent     ConsentState
	effective   Theme
	initialized bool
	unsubscribe func()
}

// Option configures a ConsentedStore.
type Option func(*ConsentedStore)

// WithAmbient sets the ambient color-scheme source.
func WithAmbient(a AmbientSource) Option {
	return func(s *ConsentedStore) { s.ambient = a }
}

// WithPresenter sets the sink that renders the effective theme.
func WithPresenter(p Presenter) Option {
	return func(s *ConsentedStore) { s.presenter = p }
}

// WithPrompt sets the consent banner.
func WithPrompt(p ConsentPrompt) Option {
	return func(s *ConsentedStore) { s.prompt = p }
}

// New creates a store over kv. A nil kv behaves like unavailable storage.
func New(kv KeyValueStore, opts ...Option) *ConsentedStore {
	s := &ConsentedStore{
		kv:        kv,
		effective: ThemeLight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize reads the consent decision and applies the resolved theme.
// With no decision yet the consent prompt is shown and Light is applied.
// The ambient subscription is registered on the first call only.
func (s *ConsentedStore) Initialize() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.consent = s.readConsent()
	logging.ConsentDebug("initialize: consent=%s", s.consent)

	switch s.consent {
	case ConsentAccepted:
		s.apply(s.resolveAccepted())
	case ConsentDeclined:
		s.apply(ThemeLight)
	default:
		if s.prompt != nil {
			s.prompt.Show()
		}
		s.apply(ThemeLight)
	}

	if !s.initialized {
		s.initialized = true
		if s.ambient != nil {
			s.unsubscribe = s.ambient.Subscribe(s.OnAmbientSignalChanged)
		}
	}
	return s.effective
}

// AcceptConsent records consent and resolves the theme from the saved
// preference or the ambient signal.
func (s *ConsentedStore) AcceptConsent() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.consent = ConsentAccepted
	s.write(KeyConsent, ConsentAccepted.String())
	if s.prompt != nil {
		s.prompt.Hide()
	}
	s.apply(s.resolveAccepted())
	logging.Consent("consent accepted, theme=%s", s.effective)
}

// DeclineConsent records the refusal and forces Light. The theme key is
// never written.
func (s *ConsentedStore) DeclineConsent() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.consent = ConsentDeclined
	s.write(KeyConsent, ConsentDeclined.String())
	if s.prompt != nil {
		s.prompt.Hide()
	}
	s.apply(ThemeLight)
	logging.Consent("consent declined")
}

// ToggleTheme flips and applies the theme, persisting it only when consent
// was accepted.
func (s *ConsentedStore) ToggleTheme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.effective.Toggle()
	s.apply(next)
	if s.consent == ConsentAccepted {
		s.write(KeyTheme, next.String())
	}
	logging.Theme("theme toggled to %s (persisted=%v)", next, s.consent == ConsentAccepted)
	return next
}

// OnAmbientSignalChanged applies t when consent was accepted and no explicit
// theme has been saved. The saved-key check and the apply are not atomic
// with respect to edits made to storage by another process.
func (s *ConsentedStore) OnAmbientSignalChanged(t Theme) {
	if _, ok := ParseTheme(string(t)); !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consent != ConsentAccepted {
		logging.ThemeDebug("ambient change to %s ignored: consent=%s", t, s.consent)
		return
	}
	if _, ok := s.readSavedTheme(); ok {
		logging.ThemeDebug("ambient change to %s ignored: explicit preference saved", t)
		return
	}
	s.apply(t)
	logging.Theme("theme follows ambient signal: %s", t)
}

// Reload re-resolves the theme from storage when consent was accepted, so
// that changes written by another process become visible. Otherwise it
// returns the current effective theme unchanged.
func (s *ConsentedStore) Reload() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consent != ConsentAccepted {
		return s.effective
	}
	s.apply(s.resolveAccepted())
	return s.effective
}

// Effective returns the theme last applied.
func (s *ConsentedStore) Effective() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effective
}

// Consent returns the in-memory consent decision.
func (s *ConsentedStore) Consent() ConsentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consent
}

// Close drops the ambient subscription.
func (s *ConsentedStore) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// resolveAccepted applies the precedence saved > ambient > Light.
func (s *ConsentedStore) resolveAccepted() Theme {
	if saved, ok := s.readSavedTheme(); ok {
		return saved
	}
	if s.ambient != nil {
		if t, ok := s.ambient.Current(); ok {
			if _, valid := ParseTheme(string(t)); valid {
				return t
			}
		}
	}
	return ThemeLight
}

func (s *ConsentedStore) apply(t Theme) {
	s.effective = t
	if s.presenter != nil {
		s.presenter.ApplyTheme(t)
		s.presenter.SetIcon(t.Icon())
	}
}

func (s *ConsentedStore) readConsent() ConsentState {
	v, ok := s.read(KeyConsent)
	if !ok {
		return ConsentUnknown
	}
	return ParseConsent(v)
}

func (s *ConsentedStore) readSavedTheme() (Theme, bool) {
	v, ok := s.read(KeyTheme)
	if !ok {
		return "", false
	}
	t, valid := ParseTheme(v)
	if !valid {
		logging.StoreDebug("ignoring unrecognized %s value %q", KeyTheme, v)
	}
	return t, valid
}

func (s *ConsentedStore) read(key string) (string, bool) {
	if s.kv == nil {
		logging.StoreDebug("read %s: %v", key, errNoStore)
		return "", false
	}
	v, ok, err := s.kv.Get(key)
	if err != nil {
		logging.StoreWarn("read %s failed, using default: %v", key, err)
		return "", false
	}
	return v, ok
}

func (s *ConsentedStore) write(key, value string) {
	if s.kv == nil {
		logging.StoreDebug("write %s: %v", key, errNoStore)
		return
	}
	if err := s.kv.Set(key, value); err != nil {
		logging.StoreWarn("write %s failed: %v", key, err)
	}
}
