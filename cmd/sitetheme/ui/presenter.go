package ui

import (
	"sync"

	"sitetheme/internal/preference"
)

// State is what the presenter has been told to show.
type State struct {
	Theme         preference.Theme
	Icon          string
	BannerVisible bool
}

// Presenter receives theme and consent-banner updates from the preference
// engine. It implements preference.Presenter and preference.ConsentPrompt
// and is safe to update from any goroutine.
type Presenter struct {
	mu     sync.RWMutex
	state  State
	notify func(State)
}

// NewPresenter starts in the light theme with the banner hidden.
func NewPresenter() *Presenter {
	return &Presenter{state: State{
		Theme: preference.ThemeLight,
		Icon:  preference.ThemeLight.Icon(),
	}}
}

// OnChange registers fn to run after every update. fn runs on the goroutine
// that made the update and must not block.
func (p *Presenter) OnChange(fn func(State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notify = fn
}

func (p *Presenter) ApplyTheme(t preference.Theme) {
	p.update(func(s *State) { s.Theme = t })
}

func (p *Presenter) SetIcon(icon string) {
	p.update(func(s *State) { s.Icon = icon })
}

func (p *Presenter) Show() {
	p.update(func(s *State) { s.BannerVisible = true })
}

func (p *Presenter) Hide() {
	p.update(func(s *State) { s.BannerVisible = false })
}

// State returns a snapshot.
func (p *Presenter) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Styles returns the styles for the current theme.
func (p *Presenter) Styles() Styles {
	return NewStyles(ThemeFor(p.State().Theme))
}

func (p *Presenter) update(mutate func(*State)) {
	p.mu.Lock()
	mutate(&p.state)
	snapshot, notify := p.state, p.notify
	p.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
}
