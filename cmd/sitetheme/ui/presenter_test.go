package ui

import (
	"testing"

	"sitetheme/internal/preference"

	"github.com/stretchr/testify/assert"
)

func TestPresenter_TracksEngine(t *testing.T) {
	p := NewPresenter()
	var notified []State
	p.OnChange(func(s State) { notified = append(notified, s) })

	engine := preference.New(nil, preference.WithPresenter(p), preference.WithPrompt(p))
	engine.Initialize()
	assert.True(t, p.State().BannerVisible)

	engine.DeclineConsent()
	engine.ToggleTheme()

	st := p.State()
	assert.False(t, st.BannerVisible)
	assert.Equal(t, preference.ThemeDark, st.Theme)
	assert.Equal(t, preference.ThemeDark.Icon(), st.Icon)
	assert.True(t, p.Styles().Theme.IsDark)
	assert.NotEmpty(t, notified)
	assert.Equal(t, st, notified[len(notified)-1])
}
