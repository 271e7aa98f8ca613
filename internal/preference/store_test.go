package preference

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type mapKV struct {
	data   map[string]string
	reads  []string
	writes []string
	fail   bool
}

func newMapKV(pairs ...string) *mapKV {
	kv := &mapKV{data: map[string]string{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		kv.data[pairs[i]] = pairs[i+1]
	}
	return kv
}

func (m *mapKV) Get(key string) (string, bool, error) {
	m.reads = append(m.reads, key)
	if m.fail {
		return "", false, errors.New("storage disabled")
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapKV) Set(key, value string) error {
	if m.fail {
		return errors.New("storage disabled")
	}
	m.writes = append(m.writes, key)
	m.data[key] = value
	return nil
}

type fakeAmbient struct {
	theme     Theme
	available bool
	handlers  []func(Theme)
	unsubs    int
}

func (f *fakeAmbient) Current() (Theme, bool) { return f.theme, f.available }

func (f *fakeAmbient) Subscribe(h func(Theme)) func() {
	f.handlers = append(f.handlers, h)
	return func() { f.unsubs++ }
}

func (f *fakeAmbient) emit(t Theme) {
	f.theme = t
	for _, h := range f.handlers {
		h(t)
	}
}

type recorder struct {
	applied []Theme
	icon    string
	shown   int
	hidden  int
	visible bool
}

func (r *recorder) ApplyTheme(t Theme) { r.applied = append(r.applied, t) }
func (r *recorder) SetIcon(s string)   { r.icon = s }
func (r *recorder) Show()              { r.shown++; r.visible = true }
func (r *recorder) Hide()              { r.hidden++; r.visible = false }

func newTestStore(kv KeyValueStore, amb *fakeAmbient) (*ConsentedStore, *recorder) {
	rec := &recorder{}
	opts := []Option{WithPresenter(rec), WithPrompt(rec)}
	if amb != nil {
		opts = append(opts, WithAmbient(amb))
	}
	return New(kv, opts...), rec
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestInitialize_EmptyStorage(t *testing.T) {
	kv := newMapKV()
	s, rec := newTestStore(kv, &fakeAmbient{theme: ThemeDark, available: true})

	got := s.Initialize()

	assert.Equal(t, ThemeLight, got)
	assert.Equal(t, ConsentUnknown, s.Consent())
	assert.True(t, rec.visible, "consent banner should be shown")
	assert.Empty(t, kv.writes)
	assert.Equal(t, "🌙", rec.icon)
}

func TestAcceptConsent_FollowsAmbient(t *testing.T) {
	kv := newMapKV()
	s, rec := newTestStore(kv, &fakeAmbient{theme: ThemeDark, available: true})
	s.Initialize()

	s.AcceptConsent()

	assert.Equal(t, "accepted", kv.data[KeyConsent])
	assert.Equal(t, ThemeDark, s.Effective())
	_, saved := kv.data[KeyTheme]
	assert.False(t, saved, "accepting must not write a theme preference")
	assert.False(t, rec.visible)
	assert.Equal(t, "☀️", rec.icon)
}

func TestInitialize_SavedThemeWinsOverAmbient(t *testing.T) {
	kv := newMapKV(KeyConsent, "accepted", KeyTheme, "dark")
	s, rec := newTestStore(kv, &fakeAmbient{theme: ThemeLight, available: true})

	assert.Equal(t, ThemeDark, s.Initialize())
	assert.Zero(t, rec.shown)
}

func TestToggleTwice_PersistsLastValue(t *testing.T) {
	kv := newMapKV(KeyConsent, "accepted")
	s, _ := newTestStore(kv, &fakeAmbient{theme: ThemeLight, available: true})
	original := s.Initialize()

	first := s.ToggleTheme()
	assert.Equal(t, first.String(), kv.data[KeyTheme])

	second := s.ToggleTheme()
	assert.Equal(t, original, second)
	assert.Equal(t, original, s.Effective())
	assert.Equal(t, second.String(), kv.data[KeyTheme])
}

func TestAmbientChange_IgnoredWhenDeclined(t *testing.T) {
	kv := newMapKV(KeyConsent, "declined")
	amb := &fakeAmbient{theme: ThemeLight, available: true}
	s, rec := newTestStore(kv, amb)
	s.Initialize()
	before := len(rec.applied)

	amb.emit(ThemeDark)

	assert.Equal(t, ThemeLight, s.Effective())
	assert.Len(t, rec.applied, before)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestInitialize_AlwaysSetsTheme(t *testing.T) {
	cases := map[string]*mapKV{
		"empty":          newMapKV(),
		"accepted":       newMapKV(KeyConsent, "accepted"),
		"declined":       newMapKV(KeyConsent, "declined"),
		"garbage":        newMapKV(KeyConsent, "maybe", KeyTheme, "blue"),
		"accepted-bogus": newMapKV(KeyConsent, "accepted", KeyTheme, "sepia"),
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			s, rec := newTestStore(kv, nil)
			got := s.Initialize()
			_, ok := ParseTheme(string(got))
			require.True(t, ok, "effective theme %q is not a valid theme", got)
			require.NotEmpty(t, rec.applied)
			assert.Equal(t, got, rec.applied[len(rec.applied)-1])
		})
	}
}

func TestUnknownConsent_NeverWritesTheme(t *testing.T) {
	kv := newMapKV()
	amb := &fakeAmbient{theme: ThemeLight, available: true}
	s, _ := newTestStore(kv, amb)

	s.Initialize()
	s.ToggleTheme()
	amb.emit(ThemeDark)
	s.ToggleTheme()
	s.Reload()

	assert.NotContains(t, kv.writes, KeyTheme)
	assert.Equal(t, ConsentUnknown, s.Consent())
}

func TestThemeKey_NeverReadWithoutConsent(t *testing.T) {
	for _, consent := range []string{"", "declined"} {
		t.Run("consent="+consent, func(t *testing.T) {
			kv := newMapKV(KeyTheme, "dark")
			if consent != "" {
				kv.data[KeyConsent] = consent
			}
			amb := &fakeAmbient{theme: ThemeLight, available: true}
			s, _ := newTestStore(kv, amb)

			s.Initialize()
			amb.emit(ThemeDark)
			s.ToggleTheme()
			amb.emit(ThemeLight)
			s.Reload()
			s.Initialize()

			assert.NotContains(t, kv.reads, KeyTheme)
			assert.Contains(t, kv.reads, KeyConsent)
			if consent == "declined" {
				s.DeclineConsent()
				amb.emit(ThemeDark)
				assert.NotContains(t, kv.reads, KeyTheme)
			}
		})
	}
}

func TestThemeKey_ReadOnceAccepted(t *testing.T) {
	kv := newMapKV()
	amb := &fakeAmbient{theme: ThemeLight, available: true}
	s, _ := newTestStore(kv, amb)
	s.Initialize()
	require.NotContains(t, kv.reads, KeyTheme)

	s.AcceptConsent()
	assert.Contains(t, kv.reads, KeyTheme)
}

func TestInitialize_Idempotent(t *testing.T) {
	kv := newMapKV(KeyConsent, "accepted")
	amb := &fakeAmbient{theme: ThemeDark, available: true}
	s, _ := newTestStore(kv, amb)

	first := s.Initialize()
	second := s.Initialize()

	assert.Equal(t, first, second)
	assert.Len(t, amb.handlers, 1, "ambient subscription must be registered once")
}

func TestDeclineConsent_ForcesLight(t *testing.T) {
	kv := newMapKV()
	s, rec := newTestStore(kv, &fakeAmbient{theme: ThemeDark, available: true})
	s.Initialize()
	s.ToggleTheme()
	require.Equal(t, ThemeDark, s.Effective())

	s.DeclineConsent()

	assert.Equal(t, ThemeLight, s.Effective())
	assert.Equal(t, "declined", kv.data[KeyConsent])
	assert.NotContains(t, kv.writes, KeyTheme)
	assert.Equal(t, 1, rec.hidden)
}

// =============================================================================
// EDGE CASES
// =============================================================================

func TestToggle_DeclinedAppliesWithoutPersisting(t *testing.T) {
	kv := newMapKV(KeyConsent, "declined")
	s, rec := newTestStore(kv, nil)
	s.Initialize()

	assert.Equal(t, ThemeDark, s.ToggleTheme())
	assert.Equal(t, ThemeDark, rec.applied[len(rec.applied)-1])
	assert.Empty(t, kv.writes)
}

func TestAmbientChange_AppliedWithoutSavedTheme(t *testing.T) {
	kv := newMapKV(KeyConsent, "accepted")
	amb := &fakeAmbient{theme: ThemeLight, available: true}
	s, _ := newTestStore(kv, amb)
	s.Initialize()

	amb.emit(ThemeDark)
	assert.Equal(t, ThemeDark, s.Effective())
	assert.Empty(t, kv.writes, "ambient changes are never persisted")
}

func TestAmbientChange_IgnoredAfterExplicitChoice(t *testing.T) {
	kv := newMapKV(KeyConsent, "accepted")
	amb := &fakeAmbient{theme: ThemeLight, available: true}
	s, _ := newTestStore(kv, amb)
	s.Initialize()
	s.ToggleTheme()

	amb.emit(ThemeLight)
	assert.Equal(t, ThemeDark, s.Effective())
}

func TestAmbientChange_InvalidValueIgnored(t *testing.T) {
	kv := newMapKV(KeyConsent, "accepted")
	s, _ := newTestStore(kv, nil)
	s.Initialize()

	s.OnAmbientSignalChanged(Theme("sepia"))
	assert.Equal(t, ThemeLight, s.Effective())
}

func TestAccept_AmbientUnavailableFallsBackToLight(t *testing.T) {
	kv := newMapKV()
	s, _ := newTestStore(kv, &fakeAmbient{available: false})
	s.Initialize()
	s.AcceptConsent()
	assert.Equal(t, ThemeLight, s.Effective())
}

func TestAccept_UsesPreviouslySavedTheme(t *testing.T) {
	kv := newMapKV(KeyTheme, "dark")
	s, _ := newTestStore(kv, &fakeAmbient{theme: ThemeLight, available: true})
	require.Equal(t, ThemeLight, s.Initialize())

	s.AcceptConsent()
	assert.Equal(t, ThemeDark, s.Effective())
}

func TestStorageUnavailable_DegradesToDefaults(t *testing.T) {
	kv := newMapKV(KeyConsent, "accepted", KeyTheme, "dark")
	kv.fail = true
	s, rec := newTestStore(kv, &fakeAmbient{theme: ThemeDark, available: true})

	assert.NotPanics(t, func() {
		assert.Equal(t, ThemeLight, s.Initialize())
		s.AcceptConsent()
		s.ToggleTheme()
	})
	assert.Equal(t, 1, rec.shown)
}

func TestNilStore(t *testing.T) {
	s := New(nil)
	assert.Equal(t, ThemeLight, s.Initialize())
	s.AcceptConsent()
	assert.Equal(t, ThemeLight, s.Effective())
	assert.Equal(t, ThemeDark, s.ToggleTheme())
}

func TestReload_PicksUpExternalWrite(t *testing.T) {
	kv := newMapKV(KeyConsent, "accepted")
	s, _ := newTestStore(kv, nil)
	s.Initialize()

	kv.data[KeyTheme] = "dark"
	assert.Equal(t, ThemeDark, s.Reload())

	delete(kv.data, KeyTheme)
	assert.Equal(t, ThemeLight, s.Reload())
}

func TestReload_NoopWithoutConsent(t *testing.T) {
	kv := newMapKV(KeyConsent, "declined")
	s, _ := newTestStore(kv, nil)
	s.Initialize()
	s.ToggleTheme()

	kv.data[KeyTheme] = "light"
	assert.Equal(t, ThemeDark, s.Reload())
}

func TestClose_Unsubscribes(t *testing.T) {
	amb := &fakeAmbient{}
	s, _ := newTestStore(newMapKV(), amb)
	s.Initialize()
	s.Close()
	s.Close()
	assert.Equal(t, 1, amb.unsubs)
}

func TestAppliedSequence(t *testing.T) {
	kv := newMapKV()
	amb := &fakeAmbient{theme: ThemeDark, available: true}
	s, rec := newTestStore(kv, amb)

	s.Initialize()
	s.AcceptConsent()
	s.ToggleTheme()
	amb.emit(ThemeDark)

	want := []Theme{ThemeLight, ThemeDark, ThemeLight}
	if diff := cmp.Diff(want, rec.applied); diff != "" {
		t.Errorf("applied themes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, ConsentAccepted, ParseConsent("accepted"))
	assert.Equal(t, ConsentDeclined, ParseConsent("declined"))
	assert.Equal(t, ConsentUnknown, ParseConsent(""))
	assert.Equal(t, "unknown", ConsentUnknown.String())

	_, ok := ParseTheme("Dark")
	assert.False(t, ok)
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
	assert.Equal(t, ThemeDark, Theme("").Toggle())
}
