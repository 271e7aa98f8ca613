package ambient

import (
	"context"
	"sync"
	"testing"
	"time"

	"sitetheme/internal/preference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func stubTerminal(t *testing.T, tty, dark bool) {
	t.Helper()
	origTTY, origDark := stdoutIsTerminal, hasDarkBackground
	stdoutIsTerminal = func() bool { return tty }
	hasDarkBackground = func() bool { return dark }
	t.Cleanup(func() {
		stdoutIsTerminal, hasDarkBackground = origTTY, origDark
	})
}

func TestDetect_Precedence(t *testing.T) {
	stubTerminal(t, true, true)

	t.Setenv(OverrideEnv, "Light")
	t.Setenv("COLORFGBG", "15;0")
	got, ok := Detect()
	require.True(t, ok)
	assert.Equal(t, preference.ThemeLight, got, "override wins")

	t.Setenv(OverrideEnv, "")
	t.Setenv("COLORFGBG", "0;15")
	got, ok = Detect()
	require.True(t, ok)
	assert.Equal(t, preference.ThemeLight, got, "COLORFGBG beats terminal query")

	t.Setenv("COLORFGBG", "")
	got, ok = Detect()
	require.True(t, ok)
	assert.Equal(t, preference.ThemeDark, got, "terminal query")
}

func TestDetect_UnavailableWithoutTerminal(t *testing.T) {
	stubTerminal(t, false, true)
	t.Setenv(OverrideEnv, "")
	t.Setenv("COLORFGBG", "")

	_, ok := Detect()
	assert.False(t, ok)
}

func TestDetectEnv_NeverQueriesTerminal(t *testing.T) {
	stubTerminal(t, true, true)
	t.Setenv(OverrideEnv, "")
	t.Setenv("COLORFGBG", "")

	_, ok := DetectEnv()
	assert.False(t, ok)

	t.Setenv("COLORFGBG", "0;15")
	got, ok := DetectEnv()
	require.True(t, ok)
	assert.Equal(t, preference.ThemeLight, got)
}

func TestFromColorFGBG(t *testing.T) {
	cases := []struct {
		in   string
		want preference.Theme
		ok   bool
	}{
		{"15;0", preference.ThemeDark, true},
		{"0;15", preference.ThemeLight, true},
		{"7;default;8", preference.ThemeDark, true},
		{"0;7", preference.ThemeLight, true},
		{"15", "", false},
		{"15;x", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := fromColorFGBG(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestSource_SetNotifiesOnChangeOnly(t *testing.T) {
	s := NewStatic(preference.ThemeLight)
	var got []preference.Theme
	unsubscribe := s.Subscribe(func(th preference.Theme) { got = append(got, th) })

	s.Set(preference.ThemeLight)
	s.Set(preference.ThemeDark)
	s.Set(preference.ThemeDark)
	unsubscribe()
	unsubscribe()
	s.Set(preference.ThemeLight)

	assert.Equal(t, []preference.Theme{preference.ThemeDark}, got)
	cur, ok := s.Current()
	assert.True(t, ok)
	assert.Equal(t, preference.ThemeLight, cur)
}

func TestSource_NilDetectIsUnavailable(t *testing.T) {
	s := NewSource(nil)
	_, ok := s.Current()
	assert.False(t, ok)
	s.Refresh()
	_, ok = s.Current()
	assert.False(t, ok)
}

func TestSource_PollPublishesChanges(t *testing.T) {
	var mu sync.Mutex
	value := preference.ThemeLight
	s := NewSource(func() (preference.Theme, bool) {
		mu.Lock()
		defer mu.Unlock()
		return value, true
	})

	changed := make(chan preference.Theme, 1)
	s.Subscribe(func(th preference.Theme) {
		select {
		case changed <- th:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Poll(ctx, 5*time.Millisecond) }()

	mu.Lock()
	value = preference.ThemeDark
	mu.Unlock()

	select {
	case th := <-changed:
		assert.Equal(t, preference.ThemeDark, th)
	case <-time.After(2 * time.Second):
		t.Fatal("poller never published the change")
	}
	cancel()
	assert.NoError(t, <-done)
}

func TestSource_DrivesEngine(t *testing.T) {
	src := NewStatic(preference.ThemeDark)
	engine := preference.New(nil, preference.WithAmbient(src))
	engine.Initialize()
	engine.AcceptConsent()
	assert.Equal(t, preference.ThemeDark, engine.Effective())

	src.Set(preference.ThemeLight)
	assert.Equal(t, preference.ThemeLight, engine.Effective())
	engine.Close()
}
