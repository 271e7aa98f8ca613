package kv

import (
	"os"
	"path/filepath"
	"testing"

	"sitetheme/internal/preference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]func() Store {
	t.Helper()
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"file": func() Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "state", "state.json"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func() Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"), DriverPure)
			require.NoError(t, err)
			return s
		},
	}
}

func TestStoreConformance(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()

			_, ok, err := s.Get(preference.KeyConsent)
			require.NoError(t, err)
			assert.False(t, ok, "empty store must report absent keys")

			require.NoError(t, s.Set(preference.KeyConsent, "accepted"))
			require.NoError(t, s.Set(preference.KeyTheme, "dark"))
			require.NoError(t, s.Set(preference.KeyTheme, "light"))

			v, ok, err := s.Get(preference.KeyTheme)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "light", v)

			require.NoError(t, s.Delete(preference.KeyTheme))
			_, ok, err = s.Get(preference.KeyTheme)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Clear())
			_, ok, err = s.Get(preference.KeyConsent)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Close())
			_, _, err = s.Get(preference.KeyConsent)
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, s.Set("k", "v"), ErrClosed)
		})
	}
}

func TestFileStore_SeesExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"consent-status":"declined"}`), 0644))
	v, ok, err := s.Get(preference.KeyConsent)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "declined", v)
}

func TestFileStore_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	s, err := NewFileStore(path)
	require.NoError(t, err)

	_, _, err = s.Get(preference.KeyConsent)
	assert.Error(t, err)
}

func TestFileStore_NoTempFileLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "state.json"))
	require.NoError(t, err)
	require.NoError(t, s.Set(preference.KeyConsent, "accepted"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := NewSQLiteStore(path, "")
	require.NoError(t, err)
	require.NoError(t, s.Set(preference.KeyTheme, "dark"))
	require.NoError(t, s.Close())

	s2, err := NewSQLiteStore(path, DriverPure)
	require.NoError(t, err)
	defer s2.Close()
	v, ok, err := s2.Get(preference.KeyTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestSQLiteStore_RejectsUnknownDriver(t *testing.T) {
	_, err := NewSQLiteStore(filepath.Join(t.TempDir(), "x.db"), "postgres")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Options{Path: filepath.Join(dir, "state.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(Options{Backend: "SQLite", Path: filepath.Join(dir, "state.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(Options{Backend: "redis"})
	assert.Error(t, err)

	_, err = Open(Options{Backend: BackendFile})
	assert.Error(t, err, "file backend needs a path")
}

func TestEngineOverFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	engine := preference.New(s)
	engine.Initialize()
	engine.AcceptConsent()
	engine.ToggleTheme()

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	again := preference.New(reopened)
	assert.Equal(t, preference.ThemeDark, again.Initialize())
	assert.Equal(t, preference.ConsentAccepted, again.Consent())
}
