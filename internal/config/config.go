package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all sitetheme configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Ambient AmbientConfig `yaml:"ambient"`
	Watch   WatchConfig   `yaml:"watch"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig selects where consent and theme are persisted.
type StorageConfig struct {
	Backend string `yaml:"backend"` // file, sqlite, memory
	Path    string `yaml:"path"`
	Driver  string `yaml:"driver"` // sqlite only: sqlite (pure Go) or sqlite3 (cgo)
}

// AmbientConfig configures terminal color-scheme detection.
type AmbientConfig struct {
	Enabled      bool   `yaml:"enabled"`
	PollInterval string `yaml:"poll_interval"` // "0" disables polling
}

// WatchConfig configures the external-change watcher on the state file.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
}

// UIConfig configures the reader.
type UIConfig struct {
	ContentDir string `yaml:"content_dir"`
	WordWrap   int    `yaml:"word_wrap"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "file",
			Path:    filepath.Join(DefaultDir(), StateFile("file")),
			Driver:  "sqlite",
		},
		Ambient: AmbientConfig{
			Enabled:      true,
			PollInterval: "5s",
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: "200ms",
		},
		UI: UIConfig{
			ContentDir: "content",
			WordWrap:   80,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(DefaultDir(), "logs", "sitetheme.log"),
		},
	}
}

// DefaultDir returns the directory state and logs live in. A project-local
// .sitetheme directory wins over the home-level one.
func DefaultDir() string {
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".sitetheme")
		if stat, err := os.Stat(localDir); err == nil && stat.IsDir() {
			return localDir
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".sitetheme")
	}
	return ".sitetheme"
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load reads configuration from path. A missing file yields defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.UseBackend(cfg.Storage.Backend)

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// StateFile is the default state file name for a storage backend, or
// empty when the backend keeps nothing on disk.
func StateFile(backend string) string {
	switch backend {
	case "file":
		return "state.json"
	case "sqlite":
		return "state.db"
	default:
		return ""
	}
}

// UseBackend switches the storage backend. A path still carrying another
// backend's default file name moves to this backend's default name in the
// same directory, so a JSON state file is never opened as SQLite.
func (c *Config) UseBackend(backend string) {
	c.Storage.Backend = backend
	want := StateFile(backend)
	if want == "" || c.Storage.Path == "" {
		return
	}
	base := filepath.Base(c.Storage.Path)
	for _, other := range ValidBackends {
		if f := StateFile(other); f != "" && f != want && base == f {
			c.Storage.Path = filepath.Join(filepath.Dir(c.Storage.Path), want)
			return
		}
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SITETHEME_STORAGE"); v != "" {
		c.UseBackend(v)
	}
	if v := os.Getenv("SITETHEME_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SITETHEME_CONTENT"); v != "" {
		c.UI.ContentDir = v
	}
	if v := os.Getenv("SITETHEME_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// GetPollInterval returns the ambient polling interval; zero disables polling.
func (c *Config) GetPollInterval() time.Duration {
	if strings.TrimSpace(c.Ambient.PollInterval) == "0" {
		return 0
	}
	d, err := time.ParseDuration(c.Ambient.PollInterval)
	if err != nil || d < 0 {
		return 5 * time.Second
	}
	return d
}

// GetWatchDebounce returns the watcher debounce window.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 200 * time.Millisecond
	}
	return d
}

var ValidBackends = []string{"file", "sqlite", "memory"}

var ValidDrivers = []string{"sqlite", "sqlite3"}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !contains(ValidBackends, c.Storage.Backend) {
		return fmt.Errorf("invalid storage backend: %s (valid: %v)", c.Storage.Backend, ValidBackends)
	}
	if c.Storage.Backend != "memory" && strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage path required for %s backend", c.Storage.Backend)
	}
	if c.Storage.Backend == "sqlite" && c.Storage.Driver != "" && !contains(ValidDrivers, c.Storage.Driver) {
		return fmt.Errorf("invalid sqlite driver: %s (valid: %v)", c.Storage.Driver, ValidDrivers)
	}
	if c.UI.WordWrap < 0 {
		return fmt.Errorf("word_wrap must not be negative")
	}
	return c.Logging.Validate()
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
