package main

import (
	"fmt"
	"os"

	"sitetheme/internal/config"
	"sitetheme/internal/logging"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	storage    string
	contentDir string

	// Loaded in PersistentPreRunE
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sitetheme",
	Short: "Read a Markdown site in the terminal with a remembered light/dark theme",
	Long: `sitetheme is a terminal reader for a directory of Markdown pages.

The reader starts in the light theme and follows your terminal's color
scheme once you allow it to store preferences. Your theme choice is only
written to disk after you accept the storage banner; declining keeps the
light theme and stores nothing but the refusal.

Run without arguments to open the reader.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runReader,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default .sitetheme/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&storage, "storage", "", "Storage backend: file, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&contentDir, "content", "", "Directory of Markdown pages")

	consentCmd.AddCommand(consentAcceptCmd, consentDeclineCmd)
	themeCmd.AddCommand(themeToggleCmd, themeShowCmd)

	rootCmd.AddCommand(
		statusCmd,
		consentCmd,
		themeCmd,
		resetCmd,
		watchCmd,
	)
}

// loadConfig reads the config file, applies flag overrides and installs
// the root logger.
func loadConfig() error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if storage != "" {
		loaded.UseBackend(storage)
		if v := os.Getenv("SITETHEME_STORAGE_PATH"); v != "" {
			loaded.Storage.Path = v
		}
	}
	if contentDir != "" {
		loaded.UI.ContentDir = contentDir
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	if _, err := logging.Setup(logging.Options{
		Level:   loaded.Logging.Level,
		Format:  loaded.Logging.Format,
		File:    loaded.Logging.File,
		Verbose: verbose,
	}); err != nil {
		return err
	}
	logging.BootDebug("config loaded from %s: storage=%s path=%s", path, loaded.Storage.Backend, loaded.Storage.Path)

	cfg = loaded
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
