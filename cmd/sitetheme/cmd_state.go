package main

import (
	"fmt"
	"io"

	"sitetheme/internal/ambient"
	"sitetheme/internal/logging"
	"sitetheme/internal/preference"

	"github.com/spf13/cobra"
)

// statusCmd shows the persisted decisions and the resolved theme
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show consent, saved theme and the effective theme",
	RunE:  showStatus,
}

// consentCmd records the storage decision without opening the reader
var consentCmd = &cobra.Command{
	Use:   "consent",
	Short: "Record the storage consent decision",
}

var consentAcceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Allow the theme choice to be stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.OutOrStdout(), func(a *app, out io.Writer) error {
			a.engine.AcceptConsent()
			fmt.Fprintf(out, "Consent accepted. Theme: %s\n", a.engine.Effective())
			return nil
		})
	},
}

var consentDeclineCmd = &cobra.Command{
	Use:   "decline",
	Short: "Refuse storage; the theme stays light and is never saved",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.OutOrStdout(), func(a *app, out io.Writer) error {
			a.engine.DeclineConsent()
			fmt.Fprintf(out, "Consent declined. Theme: %s\n", a.engine.Effective())
			return nil
		})
	},
}

// themeCmd inspects or changes the theme
var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or toggle the theme",
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark (saved only with consent)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.OutOrStdout(), func(a *app, out io.Writer) error {
			next := a.engine.ToggleTheme()
			if a.engine.Consent() == preference.ConsentAccepted {
				fmt.Fprintf(out, "Theme: %s (saved)\n", next)
			} else {
				fmt.Fprintf(out, "Theme: %s (not saved, consent %s)\n", next, a.engine.Consent())
			}
			return nil
		})
	},
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.OutOrStdout(), func(a *app, out io.Writer) error {
			fmt.Fprintln(out, a.engine.Effective())
			return nil
		})
	},
}

// resetCmd clears both persisted keys, as if storage were wiped by hand
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the consent decision and the saved theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, key := range []string{preference.KeyConsent, preference.KeyTheme} {
			if err := a.store.Delete(key); err != nil {
				return fmt.Errorf("failed to clear %s: %w", key, err)
			}
		}
		logging.Store("preferences reset")
		fmt.Fprintln(cmd.OutOrStdout(), "Preferences cleared. The storage banner will be shown again.")
		return nil
	},
}

// withApp builds and initializes an engine with ambient detection, runs fn
// and releases the storage.
func withApp(out io.Writer, fn func(*app, io.Writer) error) error {
	a, err := newApp(cfg, ambient.Detect)
	if err != nil {
		return err
	}
	defer a.Close()
	a.initialize()
	return fn(a, out)
}

func showStatus(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(a *app, out io.Writer) error {
		consent := a.engine.Consent()

		saved := "(not stored)"
		if consent == preference.ConsentAccepted {
			saved = "(none)"
			if v, ok, err := a.store.Get(preference.KeyTheme); err != nil {
				saved = fmt.Sprintf("(unreadable: %v)", err)
			} else if ok {
				saved = v
			}
		}

		amb := "unavailable"
		if a.ambient == nil {
			amb = "disabled"
		} else if t, ok := a.ambient.Current(); ok {
			amb = t.String()
		}

		location := a.cfg.Storage.Path
		if a.cfg.Storage.Backend == "memory" {
			location = "in-memory"
		}

		fmt.Fprintf(out, "Storage:  %s (%s)\n", a.cfg.Storage.Backend, location)
		fmt.Fprintf(out, "Consent:  %s\n", consent)
		fmt.Fprintf(out, "Saved:    %s\n", saved)
		fmt.Fprintf(out, "Ambient:  %s\n", amb)
		fmt.Fprintf(out, "Theme:    %s %s\n", a.engine.Effective(), a.presenter.State().Icon)
		return nil
	})
}
