package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashwch/etherea/internal/apperr"
	"github.com/ashwch/etherea/internal/command"
	"github.com/ashwch/etherea/internal/config"
	"github.com/ashwch/etherea/internal/settings"
	"github.com/ashwch/etherea/internal/ui"
)

func newExecCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <name> [key=value...]",
		Short: "Execute a command built by hand, skipping the brain",
		Long: "Execute a command built by hand, skipping the brain.\n\nCommands: " +
			joinNames(command.Names()) + ".",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bag, err := parseArgPairs(args[1:])
			if err != nil {
				return err
			}
			parsed, err := command.Decode(args[0], bag)
			if err != nil {
				return err
			}
			return a.execute(cmd, parsed)
		},
	}
}

func newThemeCmd(a *app) *cobra.Command {
	var backend string
	cmd := &cobra.Command{
		Use:   "theme [preset]",
		Short: "Switch the theme preset, picking interactively when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preset := ""
			if len(args) == 1 {
				preset = args[0]
			} else {
				if strings.TrimSpace(backend) == "" {
					backend = a.cfg.UI.Backend
				}
				required := apperr.InvalidArgument("a preset is required: " + strings.Join(settings.Presets(), ", "))
				if !ui.IsInteractiveBackend(backend) {
					return required
				}
				picked, used, err := ui.SelectPreset(backend, a.cfg.Settings.Preset)
				if err != nil {
					return err
				}
				if !used {
					return required
				}
				if picked == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "Theme unchanged.")
					return nil
				}
				preset = picked
			}
			return a.execute(cmd, command.SetTheme{Preset: command.Ptr(strings.ToLower(preset))})
		},
	}
	cmd.Flags().StringVar(&backend, "ui", "", "UI backend for the picker")
	return cmd
}

// execute runs one command against the workspace and saves changed settings.
func (a *app) execute(cmd *cobra.Command, parsed command.Command) error {
	session, err := a.openSession(false)
	if err != nil {
		return err
	}
	defer session.Close()

	outcome, err := session.Executor().Execute(cmd.Context(), parsed, a.cfg.Settings)
	if err != nil {
		return err
	}
	if outcome.Changed {
		saver := &config.FileSaver{Path: a.cfgPath, Base: a.cfg}
		if err := saver.SaveSettings(outcome.Settings); err != nil {
			return err
		}
		a.cfg.Settings = outcome.Settings
	}
	printResponse(cmd.OutOrStdout(), response{Message: outcome.Message}, a.asJSON)
	return nil
}

// parseArgPairs turns key=value words into an argument bag. Values stay
// strings; Decode coerces them per command.
func parseArgPairs(pairs []string) (command.Args, error) {
	bag := command.Args{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, apperr.InvalidArgument(fmt.Sprintf("expected key=value, got %q", pair))
		}
		bag[key] = value
	}
	return bag, nil
}

func joinNames(names []command.Name) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, string(name))
	}
	return strings.Join(parts, ", ")
}
