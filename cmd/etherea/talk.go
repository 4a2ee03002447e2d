package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashwch/etherea/internal/assistant"
	"github.com/ashwch/etherea/internal/config"
	"github.com/ashwch/etherea/internal/ui"
)

func newSayCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "say <text...>",
		Short: "Run one round-trip and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.openSession(dryRun)
			if err != nil {
				return err
			}
			defer session.Close()

			turn, err := session.Handle(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printTurn(cmd.OutOrStdout(), turn, a.asJSON)
			return turn.CommandError
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse commands without executing them")
	return cmd
}

func newChatCmd(a *app) *cobra.Command {
	var (
		backend string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, a, backend, dryRun)
		},
	}
	cmd.Flags().StringVar(&backend, "ui", "", "UI backend: auto|bubbletea|huh|tview|plain")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse commands without executing them")
	return cmd
}

func runChat(cmd *cobra.Command, a *app, backendOverride string, dryRun bool) error {
	backend := a.cfg.UI.Backend
	if strings.TrimSpace(backendOverride) != "" {
		backend = ui.NormalizeBackend(backendOverride)
	}

	if a.firstRun && !a.asJSON {
		a.onboard(cmd, backend)
	}

	session, err := a.openSession(dryRun)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx := cmd.Context()
	greeting := fmt.Sprintf("Etherea is listening (bank: %s). Try /help, or /quit to leave.", session.Engine().BankSource(ctx))
	return ui.Chat(ctx, ui.ChatOptions{
		Backend:  backend,
		Greeting: greeting,
		In:       cmd.InOrStdin(),
		Out:      cmd.OutOrStdout(),
	}, responder(session.Assistant))
}

func responder(a *assistant.Assistant) ui.Responder {
	return func(ctx context.Context, input string) (ui.Exchange, error) {
		turn, err := a.Handle(ctx, input)
		return ui.Exchange{
			Reply:   turn.Result.Response,
			Emotion: turn.Result.EmotionUpdate,
			Notice:  turn.Message,
			Err:     turn.CommandError,
		}, err
	}
}

func (a *app) onboard(cmd *cobra.Command, backend string) {
	decision, used, err := ui.Onboarding(backend, a.cfg.Settings)
	if err != nil {
		a.logger.Debug("onboarding ui unavailable")
	}
	if !used {
		return
	}
	a.cfg.Settings = decision.Apply(a.cfg.Settings)
	if err := config.Save(a.cfgPath, a.cfg); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "etherea: could not save onboarding choices: %v\n", err)
	}
}
