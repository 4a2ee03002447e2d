package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ashwch/etherea/internal/appdirs"
	"github.com/ashwch/etherea/internal/apperr"
	"github.com/ashwch/etherea/internal/assistant"
	"github.com/ashwch/etherea/internal/config"
	"github.com/ashwch/etherea/internal/logging"
)

var version = "dev"

// app is the state shared by every subcommand of one invocation.
type app struct {
	verbose  bool
	asJSON   bool
	logger   *zap.Logger
	cfg      config.Config
	cfgPath  string
	firstRun bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(&app{})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "etherea: %s\n", apperr.UserMessage(err))
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "etherea",
		Short:         "Offline companion assistant: replies, moods and workspace commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, a, "", false)
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print machine-readable JSON")

	root.AddCommand(
		newSayCmd(a),
		newChatCmd(a),
		newExecCmd(a),
		newThemeCmd(a),
		newWorkspaceCmd(a),
		newConfigCmd(a),
		newMemoryCmd(a),
		newBankCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) load() error {
	path, err := appdirs.ConfigFilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		a.firstRun = true
	}

	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	a.cfg = cfg
	a.cfgPath = cfgPath

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) openSession(dryRun bool) (*assistant.Session, error) {
	return assistant.Open(assistant.SessionOptions{
		Config:     a.cfg,
		ConfigPath: a.cfgPath,
		Logger:     logging.OrNop(a.logger),
		DryRun:     dryRun,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
