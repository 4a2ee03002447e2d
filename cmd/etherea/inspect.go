package main

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/ashwch/etherea/internal/config"
	"github.com/ashwch/etherea/internal/memory"
)

func newConfigCmd(a *app) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the whole configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.asJSON {
				printResponse(cmd.OutOrStdout(), response{Results: a.cfg, ConfigPath: a.cfgPath}, true)
				return nil
			}
			encoded, err := toml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(encoded))
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", a.cfgPath)
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one value",
		Long:  "Print one value.\n\nKeys: " + strings.Join(config.Keys(), ", ") + ".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := a.cfg.Get(args[0])
			if err != nil {
				return err
			}
			if a.asJSON {
				printResponse(cmd.OutOrStdout(), response{Results: map[string]string{args[0]: value}}, true)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one value and save",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(a.cfgPath, a.cfg); err != nil {
				return err
			}
			value, _ := a.cfg.Get(args[0])
			printResponse(cmd.OutOrStdout(), response{
				Message:    fmt.Sprintf("%s = %s", args[0], value),
				ConfigPath: a.cfgPath,
			}, a.asJSON)
			return nil
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), a.cfgPath)
		},
	}

	cfgCmd.AddCommand(show, get, set, path)
	return cfgCmd
}

func newMemoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Show recently journaled memories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Memory.Journal {
				printResponse(cmd.OutOrStdout(), response{Message: "Journal is disabled."}, a.asJSON)
				return nil
			}
			journal, err := memory.OpenDefault(memory.WithRedaction(a.cfg.Memory.Redact))
			if err != nil {
				return err
			}
			records, err := journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if a.asJSON {
				printResponse(cmd.OutOrStdout(), response{Results: records}, true)
				return nil
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No memories yet.")
				return nil
			}
			for _, rec := range records {
				mood := rec.Mood
				if mood == "" {
					mood = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s %s\n", rec.CreatedAt, mood, rec.Input)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of records to show, 0 for all")
	return cmd
}

type intentRow struct {
	ID        string  `json:"id"`
	Priority  int     `json:"priority"`
	Mood      string  `json:"mood"`
	Intensity float64 `json:"intensity"`
	Patterns  int     `json:"patterns"`
	Responses int     `json:"responses"`
}

func newBankCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bank",
		Short: "Show which intent bank is loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.openSession(true)
			if err != nil {
				return err
			}
			defer session.Close()

			ctx := cmd.Context()
			engine := session.Engine()
			loaded := engine.Bank(ctx)
			rows := make([]intentRow, 0, len(loaded.Intents()))
			for _, intent := range loaded.Intents() {
				rows = append(rows, intentRow{
					ID:        intent.ID,
					Priority:  intent.Priority,
					Mood:      string(intent.Emotion.Mood),
					Intensity: intent.Emotion.Intensity,
					Patterns:  len(intent.Patterns),
					Responses: len(intent.Responses),
				})
			}

			payload := response{
				Message: "bank: " + engine.BankSource(ctx),
				Results: rows,
			}
			if loadErr := engine.BankLoadError(ctx); loadErr != nil {
				payload.Lines = append(payload.Lines, "fallback reason: "+loadErr.Error())
			}
			if a.asJSON {
				printResponse(cmd.OutOrStdout(), payload, true)
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, payload.Message)
			for _, line := range payload.Lines {
				fmt.Fprintln(out, line)
			}
			for _, row := range rows {
				fmt.Fprintf(out, "  %-20s p=%-3d %s %.2f (%d patterns)\n", row.ID, row.Priority, row.Mood, row.Intensity, row.Patterns)
			}
			return nil
		},
	}
}
