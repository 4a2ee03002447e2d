package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashwch/etherea/internal/apperr"
	"github.com/ashwch/etherea/internal/command"
	"github.com/ashwch/etherea/internal/executor"
	"github.com/ashwch/etherea/internal/ui"
	"github.com/ashwch/etherea/internal/workspace"
)

func newWorkspaceCmd(a *app) *cobra.Command {
	ws := &cobra.Command{
		Use:     "ws",
		Aliases: []string{"workspace"},
		Short:   "Inspect and manage the workspace store directly",
	}

	var depth int
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List workspace nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, command.ListFiles{Depth: depth})
		},
	}
	ls.Flags().IntVar(&depth, "depth", executor.DefaultListDepth, "Maximum path depth to show")

	cat := &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *workspace.Store) error {
				node, ok, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return apperr.NotFound(fmt.Sprintf("%s does not exist", workspace.NormalizePath(args[0])))
				}
				if a.asJSON {
					printResponse(cmd.OutOrStdout(), response{Results: node}, true)
					return nil
				}
				if node.IsFolder() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is a folder\n", node.Path)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), node.Content)
				return nil
			})
		},
	}

	summarize := &cobra.Command{
		Use:   "summarize <path>",
		Short: "Summarize a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, command.SummarizeFile{Path: args[0]})
		},
	}

	mkdir := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a folder node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *workspace.Store) error {
				node, err := store.Upsert(ctx, workspace.Node{Path: args[0], Type: workspace.TypeFolder})
				if err != nil {
					return err
				}
				printResponse(cmd.OutOrStdout(), response{Message: fmt.Sprintf("Created folder %s.", node.Path)}, a.asJSON)
				return nil
			})
		},
	}

	var (
		yes     bool
		backend string
	)
	rm := &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a node and everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *workspace.Store) error {
				path := workspace.NormalizePath(args[0])
				affected, err := countCovered(ctx, store, path)
				if err != nil {
					return err
				}
				if affected == 0 {
					printResponse(cmd.OutOrStdout(), response{Message: fmt.Sprintf("Nothing at %s.", path)}, a.asJSON)
					return nil
				}
				ok, err := a.confirm(cmd, yes, backend, "Delete "+path, fmt.Sprintf("%d node(s) will be removed.", affected))
				if err != nil || !ok {
					return err
				}
				removed, err := store.Delete(ctx, path)
				if err != nil {
					return err
				}
				printResponse(cmd.OutOrStdout(), response{Message: fmt.Sprintf("Deleted %s (%d node(s)).", path, removed)}, a.asJSON)
				return nil
			})
		},
	}

	mv := &cobra.Command{
		Use:   "mv <old> <new>",
		Short: "Rename a node and everything under it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *workspace.Store) error {
				oldPath, newPath := workspace.NormalizePath(args[0]), workspace.NormalizePath(args[1])
				if oldPath == "" || newPath == "" {
					return apperr.InvalidArgument("both paths are required")
				}
				affected, err := countCovered(ctx, store, oldPath)
				if err != nil {
					return err
				}
				if affected == 0 || oldPath == newPath {
					printResponse(cmd.OutOrStdout(), response{Message: fmt.Sprintf("Nothing to move at %s.", oldPath)}, a.asJSON)
					return nil
				}
				ok, err := a.confirm(cmd, yes, backend, fmt.Sprintf("Move %s to %s", oldPath, newPath), fmt.Sprintf("%d node(s) will move.", affected))
				if err != nil || !ok {
					return err
				}
				moved, err := store.Rename(ctx, oldPath, newPath)
				if err != nil {
					return err
				}
				printResponse(cmd.OutOrStdout(), response{Message: fmt.Sprintf("Moved %s to %s (%d node(s)).", oldPath, newPath, moved)}, a.asJSON)
				return nil
			})
		},
	}
	for _, c := range []*cobra.Command{rm, mv} {
		c.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
		c.Flags().StringVar(&backend, "ui", "", "UI backend for the confirmation prompt")
	}

	ws.AddCommand(ls, cat, summarize, mkdir, rm, mv)
	return ws
}

func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, store *workspace.Store) error) error {
	session, err := a.openSession(false)
	if err != nil {
		return err
	}
	defer session.Close()
	return fn(cmd.Context(), session.Store)
}

func (a *app) confirm(cmd *cobra.Command, yes bool, backend, action, detail string) (bool, error) {
	if backend == "" {
		backend = a.cfg.UI.Backend
	}
	ok, err := ui.ShouldProceed(backend, yes, action, detail, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
	}
	return ok, nil
}

func countCovered(ctx context.Context, store *workspace.Store, path string) (int, error) {
	if path == "" {
		return 0, apperr.InvalidArgument("a path is required")
	}
	nodes, err := store.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, node := range nodes {
		if workspace.Covers(path, node.Path) {
			count++
		}
	}
	return count, nil
}
