package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dori/ectrack/internal/app"
	"github.com/dori/ectrack/internal/model"
	"github.com/spf13/cobra"
)

// withLoadedApp opens the app, loads the checklist and runs fn
func withLoadedApp(cmd *cobra.Command, opts *rootOptions, fn func(*app.App) error) error {
	a, err := opts.openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Load(cmd.Context()); err != nil {
		return err
	}
	return fn(a)
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the checklist with completion marks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLoadedApp(cmd, opts, func(a *app.App) error {
				printList(cmd.OutOrStdout(), a.Store.Items())
				return nil
			})
		},
	}
}

func printList(w io.Writer, items []model.Item) {
	done := 0
	for _, it := range items {
		mark := "[ ]"
		if it.Done {
			mark = "[x]"
			done++
		}
		line := fmt.Sprintf("%s %s", mark, it.Task)
		if it.HasTree() {
			line += fmt.Sprintf("  (%s)", it.Tree)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "\n%d/%d done\n", done, len(items))

	groups, untagged := model.GroupsWithUntagged(items)
	for _, g := range groups {
		fmt.Fprintf(w, "  EC%-4d %d/%d\n", g.Group, g.Done, g.Total)
	}
	if untagged.Total > 0 {
		fmt.Fprintf(w, "  other  %d/%d\n", untagged.Done, untagged.Total)
	}
}

func newResetCommand(opts *rootOptions) *cobra.Command {
	var clearState bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the checklist to the source order and clear completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearState {
				a, err := opts.openApp()
				if err != nil {
					return err
				}
				defer a.Close()
				if err := a.ClearState(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Stored checklist cleared")
				return nil
			}

			return withLoadedApp(cmd, opts, func(a *app.App) error {
				if err := a.Store.Reset(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Checklist reset (%d items)\n", a.Store.Len())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearState, "state", false, "delete the stored checklist without loading the source")
	return cmd
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the stored checklist as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLoadedApp(cmd, opts, func(a *app.App) error {
				data, err := a.Store.MarshalItems()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	}
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the source, offline cache and stored state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLoadedApp(cmd, opts, func(a *app.App) error {
				st, err := a.Status(cmd.Context())
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
}

func printStatus(w io.Writer, st app.Status) {
	none := func(keys []string) string {
		if len(keys) == 0 {
			return "none"
		}
		return strings.Join(keys, ", ")
	}

	fmt.Fprintf(w, "source:   %s\n", st.Source)
	fmt.Fprintf(w, "data dir: %s\n", st.DataDir)
	fmt.Fprintf(w, "cache:    %s (%s)\n", st.CacheName, none(st.CachedKeys))
	fmt.Fprintf(w, "stored:   %s\n", none(st.StoredKeys))

	items := fmt.Sprintf("items:    %d of %d source items", st.Items, st.SourceItems)
	if st.Modified {
		items += ", modified"
	}
	fmt.Fprintln(w, items)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ectrack v%s\n", Version)
		},
	}
}
