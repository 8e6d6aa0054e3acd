package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTasksCmd(flags *globalFlags, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage the daily task list",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the daily tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			tasks, err := rt.mgr.Catalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks. Add one with `hard75 tasks add <name>`.")
				return nil
			}
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%-38s %s", "ID", "NAME")))
			for _, t := range tasks {
				fmt.Fprintf(out, "%-38s %s\n", t.ID, t.Name)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a daily task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			t, err := rt.store.AddTask(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%s)\n", t.Name, t.ID)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a daily task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.store.DeleteTask(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, rm)
	return cmd
}
