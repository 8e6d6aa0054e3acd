package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/hard75/internal/challenge"
	"github.com/sadopc/hard75/internal/export"
)

func newExportCmd(flags *globalFlags, version string) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every day of every attempt to CSV, JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			rt, err := openRuntime(cmd.Context(), flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			days, err := rt.store.ListAllDays()
			if err != nil {
				return err
			}
			tasks, err := rt.store.ListTasks()
			if err != nil {
				return err
			}
			names := make(map[string]string, len(tasks)+1)
			for _, t := range challenge.WithSelfie(tasks) {
				names[t.ID] = t.Name
			}

			path := out
			if path == "" {
				path = fmt.Sprintf("hard75-export-%s.%s", clock().Format("2006-01-02"), format)
			}
			if err := export.Write(format, days, names, path); err != nil {
				return err
			}
			abs, _ := filepath.Abs(path)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d days to %s\n", len(days), abs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv, json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default hard75-export-<date>.<format>)")
	return cmd
}

func newGalleryCmd(flags *globalFlags, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "gallery",
		Short: "List progress photos by attempt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			groups, err := rt.store.ListSelfieDays()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(out, "No selfies yet. Add one with `hard75 selfie <file>`.")
				return nil
			}
			for _, g := range groups {
				fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("Attempt %d", g.Attempt)))
				for _, d := range g.Days {
					line := fmt.Sprintf("  day %-3d %s", d.DayNumber, d.SelfiePath)
					if d.SelfieNote != "" {
						line += "  " + mutedStyle.Render(d.SelfieNote)
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
}

func newPurgeCmd(flags *globalFlags, version string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every attempt and reset the attempt counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("purge deletes all challenge history; pass --yes to confirm")
			}
			rt, err := openRuntime(cmd.Context(), flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.store.DeleteAllDays(); err != nil {
				return err
			}
			if err := rt.store.ResetAttempts(); err != nil {
				return err
			}
			rt.log.Info("challenge history purged")
			fmt.Fprintln(cmd.OutOrStdout(), "All attempts deleted. Photos were kept in "+rt.photoDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the purge")
	return cmd
}
