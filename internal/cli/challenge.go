package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/hard75/internal/challenge"
	"github.com/sadopc/hard75/internal/photo"
)

func newStartCmd(flags *globalFlags, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the challenge, or the next attempt after a failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			if _, err := rt.evaluate(ctx); err != nil {
				return err
			}
			st := rt.mgr.State()
			switch {
			case st.HasFailed:
				err = rt.mgr.DismissFailure(ctx)
			case !st.Started:
				err = rt.mgr.StartAttempt(ctx, true)
			case st.Finished:
				err = rt.mgr.StartAttempt(ctx, false)
			default:
				return fmt.Errorf("attempt %d is already on day %d; use restart to start over", st.Attempt, st.CurrentDay)
			}
			if err != nil {
				return err
			}

			st = rt.mgr.State()
			fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render(fmt.Sprintf("Attempt %d started. Day 1 of %d begins now.", st.Attempt, challenge.TotalDays)))
			return nil
		},
	}
}

func newStatusCmd(flags *globalFlags, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current day, streak, score and today's tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			if _, err := rt.evaluate(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			st := rt.mgr.State()
			if !st.Started {
				fmt.Fprintln(out, "Not started. Run `hard75 start` to begin day 1.")
				return nil
			}

			days, err := rt.mgr.Days(ctx)
			if err != nil {
				return err
			}
			catalog, err := rt.mgr.Catalog()
			if err != nil {
				return err
			}
			sum := challenge.Summarize(st, days)
			today := findDay(days, st.CurrentDay)

			fmt.Fprintln(out, headingStyle.Render("75 Hard"))
			fmt.Fprintln(out, labelValue("Attempt", st.Attempt))
			fmt.Fprintln(out, labelValue("Day", fmt.Sprintf("%d/%d", st.CurrentDay, challenge.TotalDays)))
			fmt.Fprintln(out, labelValue("Completed", sum.CompletedDays))
			fmt.Fprintln(out, labelValue("Streak", sum.Streak))
			fmt.Fprintln(out, labelValue("Score", sum.TotalScore))
			if today != nil && today.Timestamp != nil {
				fmt.Fprintln(out, labelValue("Updated", humanize.RelTime(*today.Timestamp, clock(), "ago", "from now")))
			}
			fmt.Fprintln(out)

			switch {
			case st.HasFailed:
				fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("Attempt %d failed on day %d.", st.Attempt, st.CurrentDay)))
				fmt.Fprintln(out, "Run `hard75 start` to begin the next attempt.")
				return nil
			case st.Finished:
				fmt.Fprintln(out, goodStyle.Render(fmt.Sprintf("Challenge finished with %d points!", sum.TotalScore)))
				return nil
			}

			fmt.Fprintln(out, headingStyle.Render("Today"))
			for _, t := range catalog {
				box := "[ ]"
				if today != nil && today.HasTask(t.ID) {
					box = goodStyle.Render("[x]")
				}
				fmt.Fprintf(out, "  %s %-12s %s\n", box, t.ID, t.Name)
			}
			return nil
		},
	}
}

func newCheckCmd(flags *globalFlags, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Evaluate the calendar now (suitable for cron)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			res, err := rt.evaluate(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			st := rt.mgr.State()
			switch {
			case !st.Started:
				fmt.Fprintln(out, "Not started.")
			case res.Kind == challenge.OutcomeAdvance:
				fmt.Fprintln(out, goodStyle.Render(fmt.Sprintf("Day %d unlocked.", res.CurrentDay)))
			case res.Kind == challenge.OutcomeAttemptFailed:
				fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("Attempt %d failed on day %d.", st.Attempt, res.CurrentDay)))
			case res.Kind == challenge.OutcomeChallengeFinished:
				fmt.Fprintln(out, goodStyle.Render("Challenge finished."))
			default:
				fmt.Fprintf(out, "No change. Day %d of attempt %d.\n", res.CurrentDay, st.Attempt)
			}
			return nil
		},
	}
}

// newMarkCmd builds "mark" (done=true) or "unmark".
func newMarkCmd(flags *globalFlags, version string, done bool) *cobra.Command {
	use, short := "mark <task-id>...", "Mark tasks of today as done"
	if !done {
		use, short = "unmark <task-id>...", "Mark tasks of today as not done"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			if _, err := rt.evaluate(ctx); err != nil {
				return err
			}
			st := rt.mgr.State()
			switch {
			case !st.Started:
				return challenge.ErrNotStarted
			case st.HasFailed:
				return fmt.Errorf("attempt %d: %w; run `hard75 start`", st.Attempt, challenge.ErrAttemptFailed)
			}

			catalog, err := rt.mgr.Catalog()
			if err != nil {
				return err
			}
			for _, id := range args {
				if !slices.ContainsFunc(catalog, func(t challenge.Task) bool { return t.ID == id }) {
					return fmt.Errorf("unknown task %q (see `hard75 tasks list`)", id)
				}
			}

			days, err := rt.mgr.Days(ctx)
			if err != nil {
				return err
			}
			var ids []string
			if today := findDay(days, st.CurrentDay); today != nil {
				ids = today.CompletedTaskIDs
			}
			if done {
				ids = append(slices.Clone(ids), args...)
			} else {
				ids = slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return slices.Contains(args, id) })
			}

			rec, err := rt.mgr.RecordTaskCompletion(ctx, st.CurrentDay, ids)
			if err != nil {
				return err
			}
			printDay(cmd, rec)
			return nil
		},
	}
}

func newSelfieCmd(flags *globalFlags, version string) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "selfie <file>",
		Short: "Attach today's progress photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			if _, err := rt.evaluate(ctx); err != nil {
				return err
			}
			path, err := photo.Import(rt.photoDir, args[0])
			if err != nil {
				return err
			}
			rec, err := rt.mgr.AttachSelfie(ctx, path, note)
			if err != nil {
				os.Remove(path)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Selfie saved to "+path)
			printDay(cmd, rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "short caption stored with the photo")
	return cmd
}

func newRestartCmd(flags *globalFlags, version string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Abandon the current attempt and start over from day 1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			if _, err := rt.evaluate(ctx); err != nil {
				return err
			}
			st := rt.mgr.State()
			if !yes {
				return fmt.Errorf("restart abandons attempt %d on day %d; pass --yes to confirm", st.Attempt, st.CurrentDay)
			}
			if err := rt.mgr.StartAttempt(ctx, !st.Started); err != nil {
				return err
			}
			st = rt.mgr.State()
			fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render(fmt.Sprintf("Attempt %d started. Day 1 of %d begins now.", st.Attempt, challenge.TotalDays)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the restart")
	return cmd
}

func newShareCmd(flags *globalFlags, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "share",
		Short: "Copy a progress summary to the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			if _, err := rt.evaluate(ctx); err != nil {
				return err
			}
			days, err := rt.mgr.Days(ctx)
			if err != nil {
				return err
			}
			text := challenge.Summarize(rt.mgr.State(), days).String()
			fmt.Fprintln(cmd.OutOrStdout(), text)
			if err := clipboard.WriteAll(text); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("Clipboard unavailable: "+err.Error()))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Copied to clipboard."))
			return nil
		},
	}
}

func findDay(days []challenge.DayRecord, n int) *challenge.DayRecord {
	for i := range days {
		if days[i].DayNumber == n {
			return &days[i]
		}
	}
	return nil
}

func printDay(cmd *cobra.Command, d *challenge.DayRecord) {
	if d == nil {
		return
	}
	status := string(d.Status)
	switch d.Status {
	case challenge.StatusCompleted:
		status = goodStyle.Render(status)
	case challenge.StatusInProgress:
		status = warnStyle.Render(status)
	case challenge.StatusFailed:
		status = errorStyle.Render(status)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Day %d: %s, %d/%d tasks, %d points\n",
		d.DayNumber, status, len(d.CompletedTaskIDs), d.TotalTasks, d.Score)
}
