// Package cli is the hard75 command tree. Without a subcommand it opens the
// TUI; the subcommands expose the same operations for scripts and cron.
package cli

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/hard75/internal/tui"
)

// clock is the time source of every command.
var clock = time.Now

type globalFlags struct {
	configPath string
	dbPath     string
}

func newRootCmd(version string) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "hard75",
		Short: "75 Hard challenge tracker",
		Long: `hard75 tracks the 75 Hard challenge: 75 consecutive days of completing
every daily task. Miss a day and the challenge starts over from day 1.

Run without arguments to open the interactive tracker.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags, version)
		},
	}
	root.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default <config dir>/hard75/config.toml)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "database path (overrides storage.db_path)")

	root.AddCommand(
		newStartCmd(flags, version),
		newStatusCmd(flags, version),
		newCheckCmd(flags, version),
		newMarkCmd(flags, version, true),
		newMarkCmd(flags, version, false),
		newSelfieCmd(flags, version),
		newRestartCmd(flags, version),
		newShareCmd(flags, version),
		newTasksCmd(flags, version),
		newExportCmd(flags, version),
		newGalleryCmd(flags, version),
		newPurgeCmd(flags, version),
		newLeaderboardCmd(flags, version),
		newServeCmd(flags, version),
	)
	return root
}

// Execute runs the command tree and reports a failure on stderr.
func Execute(version string) error {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		return err
	}
	return nil
}

func runTUI(cmd *cobra.Command, flags *globalFlags, version string) error {
	rt, err := openRuntime(cmd.Context(), flags, version)
	if err != nil {
		return err
	}
	defer rt.close()

	app := tui.NewApp(tui.Deps{
		Manager:       rt.mgr,
		Store:         rt.store,
		Board:         rt.board,
		UserID:        rt.userID,
		CheckInterval: rt.cfg.Challenge.CheckInterval.Std(),
		PhotoDir:      rt.photoDir,
		Clock:         clock,
		Logger:        rt.log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
