package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/hard75/internal/leaderboard"
)

func newLeaderboardCmd(flags *globalFlags, version string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the best completed attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			entries, err := rt.board.Fetch(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("fetch leaderboard: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Nobody has finished yet.")
				return nil
			}
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%-4s %-24s %8s  %s", "#", "NAME", "SCORE", "FINISHED")))
			for i, e := range entries {
				name := e.UserName
				if e.UserID == rt.userID {
					name = headingStyle.Render(name)
				}
				fmt.Fprintf(out, "%-4d %-24s %8s  %s\n", i+1, name, humanize.Comma(int64(e.TotalScore)), e.CompletedAt.Local().Format("2006-01-02"))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}

func newServeCmd(flags *globalFlags, version string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the leaderboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := openRuntime(ctx, flags, version)
			if err != nil {
				return err
			}
			defer rt.close()

			if addr == "" {
				addr = rt.cfg.Leaderboard.ListenAddr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Leaderboard listening on %s\n", addr)
			return leaderboard.NewServer(rt.store, rt.log).Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default leaderboard.listen_addr)")
	return cmd
}
