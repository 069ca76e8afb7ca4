package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"pm-quiz-runner/internal/app"
	"pm-quiz-runner/internal/config"
	"pm-quiz-runner/internal/domain"
	"pm-quiz-runner/internal/terminal"
	transport "pm-quiz-runner/internal/transport/http"
)

// NewLeaderboardCmd prints the leaderboard once, or keeps refreshing it.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var watch, live bool
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := transport.NewClient(cfg.API.BaseURL, cfg.Team,
				transport.WithHTTPClient(apiHTTPClient(cfg)))
			switch {
			case live:
				return streamLeaderboard(ctx, cfg, out)
			case watch:
				interval := config.TTLDuration(cfg.Leaderboard.Interval, app.DefaultPollInterval)
				poller := app.NewLeaderboardPoller(client, interval, func(entries []domain.LeaderboardEntry, err error) {
					fmt.Fprintf(out, "\n%s\n", time.Now().Format("15:04:05"))
					terminal.PrintLeaderboard(out, entries, err)
				})
				if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
					return err
				}
				return nil
			default:
				entries, err := client.FetchLeaderboard(ctx)
				terminal.PrintLeaderboard(out, entries, err)
				return err
			}
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "poll the leaderboard every interval")
	cmd.Flags().BoolVar(&live, "live", false, "follow pushed updates over websocket")
	return cmd
}

func streamLeaderboard(ctx context.Context, cfg config.Config, out io.Writer) error {
	stream, err := transport.NewLeaderboardStream(cfg.API.BaseURL)
	if err != nil {
		return err
	}
	err = stream.Run(ctx, func(lb domain.Leaderboard) {
		fmt.Fprintf(out, "\n%s\n", lb.UpdatedAt.Local().Format("15:04:05"))
		terminal.PrintLeaderboard(out, lb.Entries, nil)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
