package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"pm-quiz-runner/internal/app"
	"pm-quiz-runner/internal/config"
	transport "pm-quiz-runner/internal/transport/http"
)

// NewFeedbackCmd sends a free-text message to the organisers.
func NewFeedbackCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "feedback <message>",
		Short: "Leave feedback about the quiz",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			client := transport.NewClient(cfg.API.BaseURL, cfg.Team,
				transport.WithHTTPClient(apiHTTPClient(cfg)))

			ok, err := app.SendFeedback(cmd.Context(), client, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("feedback was not stored")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Thanks for your feedback!")
			return nil
		},
	}
}
