package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"trivia-quiz/internal/config"
	transport "trivia-quiz/internal/transport/http"
)

// NewTokenCmd issues a bearer token for a player.
func NewTokenCmd(configPath *string) *cobra.Command {
	var userID, name string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a player token signed with auth.jwtSecret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if userID == "" {
				userID = uuid.NewString()
			}
			if name == "" {
				name = userID
				if len(name) > 8 {
					name = "player-" + name[:8]
				}
			}
			auth := transport.NewAuthenticator(jwtSecret(cfg), config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
			token, err := auth.Issue(userID, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (random when empty)")
	cmd.Flags().StringVar(&name, "name", "", "display name shown on the leaderboard")
	return cmd
}
