package cmd

import (
	"fmt"

	"github.com/Togather-Foundation/listings/internal/auth"
	"github.com/spf13/cobra"
)

func newTokenCommand(global *globalOptions) *cobra.Command {
	var claims auth.Claims
	var role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a token for local testing",
		Long: `Sign a token with the configured JWT secret without touching the database.

Example:
  server token --id 01HYX3KQW7ERTV9XNBM2P8QJZF --email dev@example.com --role organizer`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			parsed, ok := auth.ParseRole(role)
			if !ok {
				return fmt.Errorf("invalid role %q: must be fan or organizer", role)
			}
			claims.Role = parsed

			token, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Issue(claims)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&claims.ID, "id", "", "user id (required)")
	cmd.Flags().StringVar(&claims.Email, "email", "", "user email")
	cmd.Flags().StringVar(&claims.Name, "name", "", "user name")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleOrganizer), "fan or organizer")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
