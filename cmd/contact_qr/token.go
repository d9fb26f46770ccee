package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/contact-qr/internal/config"
	"github.com/jonathan/contact-qr/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the card API",
	Long: `Signs a JWT with JWT_SECRET for the given user. Cards stored with the
token belong to that user. A random user ID is used when --user is omitted.

Example:
  JWT_SECRET=... contact_qr token --user 3f6c1a52-6f43-4c0e-9a5e-2a1b9f0f7d11`,
	RunE: runToken,
}

var tokenUser string

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "User ID (UUID) the token is issued to")
}

func runToken(cmd *cobra.Command, _ []string) error {
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	userID, token, err := issueToken(jwtCfg, tokenUser)
	if err != nil {
		return err
	}
	if tokenUser == "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "User: %s\n", userID)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func issueToken(cfg *config.JWTConfig, user string) (uuid.UUID, string, error) {
	userID := uuid.New()
	if user != "" {
		parsed, err := uuid.Parse(user)
		if err != nil {
			return uuid.Nil, "", fmt.Errorf("invalid user ID %q: %w", user, err)
		}
		userID = parsed
	}

	token, err := server.NewJWTService(cfg).GenerateToken(userID)
	if err != nil {
		return uuid.Nil, "", err
	}
	return userID, token, nil
}
