package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytakahashi/shared-todo/internal/auth"
	"github.com/ytakahashi/shared-todo/internal/models"
)

func init() {
	userFlags(&TokenCommand)
	RootCmd.AddCommand(&TokenCommand)
}

var TokenCommand = cobra.Command{
	Use:   "token",
	Short: "Issue a session token",
	Long:  "Issue a session token for the given user, signed with AUTH_SECRET. Paste it on the sign-in page or send it as a Bearer token.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user := userFromFlags(cmd)

		authenticator, err := auth.NewAuthenticator(cfg.AuthSecret, cfg.TokenTTL)
		if err != nil {
			return err
		}
		token, err := authenticator.Issue(user)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func userFromFlags(cmd *cobra.Command) models.User {
	uid, _ := cmd.Flags().GetString("uid")
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	return models.User{ID: uid, Email: email, Name: name}
}
