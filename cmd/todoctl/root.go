package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ytakahashi/shared-todo/internal/config"
)

var (
	// flags
	envFile string

	cfg    *config.Config
	logger *slog.Logger
)

func init() {
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
}

var RootCmd = cobra.Command{
	Use:          "todoctl",
	Short:        "Operate a shared todo deployment",
	Long:         "Issue development session tokens and inspect the lists a user can see.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
		return nil
	},
}

// userFlags registers the identity flags shared by the subcommands.
func userFlags(cmd *cobra.Command) {
	cmd.Flags().String("uid", "", "user id")
	cmd.Flags().String("email", "", "user email")
	cmd.Flags().String("name", "", "display name")
	_ = cmd.MarkFlagRequired("uid")
	_ = cmd.MarkFlagRequired("email")
}
