package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/ytakahashi/shared-todo/internal/access"
	"github.com/ytakahashi/shared-todo/internal/models"
	"github.com/ytakahashi/shared-todo/internal/services"
)

func init() {
	userFlags(&ListsCommand)
	RootCmd.AddCommand(&ListsCommand)
}

var ListsCommand = cobra.Command{
	Use:   "lists",
	Short: "Show the lists a user can see",
	Long:  "Show the lists a user owns or collaborates on, with their role and task progress.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user := userFromFlags(cmd)

		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		store, err := services.NewFirestoreService(ctx, cfg.ProjectID, opts...)
		if err != nil {
			return err
		}
		defer store.Close()

		lists, err := store.VisibleLists(ctx, user)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tROLE\tMEMBERS\tDONE")
		for _, list := range lists {
			tasks, err := store.ListTasks(ctx, list.ID)
			if err != nil {
				logger.Warn("tasks_unavailable", "list", list.ID, "error", err)
			}
			stats := models.StatsOf(tasks)
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/%d (%d%%)\n",
				list.ID, list.Name, access.ResolveRole(list, user), access.CollaboratorCount(list),
				stats.Completed, stats.Total, stats.Progress())
		}
		return w.Flush()
	},
}
