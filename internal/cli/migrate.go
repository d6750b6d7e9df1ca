package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/soochol/stickyparam/internal/config"
	"github.com/soochol/stickyparam/internal/db"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			url := opts.cfg.Database.URL
			if url == "" {
				return errors.New("database.url is not set (or " + config.EnvDatabaseURL + ")")
			}

			database, err := db.New(cmd.Context(), url)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Migrate(cmd.Context()); err != nil {
				return err
			}
			slog.Info("schema applied")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return err
		},
	}
}
