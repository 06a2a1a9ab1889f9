package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var errMigrationsUnsupported = errors.New("the configured storage backend has no managed schema; provision tables externally")

func (r *runner) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Payment cache maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached payment snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				if err := app.UseCase.ClearCache(ctx); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]string{"cache": "cleared"})
			})
		},
	})
	return cmd
}

func (r *runner) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the payments schema",
		Long: `Postgres with MIGRATIONS=1 applies the embedded SQL migrations.
Any other SQL setup runs AutoMigrate over the payment models.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				if app.Migrate == nil {
					return errMigrationsUnsupported
				}
				if err := app.Migrate(ctx); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]string{"schema": "ready"})
			})
		},
	}
}
