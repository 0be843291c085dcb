package commands

import (
	"fmt"

	"invoicepro-backend/config"
	"invoicepro-backend/controllers"
	"invoicepro-backend/models"
	"invoicepro-backend/services"

	"github.com/spf13/cobra"
)

// RootCmd builds the invoicepro command tree. Running it without a
// subcommand starts the HTTP server.
func RootCmd() *cobra.Command {
	serve := ServeCmd()
	root := &cobra.Command{
		Use:           "invoicepro",
		Short:         "InvoicePro backend: invoicing, recurring billing and reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(
		serve,
		MigrateCmd(),
		BackupCmd(),
		DataCmd(),
		RecurringCmd(),
		OverdueCmd(),
		DemoCmd(),
	)
	return root
}

// bootstrap connects to the database, optionally migrates, and wires services.
func bootstrap(migrate bool) (*services.Services, error) {
	if err := config.ConnectDB(config.App.DatabaseURL); err != nil {
		return nil, err
	}
	if migrate {
		if err := models.Migrate(config.DB); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	svc := services.New(config.DB, config.App)
	controllers.Setup(svc)
	return svc, nil
}
