package commands

import (
	"log"

	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := bootstrap(true); err != nil {
				return err
			}
			log.Println("[DB] migration complete")
			return nil
		},
	}
}
