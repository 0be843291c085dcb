package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func BackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage pg_dump database backups",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Dump the database now",
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := bootstrap(false)
				if err != nil {
					return err
				}
				file, err := svc.Backups.Create(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("created %s (%d bytes)\n", file.Name, file.Size)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List backups, newest first",
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := bootstrap(false)
				if err != nil {
					return err
				}
				files, err := svc.Backups.List()
				if err != nil {
					return err
				}
				fmt.Printf("%-32s  %12s  %s\n", "Name", "Size", "Created")
				for _, f := range files {
					fmt.Printf("%-32s  %12d  %s\n", f.Name, f.Size, f.CreatedAt.Format("2006-01-02 15:04:05"))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "restore <name>",
			Short: "Restore a backup into the database",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := bootstrap(false)
				if err != nil {
					return err
				}
				if err := svc.Backups.Restore(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Printf("restored %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "cleanup",
			Short: "Delete backups older than BACKUP_RETENTION_DAYS",
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := bootstrap(false)
				if err != nil {
					return err
				}
				removed, err := svc.Backups.Cleanup()
				if err != nil {
					return err
				}
				for _, name := range removed {
					fmt.Printf("removed %s\n", name)
				}
				return nil
			},
		},
	)
	return cmd
}
