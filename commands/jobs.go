package commands

import (
	"fmt"

	"invoicepro-backend/config"

	"github.com/spf13/cobra"
)

func RecurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Recurring invoice jobs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Generate every due recurring invoice",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := bootstrap(false)
			if err != nil {
				return err
			}
			result, err := svc.Recurring.GenerateDue()
			if err != nil {
				return err
			}
			for _, number := range result.Generated {
				fmt.Printf("generated %s\n", number)
			}
			for _, name := range result.Failed {
				fmt.Printf("failed    %s\n", name)
			}
			return nil
		},
	})
	return cmd
}

func OverdueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "Overdue invoice jobs",
	}
	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Mark past-due invoices overdue",
		RunE: func(cmd *cobra.Command, args []string) error {
			remind := config.App.OverdueSMSReminders
			if cmd.Flags().Changed("remind") {
				remind, _ = cmd.Flags().GetBool("remind")
			}
			svc, err := bootstrap(false)
			if err != nil {
				return err
			}
			result, err := svc.SweepOverdue(remind)
			if err != nil {
				return err
			}
			fmt.Printf("marked overdue %d, reminded %d, failed %d\n",
				result.MarkedOverdue, result.Reminded, result.Failed)
			return nil
		},
	}
	sweep.Flags().Bool("remind", false, "Text customers of newly overdue invoices (default OVERDUE_SMS_REMINDERS)")
	cmd.AddCommand(sweep)
	return cmd
}

func DemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Load or remove sample data",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "seed",
			Short: "Load sample customers, invoices and expenses",
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := bootstrap(true)
				if err != nil {
					return err
				}
				counts, err := svc.Demo.Seed()
				if err != nil {
					return err
				}
				fmt.Println(counts)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all sample data",
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := bootstrap(false)
				if err != nil {
					return err
				}
				counts, err := svc.Demo.Clear()
				if err != nil {
					return err
				}
				fmt.Println(counts)
				return nil
			},
		},
	)
	return cmd
}
