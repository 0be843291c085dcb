package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoicepro-backend/config"
	"invoicepro-backend/routes"
	"invoicepro-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			noJobs, _ := cmd.Flags().GetBool("no-jobs")
			quiet, _ := cmd.Flags().GetBool("quiet")

			if config.App.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			svc, err := bootstrap(true)
			if err != nil {
				return err
			}

			var scheduler *services.Scheduler
			if !noJobs {
				scheduler, err = services.NewScheduler(svc, services.ScheduleConfig{
					Recurring:     config.App.RecurringSchedule,
					Overdue:       config.App.OverdueSchedule,
					OverdueRemind: config.App.OverdueSMSReminders,
					Backup:        config.App.BackupSchedule,
					BackupEnabled: config.App.BackupEnabled,
				})
				if err != nil {
					return err
				}
				scheduler.Start()
			}

			config.LogAllRequests = !quiet
			r := routes.SetupRouter()
			if !quiet {
				printRoutes(r)
			}

			srv := &http.Server{
				Addr:    ":" + config.App.Port,
				Handler: r,
			}
			go func() {
				log.Printf("Listening on :%s", config.App.Port)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("listen: %v", err)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			log.Println("Shutting down server...")

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if scheduler != nil {
				scheduler.Stop(ctx)
			}
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			log.Println("Server exited")
			return nil
		},
	}

	cmd.Flags().Bool("no-jobs", false, "Do not start the cron scheduler")
	cmd.Flags().Bool("quiet", false, "Skip the route table and per-request timing logs")

	return cmd
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
