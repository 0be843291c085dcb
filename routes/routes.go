package routes

import (
	"net/http"
	"time"

	"invoicepro-backend/config"
	"invoicepro-backend/controllers"
	"invoicepro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	origins := config.App.CORSOrigins
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger())
	r.MaxMultipartMemory = int64(config.App.MaxUploadMB) << 20

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.Static("/uploads", config.App.UploadDir)

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logout", controllers.Logout)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Profile and settings routes
		api.GET("/me", controllers.Me)
		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("", controllers.UpdateProfile)
			profile.PUT("/password", controllers.ChangePassword)
		}
		api.GET("/settings", controllers.GetSettings)

		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)

			customers.POST("/:id/notes", controllers.CustomerNotes.Create)
			customers.GET("/:id/notes", controllers.CustomerNotes.List)
			customers.PUT("/:id/notes/:noteId", controllers.CustomerNotes.Update)
			customers.DELETE("/:id/notes/:noteId", controllers.CustomerNotes.Delete)

			customers.POST("/:id/photos", controllers.CustomerPhotos.Upload)
			customers.GET("/:id/photos", controllers.CustomerPhotos.List)
			customers.PUT("/:id/photos/:photoId", controllers.CustomerPhotos.Update)
			customers.DELETE("/:id/photos/:photoId", controllers.CustomerPhotos.Delete)
		}

		// Property routes
		properties := api.Group("/properties")
		{
			properties.POST("", controllers.CreateProperty)
			properties.GET("", controllers.GetProperties)
			properties.GET("/:id", controllers.GetProperty)
			properties.PUT("/:id", controllers.UpdateProperty)
			properties.DELETE("/:id", controllers.DeleteProperty)

			properties.POST("/:id/notes", controllers.PropertyNotes.Create)
			properties.GET("/:id/notes", controllers.PropertyNotes.List)
			properties.PUT("/:id/notes/:noteId", controllers.PropertyNotes.Update)
			properties.DELETE("/:id/notes/:noteId", controllers.PropertyNotes.Delete)

			properties.POST("/:id/photos", controllers.PropertyPhotos.Upload)
			properties.GET("/:id/photos", controllers.PropertyPhotos.List)
			properties.PUT("/:id/photos/:photoId", controllers.PropertyPhotos.Update)
			properties.DELETE("/:id/photos/:photoId", controllers.PropertyPhotos.Delete)

			properties.POST("/:id/services", controllers.CreateService)
			properties.GET("/:id/services", controllers.GetServices)
			properties.PUT("/:id/services/:serviceId", controllers.UpdateService)
			properties.DELETE("/:id/services/:serviceId", controllers.DeleteService)
		}

		// Invoice routes
		invoices := api.Group("/invoices")
		{
			invoices.POST("", controllers.CreateInvoice)
			invoices.GET("", controllers.GetInvoices)
			invoices.POST("/overdue/sweep", controllers.SweepOverdue)
			invoices.GET("/:id", controllers.GetInvoice)
			invoices.PUT("/:id", controllers.UpdateInvoice)
			invoices.DELETE("/:id", controllers.DeleteInvoice)

			invoices.PATCH("/:id/status", controllers.UpdateInvoiceStatus)
			invoices.POST("/:id/mark-paid", controllers.MarkInvoicePaid)
			invoices.POST("/:id/duplicate", controllers.DuplicateInvoice)
			invoices.GET("/:id/pdf", controllers.GetInvoicePDF)
			invoices.POST("/:id/send", controllers.SendInvoice)
			invoices.POST("/:id/remind", controllers.SendInvoiceReminder)
			invoices.GET("/:id/notifications", controllers.GetInvoiceNotifications)

			invoices.POST("/:id/photos", controllers.InvoicePhotos.Upload)
			invoices.GET("/:id/photos", controllers.InvoicePhotos.List)
			invoices.PUT("/:id/photos/:photoId", controllers.InvoicePhotos.Update)
			invoices.DELETE("/:id/photos/:photoId", controllers.InvoicePhotos.Delete)
		}

		// Expense routes
		expenses := api.Group("/expenses")
		{
			expenses.POST("", controllers.CreateExpense)
			expenses.GET("", controllers.GetExpenses)
			expenses.POST("/parse-receipt", controllers.ParseReceipt)
			expenses.GET("/:id", controllers.GetExpense)
			expenses.PUT("/:id", controllers.UpdateExpense)
			expenses.DELETE("/:id", controllers.DeleteExpense)
			expenses.POST("/:id/receipt", controllers.UploadReceipt)
			expenses.DELETE("/:id/receipt", controllers.DeleteReceipt)
		}

		// Recurring invoice routes
		recurring := api.Group("/recurring-templates")
		{
			recurring.POST("", controllers.CreateRecurringTemplate)
			recurring.GET("", controllers.GetRecurringTemplates)
			recurring.POST("/run-due", controllers.RunDueRecurring)
			recurring.GET("/:id", controllers.GetRecurringTemplate)
			recurring.PUT("/:id", controllers.UpdateRecurringTemplate)
			recurring.DELETE("/:id", controllers.DeleteRecurringTemplate)
			recurring.POST("/:id/generate", controllers.GenerateRecurringInvoice)
			recurring.GET("/:id/preview", controllers.PreviewRecurringTemplate)
		}

		// Reports routes
		reportController := controllers.ReportController{}
		reports := api.Group("/reports")
		{
			reports.GET("/summary", reportController.GetSummary)
			reports.GET("/revenue", reportController.GetRevenue)
			reports.GET("/aging", reportController.GetAging)
			reports.GET("/expenses", reportController.GetExpensesByCategory)
			reports.GET("/profit-loss", reportController.GetProfitLoss)
			reports.GET("/top-customers", reportController.GetTopCustomers)
			reports.GET("/analytics", reportController.GetReportAnalytics)
		}

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)

		// Data export / import routes
		data := api.Group("/data")
		{
			data.POST("/export", controllers.CreateExport)
			data.GET("/exports", controllers.GetExports)
			data.GET("/exports/:name", controllers.DownloadExport)
			data.DELETE("/exports/:name", controllers.DeleteExport)
			data.POST("/import", controllers.ImportData)
		}

		// Backup routes
		backups := api.Group("/backups")
		{
			backups.GET("", controllers.GetBackups)
			backups.POST("", controllers.CreateBackup)
			backups.POST("/cleanup", controllers.CleanupBackups)
			backups.GET("/:name/download", controllers.DownloadBackup)
			backups.POST("/:name/restore", controllers.RestoreBackup)
			backups.DELETE("/:name", controllers.DeleteBackup)
		}

		// Demo data routes
		api.GET("/demo-data", controllers.GetDemoData)
		api.POST("/demo-data", controllers.SeedDemoData)
		api.DELETE("/demo-data", controllers.ClearDemoData)
	}

	return r
}
