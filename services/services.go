package services

import (
	"invoicepro-backend/config"

	"gorm.io/gorm"
)

// Services bundles every service built from one database handle and config.
type Services struct {
	Invoices      *InvoiceService
	Recurring     *RecurringService
	Reports       *ReportService
	Notifications *NotificationService
	Storage       *Storage
	Receipts      *ReceiptParser
	Exports       *ExportService
	Imports       *ImportService
	Backups       *BackupService
	Demo          *DemoService
}

func New(db *gorm.DB, cfg config.Config) *Services {
	invoices := NewInvoiceService(db, cfg.DefaultPaymentTermsDays)
	recurring := NewRecurringService(db, invoices)

	notifications := NewNotificationService(db, invoices, BusinessInfo{
		Name:    cfg.BusinessName,
		Address: cfg.BusinessAddress,
		Email:   cfg.BusinessEmail,
	})
	notifications.ConfigureSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	notifications.ConfigureTwilio(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	recurring.Sender = notifications

	return &Services{
		Invoices:      invoices,
		Recurring:     recurring,
		Reports:       NewReportService(db),
		Notifications: notifications,
		Storage:       NewStorage(cfg.UploadDir, cfg.MaxUploadMB),
		Receipts:      NewReceiptParser(cfg.ReceiptParserURL, cfg.ReceiptParserAPIKey),
		Exports:       NewExportService(db, cfg.ExportDir),
		Imports:       NewImportService(db, invoices, recurring),
		Backups:       NewBackupService(cfg.BackupDir, cfg.DatabaseURL, cfg.PGDumpPath, cfg.PSQLPath, cfg.BackupRetentionDays),
		Demo:          NewDemoService(db, invoices),
	}
}
