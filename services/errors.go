package services

import "errors"

var (
	ErrNotFound              = errors.New("record not found")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrTemplateInactive      = errors.New("recurring template is inactive")
	ErrAlreadyGenerated      = errors.New("occurrence already generated")
	ErrInvalidSchedule       = errors.New("end date is before start date")
	ErrNoLineItems           = errors.New("at least one line item is required")
	ErrDuplicateNumber       = errors.New("invoice number already exists")
	ErrCustomerHasInvoices   = errors.New("customer has invoices")
	ErrBackupNotFound        = errors.New("backup not found")
	ErrExportNotFound        = errors.New("export not found")
	ErrInvalidFileName       = errors.New("invalid file name")
	ErrMailerNotConfigured   = errors.New("email is not configured")
	ErrSMSNotConfigured      = errors.New("sms is not configured")
	ErrNoRecipient           = errors.New("customer has no contact for this channel")
	ErrReceiptParserDisabled = errors.New("receipt parsing is not configured")
	ErrUnsupportedFormat     = errors.New("unsupported format")
	ErrUnsupportedFile       = errors.New("unsupported file type")
	ErrFileTooLarge          = errors.New("file too large")
	ErrInvalidImport         = errors.New("invalid import data")
)
