// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification channels and outcomes.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

type NotificationLog struct {
	Base
	InvoiceID    uuid.UUID `gorm:"type:uuid;index;not null" json:"invoiceId"`
	Channel      string    `gorm:"type:varchar(20)" json:"channel"`
	Recipient    string    `json:"recipient"`
	Subject      string    `json:"subject"`
	Status       string    `gorm:"type:varchar(20)" json:"status"`
	ErrorMessage string    `gorm:"type:text" json:"errorMessage"`
	SentAt       time.Time `json:"sentAt"`

	Invoice *Invoice `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"-"`
}
