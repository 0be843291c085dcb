package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice statuses.
const (
	StatusDraft   = "draft"
	StatusUnpaid  = "unpaid"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

type Invoice struct {
	Base

	InvoiceNumber string     `gorm:"uniqueIndex;not null" json:"invoiceNumber"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	PropertyID    *uuid.UUID `gorm:"type:uuid;index" json:"propertyId"`

	InvoiceDate time.Time  `gorm:"not null" json:"invoiceDate"`
	DueDate     time.Time  `gorm:"not null;index" json:"dueDate"`
	PaymentDate *time.Time `json:"paymentDate"`

	TaxRate   float64 `gorm:"type:decimal(6,3);default:0" json:"taxRate"`
	Subtotal  float64 `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	TaxAmount float64 `gorm:"type:decimal(12,2);not null;default:0" json:"taxAmount"`
	Total     float64 `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	Status        string     `gorm:"type:varchar(20);index;not null;default:'unpaid'" json:"status"`
	PaymentMethod string     `json:"paymentMethod"`
	Notes         string     `gorm:"type:text" json:"notes"`
	Terms         string     `gorm:"type:text" json:"terms"`
	SentAt        *time.Time `json:"sentAt"`

	// OverdueRemindedAt is set once the overdue sweep has texted the customer.
	OverdueRemindedAt *time.Time `json:"overdueRemindedAt"`

	RecurringTemplateID *uuid.UUID `gorm:"type:uuid;index" json:"recurringTemplateId"`
	IsDemo              bool       `gorm:"default:false" json:"isDemo"`

	Customer  *Customer         `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Property  *Property         `gorm:"foreignKey:PropertyID;constraint:OnDelete:SET NULL" json:"property,omitempty"`
	LineItems []InvoiceLineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lineItems"`
	Photos    []InvoicePhoto    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
}

type InvoiceLineItem struct {
	Base
	InvoiceID   uuid.UUID `gorm:"type:uuid;index;not null" json:"invoiceId"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	Description string    `gorm:"not null" json:"description"`
	Quantity    float64   `gorm:"type:decimal(10,3);not null" json:"quantity"`
	UnitPrice   float64   `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	LineTotal   float64   `gorm:"type:decimal(12,2);not null" json:"lineTotal"`
}

type InvoicePhoto struct {
	Base
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null" json:"invoiceId"`
	PhotoFile
}

func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusUnpaid, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// IsOutstanding reports whether money is still owed on the invoice.
func (i *Invoice) IsOutstanding() bool {
	return i.Status == StatusUnpaid || i.Status == StatusOverdue
}
