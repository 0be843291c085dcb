package models

import (
	"time"

	"github.com/google/uuid"
)

// Expense categories.
var ExpenseCategories = []string{
	"materials", "labor", "equipment", "fuel", "supplies",
	"utilities", "insurance", "office", "travel", "other",
}

type Expense struct {
	Base
	InvoiceID  *uuid.UUID `gorm:"type:uuid;index" json:"invoiceId"`
	PropertyID *uuid.UUID `gorm:"type:uuid;index" json:"propertyId"`

	Vendor        string    `gorm:"not null" json:"vendor"`
	Amount        float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date          time.Time `gorm:"not null;index" json:"date"`
	Category      string    `gorm:"type:varchar(30);index;default:'other'" json:"category"`
	Description   string    `gorm:"type:text" json:"description"`
	PaymentMethod string    `json:"paymentMethod"`

	ReceiptPath     string `json:"receiptPath"`
	ReceiptFileName string `json:"receiptFileName"`
	ReceiptMimeType string `json:"receiptMimeType"`
	IsDemo          bool   `gorm:"default:false" json:"isDemo"`

	Invoice  *Invoice  `gorm:"foreignKey:InvoiceID;constraint:OnDelete:SET NULL" json:"-"`
	Property *Property `gorm:"foreignKey:PropertyID;constraint:OnDelete:SET NULL" json:"-"`
}

func ValidExpenseCategory(c string) bool {
	for _, cat := range ExpenseCategories {
		if cat == c {
			return true
		}
	}
	return false
}
