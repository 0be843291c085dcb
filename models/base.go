package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the UUID key and timestamps shared by every table.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Customer{},
		&CustomerNote{},
		&CustomerPhoto{},
		&Property{},
		&PropertyNote{},
		&PropertyPhoto{},
		&RecurringTemplate{},
		&Invoice{},
		&InvoiceLineItem{},
		&InvoicePhoto{},
		&ServiceHistory{},
		&Expense{},
		&NotificationLog{},
	}
}

// customerEmailIndex keeps non-empty customer emails unique regardless of case.
const customerEmailIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email_lower
	ON customers (LOWER(email)) WHERE email <> ''`

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return err
	}
	return db.Exec(customerEmailIndex).Error
}
