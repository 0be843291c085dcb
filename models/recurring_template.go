package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Recurring frequencies.
const (
	FrequencyWeekly    = "weekly"
	FrequencyBiweekly  = "biweekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyYearly    = "yearly"
)

// TemplateLineItem is one line of the invoice blueprint stored as JSON.
type TemplateLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

type RecurringTemplate struct {
	Base
	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	PropertyID *uuid.UUID `gorm:"type:uuid;index" json:"propertyId"`

	Name        string     `gorm:"not null" json:"name"`
	Frequency   string     `gorm:"type:varchar(20);not null" json:"frequency"`
	StartDate   time.Time  `gorm:"not null" json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	NextRunDate time.Time  `gorm:"not null;index" json:"nextRunDate"`
	IsActive    bool       `gorm:"default:true" json:"isActive"`

	TaxRate          float64        `gorm:"type:decimal(6,3);default:0" json:"taxRate"`
	PaymentTermsDays int            `gorm:"default:30" json:"paymentTermsDays"`
	LineItems        datatypes.JSON `json:"lineItems"`
	Notes            string         `gorm:"type:text" json:"notes"`
	CreateAsDraft    bool           `gorm:"default:false" json:"createAsDraft"`
	AutoSend         bool           `gorm:"default:false" json:"autoSend"`

	MaxOccurrences       *int       `json:"maxOccurrences"`
	OccurrencesGenerated int        `gorm:"default:0" json:"occurrencesGenerated"`
	LastGeneratedAt      *time.Time `json:"lastGeneratedAt"`
	IsDemo               bool       `gorm:"default:false" json:"isDemo"`

	Customer *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"customer,omitempty"`
}

func ValidFrequency(f string) bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Items decodes the stored line item blueprint.
func (t *RecurringTemplate) Items() ([]TemplateLineItem, error) {
	var items []TemplateLineItem
	if len(t.LineItems) == 0 {
		return items, nil
	}
	err := json.Unmarshal(t.LineItems, &items)
	return items, err
}

// SetItems encodes items into the JSON column.
func (t *RecurringTemplate) SetItems(items []TemplateLineItem) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	t.LineItems = datatypes.JSON(b)
	return nil
}
