package models

import (
	"time"

	"github.com/google/uuid"
)

// Property types.
const (
	PropertyResidential = "residential"
	PropertyCommercial  = "commercial"
	PropertyRental      = "rental"
	PropertyOther       = "other"
)

type Property struct {
	Base
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`

	Name         string   `json:"name"`
	AddressLine1 string   `gorm:"not null" json:"addressLine1"`
	AddressLine2 string   `json:"addressLine2"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	PostalCode   string   `json:"postalCode"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`

	PropertyType string   `gorm:"type:varchar(20);default:'residential'" json:"propertyType"`
	YearBuilt    *int     `json:"yearBuilt"`
	SquareFeet   *int     `json:"squareFeet"`
	Bedrooms     *int     `json:"bedrooms"`
	Bathrooms    *float64 `json:"bathrooms"`
	LotSize      string   `json:"lotSize"`

	GateCode    string `json:"gateCode"`
	KeyLocation string `json:"keyLocation"`
	AccessNotes string `gorm:"type:text" json:"accessNotes"`
	IsDemo      bool   `gorm:"default:false" json:"isDemo"`

	Customer       *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Notes          []PropertyNote   `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`
	Photos         []PropertyPhoto  `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
	ServiceHistory []ServiceHistory `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"serviceHistory,omitempty"`
}

func ValidPropertyType(t string) bool {
	switch t {
	case PropertyResidential, PropertyCommercial, PropertyRental, PropertyOther:
		return true
	}
	return false
}

type PropertyNote struct {
	Base
	PropertyID uuid.UUID `gorm:"type:uuid;index;not null" json:"propertyId"`
	Category   string    `gorm:"type:varchar(20);default:'general'" json:"category"`
	Content    string    `gorm:"type:text;not null" json:"content"`
}

type PropertyPhoto struct {
	Base
	PropertyID uuid.UUID `gorm:"type:uuid;index;not null" json:"propertyId"`
	PhotoFile
}

type ServiceHistory struct {
	Base
	PropertyID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"propertyId"`
	InvoiceID   *uuid.UUID `gorm:"type:uuid;index" json:"invoiceId"`
	ServiceDate time.Time  `gorm:"not null" json:"serviceDate"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Technician  string     `json:"technician"`
	Cost        float64    `gorm:"type:decimal(10,2);default:0" json:"cost"`

	Invoice *Invoice `gorm:"foreignKey:InvoiceID;constraint:OnDelete:SET NULL" json:"-"`
}
