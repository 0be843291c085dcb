package models

import "github.com/google/uuid"

type Customer struct {
	Base

	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"index" json:"email"`
	Phone        string `json:"phone"`
	CompanyName  string `json:"companyName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	Notes        string `gorm:"type:text" json:"notes"`
	IsDemo       bool   `gorm:"default:false" json:"isDemo"`

	Properties []Property      `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"properties,omitempty"`
	Invoices   []Invoice       `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"invoices,omitempty"`
	NoteList   []CustomerNote  `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"noteList,omitempty"`
	Photos     []CustomerPhoto `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
}

type CustomerNote struct {
	Base
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`
	Category   string    `gorm:"type:varchar(20);default:'general'" json:"category"`
	Content    string    `gorm:"type:text;not null" json:"content"`
}

type CustomerPhoto struct {
	Base
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`
	PhotoFile
}
