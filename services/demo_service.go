package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"invoicepro-backend/models"
	"invoicepro-backend/utils"

	"gorm.io/gorm"
)

var ErrDemoDataExists = errors.New("demo data already loaded")

type DemoService struct {
	db       *gorm.DB
	invoices *InvoiceService
	Now      func() time.Time
}

func NewDemoService(db *gorm.DB, invoices *InvoiceService) *DemoService {
	return &DemoService{db: db, invoices: invoices, Now: time.Now}
}

// Counts reports how many demo rows exist per entity.
func (s *DemoService) Counts() (map[string]int64, error) {
	tables := map[string]interface{}{
		EntityCustomers:          &models.Customer{},
		EntityProperties:         &models.Property{},
		EntityInvoices:           &models.Invoice{},
		EntityExpenses:           &models.Expense{},
		EntityRecurringTemplates: &models.RecurringTemplate{},
	}
	counts := map[string]int64{}
	for name, m := range tables {
		var n int64
		if err := s.db.Model(m).Where("is_demo = ?", true).Count(&n).Error; err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, nil
}

func ptr[T any](v T) *T { return &v }

type demoInvoice struct {
	customer int
	property int
	daysAgo  int
	status   string
	items    []models.InvoiceLineItem
}

// Seed loads a small sample business: customers with properties, invoices in
// every status, expenses and recurring templates. Everything is flagged is_demo.
func (s *DemoService) Seed() (map[string]int64, error) {
	counts, err := s.Counts()
	if err != nil {
		return nil, err
	}
	if counts[EntityCustomers] > 0 {
		return counts, ErrDemoDataExists
	}

	today := utils.BeginningOfDay(s.Now())
	customers := []models.Customer{
		{Name: "Maria Alvarez", Email: "maria.alvarez@example.com", Phone: "+15125550101",
			AddressLine1: "412 Oak Street", City: "Austin", State: "TX", PostalCode: "78701", Country: "US", IsDemo: true},
		{Name: "Greenfield Apartments", Email: "office@greenfield.example.com", Phone: "+15125550142",
			CompanyName: "Greenfield Property Group", AddressLine1: "900 Congress Ave", City: "Austin",
			State: "TX", PostalCode: "78701", Country: "US", IsDemo: true},
		{Name: "Tom Becker", Email: "tom.becker@example.com", Phone: "+15125550177",
			AddressLine1: "77 Ridge Road", City: "Round Rock", State: "TX", PostalCode: "78664", Country: "US", IsDemo: true},
	}
	properties := []models.Property{
		{Name: "Home", AddressLine1: "412 Oak Street", City: "Austin", State: "TX", PostalCode: "78701",
			PropertyType: models.PropertyResidential, YearBuilt: ptr(1998), SquareFeet: ptr(1850),
			Bedrooms: ptr(3), Bathrooms: ptr(2.0), GateCode: "1234", IsDemo: true},
		{Name: "Building A", AddressLine1: "15 Greenfield Way", City: "Austin", State: "TX", PostalCode: "78702",
			PropertyType: models.PropertyRental, YearBuilt: ptr(2005), SquareFeet: ptr(24000),
			KeyLocation: "Leasing office", IsDemo: true},
		{Name: "Lake house", AddressLine1: "3 Shoreline Drive", City: "Marble Falls", State: "TX", PostalCode: "78654",
			PropertyType: models.PropertyResidential, YearBuilt: ptr(2012), SquareFeet: ptr(2400),
			Bedrooms: ptr(4), Bathrooms: ptr(3.5), AccessNotes: "Dog in backyard", IsDemo: true},
	}
	invoices := []demoInvoice{
		{0, 0, 45, models.StatusPaid, []models.InvoiceLineItem{
			{Description: "Gutter cleaning", Quantity: 1, UnitPrice: 180},
			{Description: "Downspout repair", Quantity: 2, UnitPrice: 45.5},
		}},
		{1, 1, 40, models.StatusUnpaid, []models.InvoiceLineItem{
			{Description: "HVAC filter replacement (per unit)", Quantity: 24, UnitPrice: 35},
		}},
		{1, 1, 10, models.StatusUnpaid, []models.InvoiceLineItem{
			{Description: "Hallway repaint", Quantity: 16, UnitPrice: 55},
			{Description: "Paint and supplies", Quantity: 1, UnitPrice: 312.4},
		}},
		{2, 2, 3, models.StatusDraft, []models.InvoiceLineItem{
			{Description: "Dock inspection", Quantity: 1, UnitPrice: 250},
		}},
		{2, 2, 75, models.StatusUnpaid, []models.InvoiceLineItem{
			{Description: "Storm damage cleanup", Quantity: 6, UnitPrice: 65},
		}},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&customers).Error; err != nil {
			return err
		}
		for i := range properties {
			properties[i].CustomerID = customers[i].ID
		}
		if err := tx.Create(&properties).Error; err != nil {
			return err
		}

		var created []models.Invoice
		for _, d := range invoices {
			date := today.AddDate(0, 0, -d.daysAgo)
			inv := models.Invoice{
				CustomerID:  customers[d.customer].ID,
				PropertyID:  &properties[d.property].ID,
				InvoiceDate: date,
				DueDate:     date.AddDate(0, 0, 30),
				TaxRate:     8.25,
				Status:      d.status,
				Terms:       "Net 30",
				IsDemo:      true,
				LineItems:   d.items,
			}
			if d.status == models.StatusPaid {
				inv.PaymentDate = ptr(date.AddDate(0, 0, 12))
				inv.PaymentMethod = "check"
			}
			if err := s.invoices.create(tx, &inv); err != nil {
				return err
			}
			created = append(created, inv)
		}

		history := models.ServiceHistory{
			PropertyID:  properties[0].ID,
			InvoiceID:   &created[0].ID,
			ServiceDate: created[0].InvoiceDate,
			Description: "Gutter cleaning and downspout repair",
			Technician:  "Sam",
			Cost:        created[0].Total,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		expenses := []models.Expense{
			{Vendor: "Home Depot", Amount: 212.37, Date: today.AddDate(0, 0, -11), Category: "materials",
				InvoiceID: &created[2].ID, PropertyID: &properties[1].ID, PaymentMethod: "card", IsDemo: true},
			{Vendor: "Shell", Amount: 64.10, Date: today.AddDate(0, 0, -4), Category: "fuel",
				PaymentMethod: "card", IsDemo: true},
			{Vendor: "State Farm", Amount: 189, Date: utils.BeginningOfMonth(today), Category: "insurance",
				PaymentMethod: "bank transfer", IsDemo: true},
		}
		if err := tx.Create(&expenses).Error; err != nil {
			return err
		}

		tmpl := models.RecurringTemplate{
			CustomerID:       customers[1].ID,
			PropertyID:       &properties[1].ID,
			Name:             "Monthly common area cleaning",
			Frequency:        models.FrequencyMonthly,
			StartDate:        today.AddDate(0, -1, 0),
			NextRunDate:      today.AddDate(0, 0, 5),
			IsActive:         true,
			TaxRate:          8.25,
			PaymentTermsDays: 15,
			IsDemo:           true,
		}
		if err := tmpl.SetItems([]models.TemplateLineItem{
			{Description: "Common area cleaning", Quantity: 1, UnitPrice: 450},
		}); err != nil {
			return err
		}
		return tx.Create(&tmpl).Error
	})
	if err != nil {
		return nil, fmt.Errorf("seed demo data: %w", err)
	}
	log.Printf("[DEMO] seeded demo data")
	return s.Counts()
}

// Clear removes every demo row and whatever hangs off it.
func (s *DemoService) Clear() (map[string]int64, error) {
	before, err := s.Counts()
	if err != nil {
		return nil, err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		demoInvoices := tx.Model(&models.Invoice{}).Select("id").Where("is_demo = ?", true)
		demoProperties := tx.Model(&models.Property{}).Select("id").Where("is_demo = ?", true)
		demoCustomers := tx.Model(&models.Customer{}).Select("id").Where("is_demo = ?", true)

		steps := []struct {
			model interface{}
			query string
			arg   interface{}
		}{
			{&models.Expense{}, "is_demo = ?", true},
			{&models.NotificationLog{}, "invoice_id IN (?)", demoInvoices},
			{&models.InvoicePhoto{}, "invoice_id IN (?)", demoInvoices},
			{&models.InvoiceLineItem{}, "invoice_id IN (?)", demoInvoices},
			{&models.ServiceHistory{}, "property_id IN (?)", demoProperties},
			{&models.Invoice{}, "is_demo = ?", true},
			{&models.RecurringTemplate{}, "is_demo = ?", true},
			{&models.PropertyNote{}, "property_id IN (?)", demoProperties},
			{&models.PropertyPhoto{}, "property_id IN (?)", demoProperties},
			{&models.Property{}, "is_demo = ?", true},
			{&models.CustomerNote{}, "customer_id IN (?)", demoCustomers},
			{&models.CustomerPhoto{}, "customer_id IN (?)", demoCustomers},
			{&models.Customer{}, "is_demo = ?", true},
		}
		for _, st := range steps {
			if err := tx.Where(st.query, st.arg).Delete(st.model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("clear demo data: %w", err)
	}
	log.Printf("[DEMO] cleared demo data")
	return before, nil
}
