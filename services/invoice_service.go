package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"invoicepro-backend/models"
	"invoicepro-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// transitions lists the statuses an invoice may move to by user action.
// Overdue is only ever derived from the due date.
var transitions = map[string][]string{
	models.StatusDraft:   {models.StatusUnpaid, models.StatusPaid},
	models.StatusUnpaid:  {models.StatusPaid, models.StatusDraft},
	models.StatusOverdue: {models.StatusPaid},
	models.StatusPaid:    {models.StatusUnpaid},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type InvoiceService struct {
	db               *gorm.DB
	Now              func() time.Time
	PaymentTermsDays int
}

func NewInvoiceService(db *gorm.DB, paymentTermsDays int) *InvoiceService {
	if paymentTermsDays <= 0 {
		paymentTermsDays = 30
	}
	return &InvoiceService{db: db, Now: time.Now, PaymentTermsDays: paymentTermsDays}
}

// InvoiceFilter narrows List.
type InvoiceFilter struct {
	Status     string
	Search     string
	CustomerID *uuid.UUID
	PropertyID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Offset     int
	Limit      int
}

// InvoiceUpdate carries the fields to change; nil means keep.
type InvoiceUpdate struct {
	InvoiceNumber *string
	CustomerID    *uuid.UUID
	PropertyID    *uuid.UUID
	ClearProperty bool
	InvoiceDate   *time.Time
	DueDate       *time.Time
	TaxRate       *float64
	PaymentMethod *string
	Notes         *string
	Terms         *string
	LineItems     []models.InvoiceLineItem
}

// NextInvoiceNumber returns an unused INV-YYYYMMDD-XXXXXX number.
func (s *InvoiceService) NextInvoiceNumber(tx *gorm.DB) (string, error) {
	for i := 0; i < 5; i++ {
		suffix, err := utils.GenerateRandomString(6)
		if err != nil {
			return "", err
		}
		number := "INV-" + s.Now().Format("20060102") + "-" + suffix
		var count int64
		if err := tx.Model(&models.Invoice{}).Where("invoice_number = ?", number).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return number, nil
		}
	}
	return "", errors.New("could not allocate invoice number")
}

func (s *InvoiceService) ensureCustomer(tx *gorm.DB, customerID uuid.UUID, propertyID *uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Customer{}).Where("id = ?", customerID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	if propertyID != nil {
		if err := tx.Model(&models.Property{}).
			Where("id = ? AND customer_id = ?", *propertyID, customerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("property %s: %w", *propertyID, ErrNotFound)
		}
	}
	return nil
}

// deriveStatus flips unpaid <-> overdue based on the due date.
func (s *InvoiceService) deriveStatus(inv *models.Invoice) {
	today := utils.BeginningOfDay(s.Now())
	switch {
	case inv.Status == models.StatusUnpaid && inv.DueDate.Before(today):
		inv.Status = models.StatusOverdue
	case inv.Status == models.StatusOverdue && !inv.DueDate.Before(today):
		inv.Status = models.StatusUnpaid
	}
	if inv.Status != models.StatusOverdue {
		inv.OverdueRemindedAt = nil
	}
}

// Create validates, numbers, totals and stores a new invoice with its line items.
func (s *InvoiceService) Create(inv *models.Invoice) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.create(tx, inv)
	})
}

func (s *InvoiceService) create(tx *gorm.DB, inv *models.Invoice) error {
	if len(inv.LineItems) == 0 {
		return ErrNoLineItems
	}
	if err := s.ensureCustomer(tx, inv.CustomerID, inv.PropertyID); err != nil {
		return err
	}

	if inv.InvoiceNumber == "" {
		number, err := s.NextInvoiceNumber(tx)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number
	} else {
		var count int64
		if err := tx.Model(&models.Invoice{}).Where("invoice_number = ?", inv.InvoiceNumber).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateNumber
		}
	}

	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = utils.BeginningOfDay(s.Now())
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = inv.InvoiceDate.AddDate(0, 0, s.PaymentTermsDays)
	}

	switch inv.Status {
	case "":
		inv.Status = models.StatusUnpaid
	case models.StatusDraft, models.StatusUnpaid:
	case models.StatusPaid:
		if inv.PaymentDate == nil {
			today := utils.BeginningOfDay(s.Now())
			inv.PaymentDate = &today
		}
	default:
		return fmt.Errorf("status %q: %w", inv.Status, ErrInvalidTransition)
	}
	s.deriveStatus(inv)

	ApplyTotals(inv)
	return tx.Create(inv).Error
}

// Get loads an invoice with its line items in order.
func (s *InvoiceService) Get(id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Customer").
		Preload("Property").
		Preload("Photos").
		First(&inv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &inv, err
}

// List returns one page of invoices and the total match count.
func (s *InvoiceService) List(f InvoiceFilter) ([]models.Invoice, int64, error) {
	q := s.db.Model(&models.Invoice{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.PropertyID != nil {
		q = q.Where("property_id = ?", *f.PropertyID)
	}
	if f.From != nil {
		q = q.Where("invoice_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("invoice_date <= ?", *f.To)
	}
	if f.Search != "" {
		q = q.Where("LOWER(invoice_number) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = utils.DefaultPageSize
	}
	var invoices []models.Invoice
	err := q.
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Customer").
		Order("invoice_date DESC, invoice_number DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&invoices).Error
	return invoices, total, err
}

// Update applies changes and recomputes totals. Line items, when given, replace the existing ones.
func (s *InvoiceService) Update(id uuid.UUID, u InvoiceUpdate) (*models.Invoice, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
			First(&inv, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if u.InvoiceNumber != nil && *u.InvoiceNumber != inv.InvoiceNumber {
			var count int64
			if err := tx.Model(&models.Invoice{}).
				Where("invoice_number = ? AND id <> ?", *u.InvoiceNumber, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateNumber
			}
			inv.InvoiceNumber = *u.InvoiceNumber
		}
		if u.CustomerID != nil {
			inv.CustomerID = *u.CustomerID
		}
		if u.ClearProperty {
			inv.PropertyID = nil
		} else if u.PropertyID != nil {
			inv.PropertyID = u.PropertyID
		}
		if u.CustomerID != nil || u.PropertyID != nil {
			if err := s.ensureCustomer(tx, inv.CustomerID, inv.PropertyID); err != nil {
				return err
			}
		}
		if u.InvoiceDate != nil {
			inv.InvoiceDate = *u.InvoiceDate
		}
		if u.DueDate != nil {
			inv.DueDate = *u.DueDate
		}
		if u.TaxRate != nil {
			inv.TaxRate = *u.TaxRate
		}
		if u.PaymentMethod != nil {
			inv.PaymentMethod = *u.PaymentMethod
		}
		if u.Notes != nil {
			inv.Notes = *u.Notes
		}
		if u.Terms != nil {
			inv.Terms = *u.Terms
		}

		if u.LineItems != nil {
			if len(u.LineItems) == 0 {
				return ErrNoLineItems
			}
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceLineItem{}).Error; err != nil {
				return err
			}
			for i := range u.LineItems {
				u.LineItems[i].ID = uuid.Nil
				u.LineItems[i].InvoiceID = inv.ID
			}
			inv.LineItems = u.LineItems
		}

		s.deriveStatus(&inv)
		ApplyTotals(&inv)

		if u.LineItems != nil {
			if err := tx.Create(&inv.LineItems).Error; err != nil {
				return err
			}
		}
		return tx.Omit("LineItems", "Customer", "Property", "Photos").Save(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// ChangeStatus moves an invoice to target if the transition is allowed.
// paymentDate defaults to today when marking paid.
func (s *InvoiceService) ChangeStatus(id uuid.UUID, target string, paymentDate *time.Time, method string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.deriveStatus(&inv)
	if inv.Status == target {
		return s.Get(id)
	}
	if !CanTransition(inv.Status, target) {
		return nil, fmt.Errorf("%s -> %s: %w", inv.Status, target, ErrInvalidTransition)
	}

	updates := map[string]interface{}{"status": target}
	switch target {
	case models.StatusPaid:
		pd := utils.BeginningOfDay(s.Now())
		if paymentDate != nil {
			pd = *paymentDate
		}
		updates["payment_date"] = pd
		if method != "" {
			updates["payment_method"] = method
		}
	case models.StatusUnpaid, models.StatusDraft:
		updates["payment_date"] = nil
		inv.Status = target
		s.deriveStatus(&inv)
		updates["status"] = inv.Status
		if inv.Status != models.StatusOverdue {
			updates["overdue_reminded_at"] = nil
		}
	}

	if err := s.db.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// MarkPaid sets the invoice paid with the given payment date (today when nil).
func (s *InvoiceService) MarkPaid(id uuid.UUID, paymentDate *time.Time, method string) (*models.Invoice, error) {
	return s.ChangeStatus(id, models.StatusPaid, paymentDate, method)
}

// MarkSent records delivery and promotes drafts to unpaid.
func (s *InvoiceService) MarkSent(id uuid.UUID) error {
	var inv models.Invoice
	if err := s.db.First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	now := s.Now()
	updates := map[string]interface{}{"sent_at": now}
	if inv.Status == models.StatusDraft {
		inv.Status = models.StatusUnpaid
		s.deriveStatus(&inv)
		updates["status"] = inv.Status
	}
	return s.db.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error
}

// OverdueAwaitingReminder lists overdue invoices the sweep has not texted yet.
func (s *InvoiceService) OverdueAwaitingReminder() ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.Preload("Customer").
		Where("status = ? AND overdue_reminded_at IS NULL", models.StatusOverdue).
		Order("due_date ASC").
		Find(&invoices).Error
	return invoices, err
}

// MarkOverdueReminded records that the overdue reminder went out.
func (s *InvoiceService) MarkOverdueReminded(id uuid.UUID) error {
	return s.db.Model(&models.Invoice{}).Where("id = ?", id).
		Update("overdue_reminded_at", s.Now()).Error
}

// RefreshOverdue marks unpaid invoices past their due date as overdue and
// reverts overdue invoices whose due date moved forward. Returns the invoices that became overdue.
func (s *InvoiceService) RefreshOverdue() ([]models.Invoice, error) {
	today := utils.BeginningOfDay(s.Now())

	var flipped []models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Customer").
			Where("status = ? AND due_date < ?", models.StatusUnpaid, today).
			Find(&flipped).Error; err != nil {
			return err
		}
		if len(flipped) > 0 {
			ids := make([]uuid.UUID, len(flipped))
			for i := range flipped {
				ids[i] = flipped[i].ID
				flipped[i].Status = models.StatusOverdue
			}
			if err := tx.Model(&models.Invoice{}).Where("id IN ?", ids).
				Update("status", models.StatusOverdue).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Invoice{}).
			Where("status = ? AND due_date >= ?", models.StatusOverdue, today).
			Updates(map[string]interface{}{"status": models.StatusUnpaid, "overdue_reminded_at": nil}).Error
	})
	return flipped, err
}

// Duplicate copies an invoice as a new draft dated today.
func (s *InvoiceService) Duplicate(id uuid.UUID) (*models.Invoice, error) {
	src, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	today := utils.BeginningOfDay(s.Now())
	terms := utils.DaysBetween(src.InvoiceDate, src.DueDate)
	if terms < 0 {
		terms = s.PaymentTermsDays
	}

	dup := models.Invoice{
		CustomerID:    src.CustomerID,
		PropertyID:    src.PropertyID,
		InvoiceDate:   today,
		DueDate:       today.AddDate(0, 0, terms),
		TaxRate:       src.TaxRate,
		Status:        models.StatusDraft,
		PaymentMethod: src.PaymentMethod,
		Notes:         src.Notes,
		Terms:         src.Terms,
	}
	for _, li := range src.LineItems {
		dup.LineItems = append(dup.LineItems, models.InvoiceLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
		})
	}
	if err := s.Create(&dup); err != nil {
		return nil, err
	}
	return s.Get(dup.ID)
}

// Delete removes the invoice and everything it owns. Expenses and service
// history entries are unlinked. Returns stored photo paths for file cleanup.
func (s *InvoiceService) Delete(id uuid.UUID) ([]string, error) {
	var paths []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Preload("Photos").First(&inv, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		for _, p := range inv.Photos {
			paths = append(paths, p.FilePath)
		}
		if err := tx.Model(&models.Expense{}).Where("invoice_id = ?", id).Update("invoice_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ServiceHistory{}).Where("invoice_id = ?", id).Update("invoice_id", nil).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{&models.InvoiceLineItem{}, &models.InvoicePhoto{}, &models.NotificationLog{}} {
			if err := tx.Where("invoice_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&inv).Error
	})
	return paths, err
}
