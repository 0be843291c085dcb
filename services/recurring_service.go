package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"invoicepro-backend/models"
	"invoicepro-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxCatchUp bounds how many missed occurrences one GenerateDue run creates per template.
const MaxCatchUp = 24

// errScheduleEnded is returned when the occurrence due is past the end date
// or the occurrence cap. Generate deactivates the template on it.
var errScheduleEnded = fmt.Errorf("%w: schedule has ended", ErrTemplateInactive)

// scheduleEnded reports whether an occurrence on runDate may no longer be generated.
func scheduleEnded(t *models.RecurringTemplate, runDate time.Time) bool {
	if t.EndDate != nil && runDate.After(*t.EndDate) {
		return true
	}
	return t.MaxOccurrences != nil && t.OccurrencesGenerated >= *t.MaxOccurrences
}

// NextRunDate returns the occurrence after from. Month based frequencies keep
// the start date's day of month, clamped to short months.
func NextRunDate(frequency string, start, from time.Time) (time.Time, error) {
	switch frequency {
	case models.FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case models.FrequencyBiweekly:
		return from.AddDate(0, 0, 14), nil
	case models.FrequencyMonthly:
		return utils.AddMonthsClamped(from, 1, start.Day()), nil
	case models.FrequencyQuarterly:
		return utils.AddMonthsClamped(from, 3, start.Day()), nil
	case models.FrequencyYearly:
		return utils.AddMonthsClamped(from, 12, start.Day()), nil
	}
	return time.Time{}, fmt.Errorf("frequency %q: %w", frequency, ErrUnsupportedFormat)
}

// InvoiceSender delivers a freshly generated invoice.
type InvoiceSender interface {
	SendInvoiceEmail(invoiceID uuid.UUID) error
}

type RecurringService struct {
	db       *gorm.DB
	invoices *InvoiceService
	Sender   InvoiceSender
	Now      func() time.Time
}

func NewRecurringService(db *gorm.DB, invoices *InvoiceService) *RecurringService {
	return &RecurringService{db: db, invoices: invoices, Now: time.Now}
}

// Prepare validates a template and fills NextRunDate for new templates.
// A template whose end date or occurrence cap has been reached is deactivated.
func (s *RecurringService) Prepare(t *models.RecurringTemplate) error {
	if !models.ValidFrequency(t.Frequency) {
		return fmt.Errorf("frequency %q: %w", t.Frequency, ErrUnsupportedFormat)
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return ErrInvalidSchedule
	}
	items, err := t.Items()
	if err != nil {
		return fmt.Errorf("line items: %w", err)
	}
	if len(items) == 0 {
		return ErrNoLineItems
	}
	if t.NextRunDate.IsZero() {
		t.NextRunDate = t.StartDate
	}
	if t.PaymentTermsDays <= 0 {
		t.PaymentTermsDays = s.invoices.PaymentTermsDays
	}
	if scheduleEnded(t, t.NextRunDate) {
		t.IsActive = false
	}
	return nil
}

// Preview lists the next n run dates of a template.
func (s *RecurringService) Preview(t *models.RecurringTemplate, n int) ([]time.Time, error) {
	var dates []time.Time
	next := t.NextRunDate
	for i := 0; i < n; i++ {
		if t.EndDate != nil && next.After(*t.EndDate) {
			break
		}
		if t.MaxOccurrences != nil && t.OccurrencesGenerated+i >= *t.MaxOccurrences {
			break
		}
		dates = append(dates, next)
		var err error
		if next, err = NextRunDate(t.Frequency, t.StartDate, next); err != nil {
			return nil, err
		}
	}
	return dates, nil
}

// Generate creates the invoice for the template's current occurrence and advances the schedule.
func (s *RecurringService) Generate(templateID uuid.UUID) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var t models.RecurringTemplate
		if err := tx.First(&t, "id = ?", templateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		created, err := s.generate(tx, &t)
		inv = created
		return err
	})
	if errors.Is(err, errScheduleEnded) {
		if uerr := s.db.Model(&models.RecurringTemplate{}).Where("id = ?", templateID).
			Update("is_active", false).Error; uerr != nil {
			log.Printf("[RECURRING] failed to deactivate template %s: %v", templateID, uerr)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if inv.Status != models.StatusDraft && s.Sender != nil {
		var t models.RecurringTemplate
		if err := s.db.Select("auto_send").First(&t, "id = ?", templateID).Error; err == nil && t.AutoSend {
			if err := s.Sender.SendInvoiceEmail(inv.ID); err != nil {
				log.Printf("[RECURRING] auto-send of %s failed: %v", inv.InvoiceNumber, err)
			}
		}
	}
	return s.invoices.Get(inv.ID)
}

func (s *RecurringService) generate(tx *gorm.DB, t *models.RecurringTemplate) (*models.Invoice, error) {
	if !t.IsActive {
		return nil, ErrTemplateInactive
	}
	if scheduleEnded(t, t.NextRunDate) {
		return nil, errScheduleEnded
	}
	items, err := t.Items()
	if err != nil {
		return nil, fmt.Errorf("line items: %w", err)
	}

	runDate := t.NextRunDate
	status := models.StatusUnpaid
	if t.CreateAsDraft {
		status = models.StatusDraft
	}
	templateID := t.ID
	inv := &models.Invoice{
		CustomerID:          t.CustomerID,
		PropertyID:          t.PropertyID,
		InvoiceDate:         runDate,
		DueDate:             runDate.AddDate(0, 0, t.PaymentTermsDays),
		TaxRate:             t.TaxRate,
		Status:              status,
		Notes:               t.Notes,
		RecurringTemplateID: &templateID,
		IsDemo:              t.IsDemo,
	}
	for _, it := range items {
		inv.LineItems = append(inv.LineItems, models.InvoiceLineItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	next, err := NextRunDate(t.Frequency, t.StartDate, runDate)
	if err != nil {
		return nil, err
	}
	occurrences := t.OccurrencesGenerated + 1
	active := true
	if t.EndDate != nil && next.After(*t.EndDate) {
		active = false
	}
	if t.MaxOccurrences != nil && occurrences >= *t.MaxOccurrences {
		active = false
	}
	now := s.Now()

	// Claim the occurrence first; a concurrent run for the same date matches no row.
	res := tx.Model(&models.RecurringTemplate{}).
		Where("id = ? AND next_run_date = ? AND occurrences_generated = ?", t.ID, runDate, t.OccurrencesGenerated).
		Updates(map[string]interface{}{
			"next_run_date":         next,
			"occurrences_generated": occurrences,
			"last_generated_at":     now,
			"is_active":             active,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyGenerated
	}

	if err := s.invoices.create(tx, inv); err != nil {
		return nil, err
	}

	t.NextRunDate = next
	t.OccurrencesGenerated = occurrences
	t.LastGeneratedAt = &now
	t.IsActive = active
	return inv, nil
}

// GenerateResult summarizes a GenerateDue run.
type GenerateResult struct {
	Generated []string `json:"generated"`
	Failed    []string `json:"failed"`
}

// GenerateDue creates invoices for every active template whose next run date
// is on or before now, catching up missed occurrences.
func (s *RecurringService) GenerateDue() (GenerateResult, error) {
	result := GenerateResult{Generated: []string{}, Failed: []string{}}
	cutoff := utils.EndOfDay(s.Now())

	var templates []models.RecurringTemplate
	if err := s.db.Where("is_active = ? AND next_run_date <= ?", true, cutoff).
		Order("next_run_date ASC").
		Find(&templates).Error; err != nil {
		return result, err
	}

	for _, t := range templates {
		for i := 0; i < MaxCatchUp; i++ {
			inv, err := s.Generate(t.ID)
			if err != nil {
				if !errors.Is(err, ErrTemplateInactive) {
					log.Printf("[RECURRING] template %s (%s): %v", t.ID, t.Name, err)
					result.Failed = append(result.Failed, t.Name)
				}
				break
			}
			result.Generated = append(result.Generated, inv.InvoiceNumber)

			var fresh models.RecurringTemplate
			if err := s.db.First(&fresh, "id = ?", t.ID).Error; err != nil {
				break
			}
			if !fresh.IsActive || fresh.NextRunDate.After(cutoff) {
				break
			}
		}
	}

	log.Printf("[RECURRING] generated %d invoices, %d failures", len(result.Generated), len(result.Failed))
	return result, nil
}
