package services

import (
	"testing"
	"time"

	"invoicepro-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRunDate(t *testing.T) {
	start := day(2024, time.January, 31)
	tests := []struct {
		name      string
		frequency string
		from      time.Time
		want      time.Time
	}{
		{"weekly", models.FrequencyWeekly, day(2024, time.January, 31), day(2024, time.February, 7)},
		{"biweekly", models.FrequencyBiweekly, day(2024, time.December, 25), day(2025, time.January, 8)},
		{"monthly clamps to leap february", models.FrequencyMonthly, day(2024, time.January, 31), day(2024, time.February, 29)},
		{"monthly returns to anchor day", models.FrequencyMonthly, day(2024, time.February, 29), day(2024, time.March, 31)},
		{"monthly clamps to april", models.FrequencyMonthly, day(2024, time.March, 31), day(2024, time.April, 30)},
		{"quarterly", models.FrequencyQuarterly, day(2024, time.January, 31), day(2024, time.April, 30)},
		{"yearly", models.FrequencyYearly, day(2024, time.January, 31), day(2025, time.January, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRunDate(tt.frequency, start, tt.from)
			require.NoError(t, err)
			assertDay(t, tt.want, got)
		})
	}

	_, err := NextRunDate("daily", start, start)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func newTestTemplate(t *testing.T, svc *RecurringService, customer models.Customer, max *int) models.RecurringTemplate {
	t.Helper()
	tmpl := models.RecurringTemplate{
		CustomerID:       customer.ID,
		Name:             "Monthly lawn care",
		Frequency:        models.FrequencyMonthly,
		StartDate:        day(2024, time.January, 31),
		IsActive:         true,
		TaxRate:          10,
		PaymentTermsDays: 15,
		MaxOccurrences:   max,
	}
	require.NoError(t, tmpl.SetItems([]models.TemplateLineItem{{Description: "Mowing", Quantity: 4, UnitPrice: 25}}))
	require.NoError(t, svc.Prepare(&tmpl))
	require.NoError(t, svc.db.Create(&tmpl).Error)
	return tmpl
}

func newTestRecurringService(t *testing.T) (*RecurringService, models.Customer) {
	t.Helper()
	db := setupTestDB(t)
	invoices := NewInvoiceService(db, 30)
	invoices.Now = fixedClock(2024, time.March, 15)
	svc := NewRecurringService(db, invoices)
	svc.Now = invoices.Now
	return svc, createCustomer(t, db, "Greenfield Apartments", "office@greenfield.example.com")
}

func TestPrepareTemplate(t *testing.T) {
	svc, customer := newTestRecurringService(t)

	tmpl := models.RecurringTemplate{CustomerID: customer.ID, Frequency: "daily"}
	assert.ErrorIs(t, svc.Prepare(&tmpl), ErrUnsupportedFormat)

	tmpl.Frequency = models.FrequencyWeekly
	assert.ErrorIs(t, svc.Prepare(&tmpl), ErrNoLineItems)

	require.NoError(t, tmpl.SetItems([]models.TemplateLineItem{{Description: "Pool", Quantity: 1, UnitPrice: 80}}))
	tmpl.StartDate = day(2024, time.May, 1)
	require.NoError(t, svc.Prepare(&tmpl))
	assertDay(t, tmpl.StartDate, tmpl.NextRunDate)
	assert.Equal(t, 30, tmpl.PaymentTermsDays)

	end := day(2024, time.April, 30)
	tmpl.EndDate = &end
	assert.ErrorIs(t, svc.Prepare(&tmpl), ErrInvalidSchedule)

	// Lowering the cap below what was already generated deactivates the template.
	end = day(2024, time.December, 31)
	max := 2
	tmpl.IsActive = true
	tmpl.OccurrencesGenerated = 2
	tmpl.MaxOccurrences = &max
	require.NoError(t, svc.Prepare(&tmpl))
	assert.False(t, tmpl.IsActive)
}

func TestGenerateAdvancesSchedule(t *testing.T) {
	svc, customer := newTestRecurringService(t)
	tmpl := newTestTemplate(t, svc, customer, nil)

	inv, err := svc.Generate(tmpl.ID)
	require.NoError(t, err)
	assertDay(t, day(2024, time.January, 31), inv.InvoiceDate)
	assertDay(t, day(2024, time.February, 15), inv.DueDate)
	assert.Equal(t, 110.0, inv.Total)
	require.NotNil(t, inv.RecurringTemplateID)
	assert.Equal(t, tmpl.ID, *inv.RecurringTemplateID)
	// Due date already passed relative to the fixed clock.
	assert.Equal(t, models.StatusOverdue, inv.Status)

	var reloaded models.RecurringTemplate
	require.NoError(t, svc.db.First(&reloaded, "id = ?", tmpl.ID).Error)
	assert.Equal(t, 1, reloaded.OccurrencesGenerated)
	assertDay(t, day(2024, time.February, 29), reloaded.NextRunDate)
	assert.NotNil(t, reloaded.LastGeneratedAt)
	assert.True(t, reloaded.IsActive)

	_, err = svc.Generate(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerateDueCatchesUpAndStopsAtMax(t *testing.T) {
	svc, customer := newTestRecurringService(t)
	max := 3
	tmpl := newTestTemplate(t, svc, customer, &max)

	result, err := svc.GenerateDue()
	require.NoError(t, err)
	assert.Len(t, result.Generated, 2)
	assert.Empty(t, result.Failed)

	var reloaded models.RecurringTemplate
	require.NoError(t, svc.db.First(&reloaded, "id = ?", tmpl.ID).Error)
	assert.Equal(t, 2, reloaded.OccurrencesGenerated)
	assertDay(t, day(2024, time.March, 31), reloaded.NextRunDate)

	// Nothing more is due today.
	result, err = svc.GenerateDue()
	require.NoError(t, err)
	assert.Empty(t, result.Generated)

	_, err = svc.Generate(tmpl.ID)
	require.NoError(t, err)
	require.NoError(t, svc.db.First(&reloaded, "id = ?", tmpl.ID).Error)
	assert.Equal(t, 3, reloaded.OccurrencesGenerated)
	assert.False(t, reloaded.IsActive)

	_, err = svc.Generate(tmpl.ID)
	assert.ErrorIs(t, err, ErrTemplateInactive)

	var count int64
	require.NoError(t, svc.db.Model(&models.Invoice{}).Where("recurring_template_id = ?", tmpl.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestGenerateStopsAtLoweredLimits(t *testing.T) {
	svc, customer := newTestRecurringService(t)
	tmpl := newTestTemplate(t, svc, customer, nil)

	_, err := svc.Generate(tmpl.ID)
	require.NoError(t, err)

	// The end date is moved before the next run without touching is_active.
	require.NoError(t, svc.db.Model(&models.RecurringTemplate{}).Where("id = ?", tmpl.ID).
		Update("end_date", day(2024, time.February, 15)).Error)
	_, err = svc.Generate(tmpl.ID)
	assert.ErrorIs(t, err, ErrTemplateInactive)

	var reloaded models.RecurringTemplate
	require.NoError(t, svc.db.First(&reloaded, "id = ?", tmpl.ID).Error)
	assert.False(t, reloaded.IsActive)
	assert.Equal(t, 1, reloaded.OccurrencesGenerated)

	// Same for a cap that was already reached.
	other := newTestTemplate(t, svc, customer, nil)
	_, err = svc.Generate(other.ID)
	require.NoError(t, err)
	require.NoError(t, svc.db.Model(&models.RecurringTemplate{}).Where("id = ?", other.ID).
		Update("max_occurrences", 1).Error)
	result, err := svc.GenerateDue()
	require.NoError(t, err)
	assert.Empty(t, result.Generated)
	assert.Empty(t, result.Failed)

	var count int64
	require.NoError(t, svc.db.Model(&models.Invoice{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestGenerateDraftTemplateAutoSendSkipsDrafts(t *testing.T) {
	svc, customer := newTestRecurringService(t)
	sender := &recordingSender{}
	svc.Sender = sender

	tmpl := newTestTemplate(t, svc, customer, nil)
	require.NoError(t, svc.db.Model(&tmpl).Updates(map[string]interface{}{
		"create_as_draft": true,
		"auto_send":       true,
	}).Error)

	inv, err := svc.Generate(tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, inv.Status)
	assert.Empty(t, sender.sent)

	require.NoError(t, svc.db.Model(&tmpl).Update("create_as_draft", false).Error)
	inv, err = svc.Generate(tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{inv.ID.String()}, sender.sent)
}

func TestPreview(t *testing.T) {
	svc, customer := newTestRecurringService(t)
	max := 2
	tmpl := newTestTemplate(t, svc, customer, &max)

	dates, err := svc.Preview(&tmpl, 5)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assertDay(t, day(2024, time.January, 31), dates[0])
	assertDay(t, day(2024, time.February, 29), dates[1])

	end := day(2024, time.January, 31)
	tmpl.MaxOccurrences = nil
	tmpl.EndDate = &end
	dates, err = svc.Preview(&tmpl, 5)
	require.NoError(t, err)
	assert.Len(t, dates, 1)
}

type recordingSender struct {
	sent []string
}

func (r *recordingSender) SendInvoiceEmail(id uuid.UUID) error {
	r.sent = append(r.sent, id.String())
	return nil
}
