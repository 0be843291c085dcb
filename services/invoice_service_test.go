package services

import (
	"regexp"
	"testing"
	"time"
	_ "time/tzdata"

	"invoicepro-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoiceService(t *testing.T) (*InvoiceService, models.Customer) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewInvoiceService(db, 30)
	svc.Now = fixedClock(2024, time.March, 15)
	return svc, createCustomer(t, db, "Maria Alvarez", "maria@example.com")
}

func TestCreateInvoiceDefaults(t *testing.T) {
	svc, customer := newTestInvoiceService(t)

	inv := models.Invoice{CustomerID: customer.ID, TaxRate: 10, LineItems: lines(2, 50, 1, 25.5)}
	require.NoError(t, svc.Create(&inv))

	assert.Regexp(t, regexp.MustCompile(`^INV-20240315-[A-Z0-9]{6}$`), inv.InvoiceNumber)
	assertDay(t, day(2024, time.March, 15), inv.InvoiceDate)
	assertDay(t, day(2024, time.April, 14), inv.DueDate)
	assert.Equal(t, models.StatusUnpaid, inv.Status)
	assert.Equal(t, 125.5, inv.Subtotal)
	assert.Equal(t, 12.55, inv.TaxAmount)
	assert.Equal(t, 138.05, inv.Total)

	got, err := svc.Get(inv.ID)
	require.NoError(t, err)
	require.Len(t, got.LineItems, 2)
	assert.Equal(t, 100.0, got.LineItems[0].LineTotal)
	assert.Equal(t, "Maria Alvarez", got.Customer.Name)
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc, customer := newTestInvoiceService(t)

	err := svc.Create(&models.Invoice{CustomerID: customer.ID})
	assert.ErrorIs(t, err, ErrNoLineItems)

	first := models.Invoice{InvoiceNumber: "INV-1", CustomerID: customer.ID, LineItems: lines(1, 10)}
	require.NoError(t, svc.Create(&first))
	dup := models.Invoice{InvoiceNumber: "INV-1", CustomerID: customer.ID, LineItems: lines(1, 10)}
	assert.ErrorIs(t, svc.Create(&dup), ErrDuplicateNumber)

	other := createCustomer(t, svc.db, "Tom Becker", "tom@example.com")
	property := createProperty(t, svc.db, other, "77 Ridge Road")
	wrongProperty := models.Invoice{CustomerID: customer.ID, PropertyID: &property.ID, LineItems: lines(1, 10)}
	assert.ErrorIs(t, svc.Create(&wrongProperty), ErrNotFound)
}

func TestCreatePastDueInvoiceIsOverdue(t *testing.T) {
	svc, customer := newTestInvoiceService(t)

	inv := models.Invoice{
		CustomerID:  customer.ID,
		InvoiceDate: day(2024, time.January, 1),
		DueDate:     day(2024, time.January, 31),
		LineItems:   lines(1, 10),
	}
	require.NoError(t, svc.Create(&inv))
	assert.Equal(t, models.StatusOverdue, inv.Status)
}

func TestUpdateReplacesLineItems(t *testing.T) {
	svc, customer := newTestInvoiceService(t)
	inv := models.Invoice{CustomerID: customer.ID, LineItems: lines(1, 10, 2, 20)}
	require.NoError(t, svc.Create(&inv))

	rate := 5.0
	updated, err := svc.Update(inv.ID, InvoiceUpdate{TaxRate: &rate, LineItems: lines(4, 25)})
	require.NoError(t, err)
	require.Len(t, updated.LineItems, 1)
	assert.Equal(t, 100.0, updated.Subtotal)
	assert.Equal(t, 5.0, updated.TaxAmount)
	assert.Equal(t, 105.0, updated.Total)

	var count int64
	require.NoError(t, svc.db.Model(&models.InvoiceLineItem{}).Where("invoice_id = ?", inv.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err = svc.Update(inv.ID, InvoiceUpdate{LineItems: []models.InvoiceLineItem{}})
	assert.ErrorIs(t, err, ErrNoLineItems)
}

func TestChangeStatusTransitions(t *testing.T) {
	svc, customer := newTestInvoiceService(t)
	inv := models.Invoice{CustomerID: customer.ID, Status: models.StatusDraft, LineItems: lines(1, 10)}
	require.NoError(t, svc.Create(&inv))

	got, err := svc.ChangeStatus(inv.ID, models.StatusUnpaid, nil, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnpaid, got.Status)

	paid := day(2024, time.March, 10)
	got, err = svc.MarkPaid(inv.ID, &paid, "check")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.Status)
	require.NotNil(t, got.PaymentDate)
	assert.True(t, paid.Equal(*got.PaymentDate))
	assert.Equal(t, "check", got.PaymentMethod)

	_, err = svc.ChangeStatus(inv.ID, models.StatusDraft, nil, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err = svc.ChangeStatus(inv.ID, models.StatusUnpaid, nil, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnpaid, got.Status)
	assert.Nil(t, got.PaymentDate)

	_, err = svc.ChangeStatus(inv.ID, models.StatusOverdue, nil, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRefreshOverdue(t *testing.T) {
	svc, customer := newTestInvoiceService(t)

	late := models.Invoice{CustomerID: customer.ID, InvoiceDate: day(2024, time.February, 1),
		DueDate: day(2024, time.March, 1), LineItems: lines(1, 10)}
	current := models.Invoice{CustomerID: customer.ID, InvoiceDate: day(2024, time.March, 1),
		DueDate: day(2024, time.March, 31), LineItems: lines(1, 10)}
	require.NoError(t, svc.Create(&late))
	require.NoError(t, svc.Create(&current))
	// Stored as unpaid so the sweep has something to flip.
	require.NoError(t, svc.db.Model(&models.Invoice{}).Where("id = ?", late.ID).Update("status", models.StatusUnpaid).Error)

	flipped, err := svc.RefreshOverdue()
	require.NoError(t, err)
	require.Len(t, flipped, 1)
	assert.Equal(t, late.ID, flipped[0].ID)
	assert.Equal(t, models.StatusOverdue, flipped[0].Status)

	// Pushing the due date out reverts to unpaid.
	due := day(2024, time.April, 30)
	got, err := svc.Update(late.ID, InvoiceUpdate{DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnpaid, got.Status)

	flipped, err = svc.RefreshOverdue()
	require.NoError(t, err)
	assert.Empty(t, flipped)
}

func TestDuplicateInvoice(t *testing.T) {
	svc, customer := newTestInvoiceService(t)
	src := models.Invoice{CustomerID: customer.ID, InvoiceDate: day(2024, time.January, 1),
		DueDate: day(2024, time.January, 15), TaxRate: 7, Notes: "Thanks", LineItems: lines(2, 30)}
	require.NoError(t, svc.Create(&src))

	dup, err := svc.Duplicate(src.ID)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.NotEqual(t, src.InvoiceNumber, dup.InvoiceNumber)
	assert.Equal(t, models.StatusDraft, dup.Status)
	assertDay(t, day(2024, time.March, 15), dup.InvoiceDate)
	assertDay(t, day(2024, time.March, 29), dup.DueDate)
	assert.Equal(t, src.Total, dup.Total)
	assert.Equal(t, "Thanks", dup.Notes)
	require.Len(t, dup.LineItems, 1)
}

func TestDuplicateKeepsTermsAcrossDST(t *testing.T) {
	svc, customer := newTestInvoiceService(t)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 30 calendar days, but only 719 hours because clocks spring forward on March 10.
	src := models.Invoice{CustomerID: customer.ID,
		InvoiceDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, ny),
		DueDate:     time.Date(2024, time.March, 31, 0, 0, 0, 0, ny),
		LineItems:   lines(1, 80)}
	require.NoError(t, svc.Create(&src))

	dup, err := svc.Duplicate(src.ID)
	require.NoError(t, err)
	assertDay(t, day(2024, time.April, 14), dup.DueDate)
}

func TestDeleteInvoiceUnlinksExpenses(t *testing.T) {
	svc, customer := newTestInvoiceService(t)
	inv := models.Invoice{CustomerID: customer.ID, LineItems: lines(1, 10)}
	require.NoError(t, svc.Create(&inv))

	expense := models.Expense{Vendor: "Home Depot", Amount: 20, Date: day(2024, time.March, 1), InvoiceID: &inv.ID}
	require.NoError(t, svc.db.Create(&expense).Error)
	photo := models.InvoicePhoto{InvoiceID: inv.ID, PhotoFile: models.PhotoFile{FileName: "a.png", FilePath: "invoices/x/a.png"}}
	require.NoError(t, svc.db.Create(&photo).Error)

	paths, err := svc.Delete(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"invoices/x/a.png"}, paths)

	_, err = svc.Get(inv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var reloaded models.Expense
	require.NoError(t, svc.db.First(&reloaded, "id = ?", expense.ID).Error)
	assert.Nil(t, reloaded.InvoiceID)

	_, err = svc.Delete(inv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListInvoicesFilters(t *testing.T) {
	svc, customer := newTestInvoiceService(t)
	other := createCustomer(t, svc.db, "Tom Becker", "tom@example.com")

	for _, inv := range []models.Invoice{
		{InvoiceNumber: "INV-A", CustomerID: customer.ID, InvoiceDate: day(2024, time.March, 1), LineItems: lines(1, 10)},
		{InvoiceNumber: "INV-B", CustomerID: customer.ID, InvoiceDate: day(2024, time.March, 5), Status: models.StatusDraft, LineItems: lines(1, 10)},
		{InvoiceNumber: "INV-C", CustomerID: other.ID, InvoiceDate: day(2024, time.March, 10), LineItems: lines(1, 10)},
	} {
		inv := inv
		require.NoError(t, svc.Create(&inv))
	}

	all, total, err := svc.List(InvoiceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "INV-C", all[0].InvoiceNumber)

	_, total, err = svc.List(InvoiceFilter{CustomerID: &customer.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	drafts, _, err := svc.List(InvoiceFilter{Status: models.StatusDraft})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "INV-B", drafts[0].InvoiceNumber)

	from := day(2024, time.March, 4)
	ranged, _, err := svc.List(InvoiceFilter{From: &from, Search: "inv-c"})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "INV-C", ranged[0].InvoiceNumber)

	page, total, err := svc.List(InvoiceFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 1)
}
