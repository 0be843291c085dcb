package services

import (
	"context"
	"testing"
	"time"

	"invoicepro-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	svc := &Services{}

	_, err := NewScheduler(svc, ScheduleConfig{Recurring: "every other blue moon"})
	assert.Error(t, err)

	s, err := NewScheduler(svc, ScheduleConfig{
		Recurring: "0 6 * * *",
		Overdue:   "30 6 * * *",
		Backup:    "0 2 * * *",
	})
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)

	s, err = NewScheduler(svc, ScheduleConfig{Backup: "0 2 * * *", BackupEnabled: true})
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestSweepOverdue(t *testing.T) {
	db := setupTestDB(t)
	invoices := NewInvoiceService(db, 30)
	invoices.Now = fixedClock(2024, time.January, 1)
	notifications := NewNotificationService(db, invoices, BusinessInfo{Name: "Summit Property Services"})
	svc := &Services{Invoices: invoices, Notifications: notifications}

	customer := createCustomer(t, db, "Harbor Cafe", "owner@harborcafe.example.com")
	for _, due := range []time.Time{day(2024, time.January, 31), day(2024, time.February, 20)} {
		inv := models.Invoice{CustomerID: customer.ID, InvoiceDate: day(2024, time.January, 1), DueDate: due, LineItems: lines(1, 100)}
		require.NoError(t, invoices.Create(&inv))
	}

	invoices.Now = fixedClock(2024, time.February, 10)

	// Without an SMS sender the sweep still marks invoices.
	res, err := svc.SweepOverdue(true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.MarkedOverdue)
	assert.Zero(t, res.Reminded)

	invoices.Now = fixedClock(2024, time.March, 1)
	sms := &fakeSMS{}
	notifications.SMS = sms
	res, err = svc.SweepOverdue(true)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{MarkedOverdue: 1, Reminded: 2}, res)
	assert.Equal(t, "+15125550100", sms.to)

	res, err = svc.SweepOverdue(true)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)
}

func TestSweepRemindsInvoicesFlippedByReads(t *testing.T) {
	db := setupTestDB(t)
	invoices := NewInvoiceService(db, 30)
	invoices.Now = fixedClock(2024, time.January, 1)
	notifications := NewNotificationService(db, invoices, BusinessInfo{Name: "Summit Property Services"})
	sms := &fakeSMS{}
	notifications.SMS = sms
	svc := &Services{Invoices: invoices, Notifications: notifications}

	customer := createCustomer(t, db, "Harbor Cafe", "owner@harborcafe.example.com")
	inv := models.Invoice{CustomerID: customer.ID, InvoiceDate: day(2024, time.January, 1), DueDate: day(2024, time.January, 31), LineItems: lines(1, 100)}
	require.NoError(t, invoices.Create(&inv))

	// A listing in the morning flips the invoice before the cron sweep runs.
	invoices.Now = fixedClock(2024, time.February, 10)
	flipped, err := invoices.RefreshOverdue()
	require.NoError(t, err)
	require.Len(t, flipped, 1)

	res, err := svc.SweepOverdue(true)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Reminded: 1}, res)
	assert.Equal(t, "+15125550100", sms.to)

	got, err := invoices.Get(inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OverdueRemindedAt)

	res, err = svc.SweepOverdue(true)
	require.NoError(t, err)
	assert.Zero(t, res.Reminded)

	// Moving the due date forward reverts to unpaid and clears the marker,
	// so the invoice is reminded again once it falls overdue a second time.
	due := day(2024, time.February, 20)
	_, err = invoices.Update(inv.ID, InvoiceUpdate{DueDate: &due})
	require.NoError(t, err)
	got, err = invoices.Get(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnpaid, got.Status)
	assert.Nil(t, got.OverdueRemindedAt)

	invoices.Now = fixedClock(2024, time.March, 1)
	sms.to = ""
	res, err = svc.SweepOverdue(true)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{MarkedOverdue: 1, Reminded: 1}, res)
	assert.Equal(t, "+15125550100", sms.to)
}
