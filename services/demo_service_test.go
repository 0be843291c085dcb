package services

import (
	"testing"
	"time"

	"invoicepro-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoSeedAndClear(t *testing.T) {
	db := setupTestDB(t)
	invoices := NewInvoiceService(db, 30)
	invoices.Now = fixedClock(2024, time.March, 15)
	demo := NewDemoService(db, invoices)
	demo.Now = invoices.Now

	kept := createCustomer(t, db, "Real Customer", "real@example.com")

	counts, err := demo.Seed()
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts[EntityCustomers])
	assert.EqualValues(t, 3, counts[EntityProperties])
	assert.EqualValues(t, 5, counts[EntityInvoices])
	assert.Positive(t, counts[EntityExpenses])
	assert.Positive(t, counts[EntityRecurringTemplates])

	_, err = demo.Seed()
	assert.ErrorIs(t, err, ErrDemoDataExists)

	var overdue int64
	require.NoError(t, db.Model(&models.Invoice{}).Where("status = ?", models.StatusOverdue).Count(&overdue).Error)
	assert.Positive(t, overdue)

	before, err := demo.Clear()
	require.NoError(t, err)
	assert.Equal(t, counts, before)

	after, err := demo.Counts()
	require.NoError(t, err)
	for entity, n := range after {
		assert.Zero(t, n, entity)
	}
	var remaining []models.Customer
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)

	var items int64
	require.NoError(t, db.Model(&models.InvoiceLineItem{}).Count(&items).Error)
	assert.Zero(t, items)
}
