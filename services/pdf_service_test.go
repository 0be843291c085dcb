package services

import (
	"bytes"
	"testing"
	"time"

	"invoicepro-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoicePDF(t *testing.T) {
	paid := day(2024, time.March, 20)
	inv := &models.Invoice{
		InvoiceNumber: "INV-20240315-ABC123",
		InvoiceDate:   day(2024, time.March, 15),
		DueDate:       day(2024, time.April, 14),
		PaymentDate:   &paid,
		Status:        models.StatusPaid,
		TaxRate:       8.25,
		Notes:         "Thank you for your business.",
		Customer:      &models.Customer{Name: "Harbor Cafe", Email: "owner@harborcafe.example.com", AddressLine1: "5 Dock St", City: "Austin", State: "TX"},
		LineItems:     lines(2, 45, 1, 19.99),
	}
	ApplyTotals(inv)

	data, err := InvoicePDF(inv, BusinessInfo{Name: "Summit Property Services", Address: "1 Main St", Email: "billing@summit.example.com"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Greater(t, len(data), 1000)
}

func TestCustomerAddress(t *testing.T) {
	got := customerAddress(&models.Customer{AddressLine1: "5 Dock St", City: "Austin", State: "TX", PostalCode: "78701"})
	assert.Contains(t, got, "5 Dock St")
	assert.Contains(t, got, "Austin")
}
