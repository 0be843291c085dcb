package services

import (
	"testing"

	"invoicepro-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestLineTotalRoundsToCents(t *testing.T) {
	assert.Equal(t, 30.0, LineTotal(3, 10))
	assert.Equal(t, 0.3, LineTotal(3, 0.1))
	assert.Equal(t, 1.01, LineTotal(1, 1.005))
	assert.Equal(t, 2.47, LineTotal(1.5, 1.645))
	assert.Equal(t, 0.0, LineTotal(0, 99.99))
}

func TestCalculateTotals(t *testing.T) {
	items := []models.InvoiceLineItem{
		{Quantity: 2, UnitPrice: 45.5},
		{Quantity: 1, UnitPrice: 180},
	}
	totals := CalculateTotals(items, 8.25)
	assert.Equal(t, 271.0, totals.Subtotal)
	assert.Equal(t, 22.36, totals.TaxAmount)
	assert.Equal(t, 293.36, totals.Total)

	assert.Equal(t, Totals{}, CalculateTotals(nil, 10))
}

func TestApplyTotalsNumbersLines(t *testing.T) {
	inv := models.Invoice{
		TaxRate:   10,
		LineItems: lines(1, 19.99, 3, 0.1),
	}
	ApplyTotals(&inv)

	assert.Equal(t, 0, inv.LineItems[0].Position)
	assert.Equal(t, 1, inv.LineItems[1].Position)
	assert.Equal(t, 19.99, inv.LineItems[0].LineTotal)
	assert.Equal(t, 0.3, inv.LineItems[1].LineTotal)
	assert.Equal(t, 20.29, inv.Subtotal)
	assert.Equal(t, 2.03, inv.TaxAmount)
	assert.Equal(t, 22.32, inv.Total)
}

func TestSumAmounts(t *testing.T) {
	assert.Equal(t, 0.3, SumAmounts(0.1, 0.2))
	assert.Equal(t, 0.0, SumAmounts())
}
