package services

import (
	"invoicepro-backend/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals is the computed money summary of an invoice.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	TaxAmount float64 `json:"taxAmount"`
	Total     float64 `json:"total"`
}

// LineTotal is quantity x unit price rounded to cents.
func LineTotal(quantity, unitPrice float64) float64 {
	return lineTotal(quantity, unitPrice).InexactFloat64()
}

func lineTotal(quantity, unitPrice float64) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice)).Round(2)
}

// CalculateTotals sums line totals and applies taxRate (a percentage).
// total = subtotal + subtotal * taxRate / 100
func CalculateTotals(items []models.InvoiceLineItem, taxRate float64) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(lineTotal(it.Quantity, it.UnitPrice))
	}
	tax := subtotal.Mul(decimal.NewFromFloat(taxRate)).Div(hundred).Round(2)
	return Totals{
		Subtotal:  subtotal.InexactFloat64(),
		TaxAmount: tax.InexactFloat64(),
		Total:     subtotal.Add(tax).InexactFloat64(),
	}
}

// ApplyTotals recomputes every line total and the invoice totals in place.
// Line items are numbered in slice order.
func ApplyTotals(inv *models.Invoice) {
	for i := range inv.LineItems {
		inv.LineItems[i].Position = i
		inv.LineItems[i].LineTotal = LineTotal(inv.LineItems[i].Quantity, inv.LineItems[i].UnitPrice)
	}
	t := CalculateTotals(inv.LineItems, inv.TaxRate)
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.Total = t.Total
}

// SumAmounts adds money values without float drift.
func SumAmounts(values ...float64) float64 {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Round(2).InexactFloat64()
}
