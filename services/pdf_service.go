package services

import (
	"fmt"

	"invoicepro-backend/models"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// BusinessInfo is printed in the invoice header.
type BusinessInfo struct {
	Name    string
	Address string
	Email   string
}

const dateFormat = "Jan 2, 2006"

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// InvoicePDF renders an invoice (with Customer and LineItems loaded) as PDF bytes.
func InvoicePDF(inv *models.Invoice, biz BusinessInfo) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	bold := props.Text{Style: fontstyle.Bold, Size: 10}
	right := props.Text{Align: align.Right, Size: 10}
	boldRight := props.Text{Style: fontstyle.Bold, Align: align.Right, Size: 10}

	m.AddRows(
		row.New(12).Add(
			text.NewCol(6, biz.Name, props.Text{Style: fontstyle.Bold, Size: 16}),
			text.NewCol(6, "INVOICE", props.Text{Style: fontstyle.Bold, Size: 16, Align: align.Right}),
		),
		row.New(6).Add(
			text.NewCol(6, biz.Address, props.Text{Size: 9}),
			text.NewCol(6, inv.InvoiceNumber, right),
		),
		row.New(6).Add(
			text.NewCol(6, biz.Email, props.Text{Size: 9}),
			text.NewCol(6, "Status: "+inv.Status, right),
		),
		row.New(8),
	)

	billTo := ""
	if inv.Customer != nil {
		billTo = inv.Customer.Name
		if inv.Customer.CompanyName != "" {
			billTo += " - " + inv.Customer.CompanyName
		}
	}
	m.AddRows(
		row.New(6).Add(
			text.NewCol(6, "Bill To", bold),
			text.NewCol(3, "Invoice Date", bold),
			text.NewCol(3, inv.InvoiceDate.Format(dateFormat), right),
		),
		row.New(6).Add(
			text.NewCol(6, billTo, props.Text{Size: 10}),
			text.NewCol(3, "Due Date", bold),
			text.NewCol(3, inv.DueDate.Format(dateFormat), right),
		),
	)
	if inv.Customer != nil {
		m.AddRows(row.New(6).Add(
			text.NewCol(6, customerAddress(inv.Customer), props.Text{Size: 9}),
		))
	}
	if inv.Property != nil {
		m.AddRows(row.New(6).Add(
			text.NewCol(12, "Service Address: "+inv.Property.AddressLine1+" "+inv.Property.City, props.Text{Size: 9}),
		))
	}
	m.AddRows(row.New(8))

	m.AddRows(row.New(8).Add(
		text.NewCol(6, "Description", bold),
		text.NewCol(2, "Qty", boldRight),
		text.NewCol(2, "Unit Price", boldRight),
		text.NewCol(2, "Amount", boldRight),
	))
	for _, li := range inv.LineItems {
		m.AddRows(row.New(7).Add(
			text.NewCol(6, li.Description, props.Text{Size: 10}),
			text.NewCol(2, fmt.Sprintf("%g", li.Quantity), right),
			text.NewCol(2, money(li.UnitPrice), right),
			text.NewCol(2, money(li.LineTotal), right),
		))
	}

	m.AddRows(
		row.New(6),
		row.New(6).Add(
			text.NewCol(10, "Subtotal", boldRight),
			text.NewCol(2, money(inv.Subtotal), right),
		),
		row.New(6).Add(
			text.NewCol(10, fmt.Sprintf("Tax (%g%%)", inv.TaxRate), boldRight),
			text.NewCol(2, money(inv.TaxAmount), right),
		),
		row.New(8).Add(
			text.NewCol(10, "Total", props.Text{Style: fontstyle.Bold, Align: align.Right, Size: 12}),
			text.NewCol(2, money(inv.Total), props.Text{Style: fontstyle.Bold, Align: align.Right, Size: 12}),
		),
	)

	if inv.Notes != "" {
		m.AddRows(row.New(6), row.New(6).Add(text.NewCol(12, "Notes", bold)))
		m.AddRows(row.New(12).Add(text.NewCol(12, inv.Notes, props.Text{Size: 9})))
	}
	if inv.Terms != "" {
		m.AddRows(row.New(6).Add(text.NewCol(12, "Terms", bold)))
		m.AddRows(row.New(12).Add(text.NewCol(12, inv.Terms, props.Text{Size: 9})))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func customerAddress(c *models.Customer) string {
	addr := c.AddressLine1
	if c.AddressLine2 != "" {
		addr += ", " + c.AddressLine2
	}
	if c.City != "" {
		addr += ", " + c.City
	}
	if c.State != "" {
		addr += " " + c.State
	}
	if c.PostalCode != "" {
		addr += " " + c.PostalCode
	}
	return addr
}
