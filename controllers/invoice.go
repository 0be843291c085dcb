package controllers

import (
	"net/http"
	"strings"
	"time"

	"invoicepro-backend/models"
	"invoicepro-backend/services"
	"invoicepro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LineItemInput defines one invoice line
type LineItemInput struct {
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"gte=0"`
	UnitPrice   float64 `json:"unitPrice" binding:"gte=0"`
}

// CreateInvoiceInput defines the expected JSON structure for creating an invoice
type CreateInvoiceInput struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	CustomerID    string          `json:"customerId" binding:"required,uuid"`
	PropertyID    string          `json:"propertyId" binding:"omitempty,uuid"`
	InvoiceDate   string          `json:"invoiceDate"`
	DueDate       string          `json:"dueDate"`
	TaxRate       float64         `json:"taxRate" binding:"gte=0,lte=100"`
	Status        string          `json:"status" binding:"omitempty,oneof=draft unpaid paid"`
	PaymentDate   string          `json:"paymentDate"`
	PaymentMethod string          `json:"paymentMethod"`
	Notes         string          `json:"notes"`
	Terms         string          `json:"terms"`
	LineItems     []LineItemInput `json:"lineItems" binding:"required,min=1,dive"`
}

// UpdateInvoiceInput defines the expected JSON structure for updating an invoice
type UpdateInvoiceInput struct {
	InvoiceNumber *string          `json:"invoiceNumber" binding:"omitempty,min=1"`
	CustomerID    *string          `json:"customerId" binding:"omitempty,uuid"`
	PropertyID    *string          `json:"propertyId"`
	InvoiceDate   *string          `json:"invoiceDate"`
	DueDate       *string          `json:"dueDate"`
	TaxRate       *float64         `json:"taxRate" binding:"omitempty,gte=0,lte=100"`
	PaymentMethod *string          `json:"paymentMethod"`
	Notes         *string          `json:"notes"`
	Terms         *string          `json:"terms"`
	LineItems     *[]LineItemInput `json:"lineItems" binding:"omitempty,dive"`
}

type StatusInput struct {
	Status        string `json:"status" binding:"required,oneof=draft unpaid paid"`
	PaymentDate   string `json:"paymentDate"`
	PaymentMethod string `json:"paymentMethod"`
}

type MarkPaidInput struct {
	PaymentDate   string `json:"paymentDate"`
	PaymentMethod string `json:"paymentMethod"`
}

func lineItems(in []LineItemInput) []models.InvoiceLineItem {
	items := make([]models.InvoiceLineItem, len(in))
	for i, li := range in {
		items[i] = models.InvoiceLineItem{
			Description: strings.TrimSpace(li.Description),
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
		}
	}
	return items
}

// optionalDate parses s when non-empty; field names the JSON key for errors.
func optionalDate(c *gin.Context, field, s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		utils.RespondWithValidationError(c, map[string]string{field: "date"})
		return nil, false
	}
	return &t, true
}

// CreateInvoice creates an invoice with its line items; totals are computed server side
func CreateInvoice(c *gin.Context) {
	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	propertyID, ok := parseOptionalID(c, "propertyId", input.PropertyID)
	if !ok {
		return
	}
	invoiceDate, ok := optionalDate(c, "invoiceDate", input.InvoiceDate)
	if !ok {
		return
	}
	dueDate, ok := optionalDate(c, "dueDate", input.DueDate)
	if !ok {
		return
	}
	paymentDate, ok := optionalDate(c, "paymentDate", input.PaymentDate)
	if !ok {
		return
	}

	invoice := models.Invoice{
		InvoiceNumber: strings.TrimSpace(input.InvoiceNumber),
		CustomerID:    uuid.MustParse(input.CustomerID),
		PropertyID:    propertyID,
		TaxRate:       input.TaxRate,
		Status:        input.Status,
		PaymentDate:   paymentDate,
		PaymentMethod: input.PaymentMethod,
		Notes:         input.Notes,
		Terms:         input.Terms,
		LineItems:     lineItems(input.LineItems),
	}
	if invoiceDate != nil {
		invoice.InvoiceDate = *invoiceDate
	}
	if dueDate != nil {
		if invoiceDate != nil && dueDate.Before(*invoiceDate) {
			utils.RespondWithValidationError(c, map[string]string{"dueDate": "gtefield=invoiceDate"})
			return
		}
		invoice.DueDate = *dueDate
	}

	if err := app.Invoices.Create(&invoice); err != nil {
		respondServiceError(c, err, "Failed to create invoice")
		return
	}

	created, err := app.Invoices.Get(invoice.ID)
	if err != nil {
		respondServiceError(c, err, "Failed to load invoice")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetInvoices lists invoices. Overdue status is refreshed first so filters see current state.
func GetInvoices(c *gin.Context) {
	if _, err := app.Invoices.RefreshOverdue(); err != nil {
		respondServiceError(c, err, "Failed to refresh invoice status")
		return
	}

	page, limit, offset := utils.Pagination(c)
	filter := services.InvoiceFilter{
		Status: c.Query("status"),
		Search: strings.TrimSpace(c.Query("search")),
		Offset: offset,
		Limit:  limit,
	}
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		utils.RespondWithValidationError(c, map[string]string{"status": "oneof"})
		return
	}
	var ok bool
	if filter.CustomerID, ok = parseOptionalID(c, "customer_id", c.Query("customer_id")); !ok {
		return
	}
	if filter.PropertyID, ok = parseOptionalID(c, "property_id", c.Query("property_id")); !ok {
		return
	}
	if filter.From, ok = optionalDate(c, "from", c.Query("from")); !ok {
		return
	}
	if filter.To, ok = optionalDate(c, "to", c.Query("to")); !ok {
		return
	}
	if filter.To != nil {
		end := utils.EndOfDay(*filter.To)
		filter.To = &end
	}

	invoices, total, err := app.Invoices.List(filter)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve invoices")
		return
	}
	c.JSON(http.StatusOK, utils.Page{Data: invoices, Total: total, Page: page, Limit: limit})
}

// GetInvoice retrieves an invoice with line items, customer, property and photos
func GetInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := app.Invoices.RefreshOverdue(); err != nil {
		respondServiceError(c, err, "Failed to refresh invoice status")
		return
	}
	invoice, err := app.Invoices.Get(id)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice updates an invoice; line items, when sent, replace the existing ones
func UpdateInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	u := services.InvoiceUpdate{
		InvoiceNumber: input.InvoiceNumber,
		TaxRate:       input.TaxRate,
		PaymentMethod: input.PaymentMethod,
		Notes:         input.Notes,
		Terms:         input.Terms,
	}
	if input.CustomerID != nil {
		cid := uuid.MustParse(*input.CustomerID)
		u.CustomerID = &cid
	}
	if input.PropertyID != nil {
		if *input.PropertyID == "" {
			u.ClearProperty = true
		} else if u.PropertyID, ok = parseOptionalID(c, "propertyId", *input.PropertyID); !ok {
			return
		}
	}
	if input.InvoiceDate != nil {
		if u.InvoiceDate, ok = optionalDate(c, "invoiceDate", *input.InvoiceDate); !ok {
			return
		}
	}
	if input.DueDate != nil {
		if u.DueDate, ok = optionalDate(c, "dueDate", *input.DueDate); !ok {
			return
		}
	}
	if input.LineItems != nil {
		if len(*input.LineItems) == 0 {
			utils.RespondWithValidationError(c, map[string]string{"lineItems": "min=1"})
			return
		}
		u.LineItems = lineItems(*input.LineItems)
	}

	invoice, err := app.Invoices.Update(id, u)
	if err != nil {
		respondServiceError(c, err, "Failed to update invoice")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoiceStatus moves an invoice through draft, unpaid and paid
func UpdateInvoiceStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	paymentDate, ok := optionalDate(c, "paymentDate", input.PaymentDate)
	if !ok {
		return
	}

	invoice, err := app.Invoices.ChangeStatus(id, input.Status, paymentDate, input.PaymentMethod)
	if err != nil {
		respondServiceError(c, err, "Failed to update invoice status")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// MarkInvoicePaid sets status paid; payment date defaults to today
func MarkInvoicePaid(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input MarkPaidInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithBindError(c, err)
			return
		}
	}
	paymentDate, ok := optionalDate(c, "paymentDate", input.PaymentDate)
	if !ok {
		return
	}

	invoice, err := app.Invoices.MarkPaid(id, paymentDate, input.PaymentMethod)
	if err != nil {
		respondServiceError(c, err, "Failed to mark invoice paid")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// DuplicateInvoice copies an invoice into a new draft dated today
func DuplicateInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	invoice, err := app.Invoices.Duplicate(id)
	if err != nil {
		respondServiceError(c, err, "Failed to duplicate invoice")
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// DeleteInvoice removes an invoice, its line items and photos
func DeleteInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	paths, err := app.Invoices.Delete(id)
	if err != nil {
		respondServiceError(c, err, "Failed to delete invoice")
		return
	}
	app.Storage.Remove(paths...)
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}

// GetInvoicePDF renders the invoice as a PDF download
func GetInvoicePDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	invoice, err := app.Invoices.Get(id)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve invoice")
		return
	}
	pdf, err := services.InvoicePDF(invoice, app.Notifications.Business)
	if err != nil {
		respondServiceError(c, err, "Failed to render invoice")
		return
	}

	disposition := "attachment"
	if c.Query("inline") == "true" {
		disposition = "inline"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+invoice.InvoiceNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
