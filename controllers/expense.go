package controllers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"invoicepro-backend/config"
	"invoicepro-backend/models"
	"invoicepro-backend/services"
	"invoicepro-backend/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateExpenseInput struct {
	InvoiceID     string  `json:"invoiceId" binding:"omitempty,uuid"`
	PropertyID    string  `json:"propertyId" binding:"omitempty,uuid"`
	Vendor        string  `json:"vendor" binding:"required"`
	Amount        float64 `json:"amount" binding:"gte=0"`
	Date          string  `json:"date" binding:"required"`
	Category      string  `json:"category" binding:"omitempty,oneof=materials labor equipment fuel supplies utilities insurance office travel other"`
	Description   string  `json:"description"`
	PaymentMethod string  `json:"paymentMethod"`
}

type UpdateExpenseInput struct {
	InvoiceID     *string  `json:"invoiceId"`
	PropertyID    *string  `json:"propertyId"`
	Vendor        *string  `json:"vendor" binding:"omitempty,min=1"`
	Amount        *float64 `json:"amount" binding:"omitempty,gte=0"`
	Date          *string  `json:"date"`
	Category      *string  `json:"category" binding:"omitempty,oneof=materials labor equipment fuel supplies utilities insurance office travel other"`
	Description   *string  `json:"description"`
	PaymentMethod *string  `json:"paymentMethod"`
}

func findExpense(c *gin.Context) (*models.Expense, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	var expense models.Expense
	if err := config.DB.First(&expense, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Expense not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &expense, true
}

// CreateExpense records a business expense, optionally linked to an invoice or property
func CreateExpense(c *gin.Context) {
	var input CreateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	date, err := utils.ParseDate(input.Date)
	if err != nil {
		utils.RespondWithValidationError(c, map[string]string{"date": "date"})
		return
	}
	invoiceID, ok := parseOptionalID(c, "invoiceId", input.InvoiceID)
	if !ok {
		return
	}
	propertyID, ok := parseOptionalID(c, "propertyId", input.PropertyID)
	if !ok {
		return
	}

	category := input.Category
	if category == "" {
		category = "other"
	}
	expense := models.Expense{
		InvoiceID:     invoiceID,
		PropertyID:    propertyID,
		Vendor:        strings.TrimSpace(input.Vendor),
		Amount:        input.Amount,
		Date:          date,
		Category:      category,
		Description:   input.Description,
		PaymentMethod: input.PaymentMethod,
	}
	if err := config.DB.Create(&expense).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create expense")
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// GetExpenses lists expenses filtered by category, invoice_id, property_id and date range
func GetExpenses(c *gin.Context) {
	page, limit, offset := utils.Pagination(c)

	q := config.DB.Model(&models.Expense{})
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	invoiceID, ok := parseOptionalID(c, "invoice_id", c.Query("invoice_id"))
	if !ok {
		return
	}
	if invoiceID != nil {
		q = q.Where("invoice_id = ?", *invoiceID)
	}
	propertyID, ok := parseOptionalID(c, "property_id", c.Query("property_id"))
	if !ok {
		return
	}
	if propertyID != nil {
		q = q.Where("property_id = ?", *propertyID)
	}
	if s := c.Query("from"); s != "" {
		from, err := utils.ParseDate(s)
		if err != nil {
			utils.RespondWithValidationError(c, map[string]string{"from": "date"})
			return
		}
		q = q.Where("date >= ?", utils.BeginningOfDay(from))
	}
	if s := c.Query("to"); s != "" {
		to, err := utils.ParseDate(s)
		if err != nil {
			utils.RespondWithValidationError(c, map[string]string{"to": "date"})
			return
		}
		q = q.Where("date <= ?", utils.EndOfDay(to))
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(vendor) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve expenses")
		return
	}
	var expenses []models.Expense
	if err := q.Order("date DESC").Offset(offset).Limit(limit).Find(&expenses).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve expenses")
		return
	}

	c.JSON(http.StatusOK, utils.Page{Data: expenses, Total: total, Page: page, Limit: limit})
}

func GetExpense(c *gin.Context) {
	expense, ok := findExpense(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, expense)
}

func UpdateExpense(c *gin.Context) {
	expense, ok := findExpense(c)
	if !ok {
		return
	}
	var input UpdateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	if input.InvoiceID != nil {
		if expense.InvoiceID, ok = parseOptionalID(c, "invoiceId", *input.InvoiceID); !ok {
			return
		}
	}
	if input.PropertyID != nil {
		if expense.PropertyID, ok = parseOptionalID(c, "propertyId", *input.PropertyID); !ok {
			return
		}
	}
	if input.Vendor != nil {
		expense.Vendor = strings.TrimSpace(*input.Vendor)
	}
	if input.Amount != nil {
		expense.Amount = *input.Amount
	}
	if input.Date != nil {
		date, err := utils.ParseDate(*input.Date)
		if err != nil {
			utils.RespondWithValidationError(c, map[string]string{"date": "date"})
			return
		}
		expense.Date = date
	}
	if input.Category != nil {
		expense.Category = *input.Category
	}
	if input.Description != nil {
		expense.Description = *input.Description
	}
	if input.PaymentMethod != nil {
		expense.PaymentMethod = *input.PaymentMethod
	}

	if err := config.DB.Omit("Invoice", "Property").Save(expense).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update expense")
		return
	}
	c.JSON(http.StatusOK, expense)
}

func DeleteExpense(c *gin.Context) {
	expense, ok := findExpense(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(expense).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete expense")
		return
	}
	app.Storage.Remove(expense.ReceiptPath)
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// UploadReceipt attaches a receipt image or PDF (multipart "receipt"), replacing any previous one
func UploadReceipt(c *gin.Context) {
	expense, ok := findExpense(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("receipt")
	if err != nil {
		utils.RespondWithValidationError(c, map[string]string{"receipt": "required"})
		return
	}

	stored, err := app.Storage.Save(fh, path.Join("receipts", expense.ID.String()), services.ReceiptMimeTypes)
	if err != nil {
		respondServiceError(c, err, "Failed to store receipt")
		return
	}

	previous := expense.ReceiptPath
	if err := config.DB.Model(expense).Updates(map[string]interface{}{
		"receipt_path":      stored.Path,
		"receipt_file_name": stored.FileName,
		"receipt_mime_type": stored.MimeType,
	}).Error; err != nil {
		app.Storage.Remove(stored.Path)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save receipt")
		return
	}
	app.Storage.Remove(previous)

	c.JSON(http.StatusOK, expense)
}

func DeleteReceipt(c *gin.Context) {
	expense, ok := findExpense(c)
	if !ok {
		return
	}
	if expense.ReceiptPath == "" {
		utils.RespondWithError(c, http.StatusNotFound, "Expense has no receipt")
		return
	}

	previous := expense.ReceiptPath
	if err := config.DB.Model(expense).Updates(map[string]interface{}{
		"receipt_path":      "",
		"receipt_file_name": "",
		"receipt_mime_type": "",
	}).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to remove receipt")
		return
	}
	app.Storage.Remove(previous)

	c.JSON(http.StatusOK, gin.H{"message": "Receipt removed successfully"})
}

// ParseReceipt extracts suggested expense fields from a receipt image. Nothing is stored.
func ParseReceipt(c *gin.Context) {
	if !app.Receipts.Enabled() {
		respondServiceError(c, services.ErrReceiptParserDisabled, "Receipt parsing unavailable")
		return
	}
	fh, err := c.FormFile("receipt")
	if err != nil {
		utils.RespondWithValidationError(c, map[string]string{"receipt": "required"})
		return
	}
	if fh.Size > app.Storage.MaxBytes {
		respondServiceError(c, services.ErrFileTooLarge, "Receipt too large")
		return
	}
	src, err := fh.Open()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read receipt")
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read receipt")
		return
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), services.ReceiptMimeTypes...) {
		respondServiceError(c, services.ErrUnsupportedFile, "Unsupported receipt")
		return
	}

	parsed, err := app.Receipts.Parse(c.Request.Context(), data, mt.String())
	if err != nil {
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to parse receipt: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, parsed)
}
