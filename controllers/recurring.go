package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"invoicepro-backend/config"
	"invoicepro-backend/models"
	"invoicepro-backend/services"
	"invoicepro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateTemplateInput struct {
	CustomerID       string          `json:"customerId" binding:"required,uuid"`
	PropertyID       string          `json:"propertyId" binding:"omitempty,uuid"`
	Name             string          `json:"name" binding:"required"`
	Frequency        string          `json:"frequency" binding:"required,oneof=weekly biweekly monthly quarterly yearly"`
	StartDate        string          `json:"startDate" binding:"required"`
	EndDate          string          `json:"endDate"`
	TaxRate          float64         `json:"taxRate" binding:"gte=0,lte=100"`
	PaymentTermsDays int             `json:"paymentTermsDays" binding:"gte=0"`
	LineItems        []LineItemInput `json:"lineItems" binding:"required,min=1,dive"`
	Notes            string          `json:"notes"`
	CreateAsDraft    bool            `json:"createAsDraft"`
	AutoSend         bool            `json:"autoSend"`
	MaxOccurrences   *int            `json:"maxOccurrences" binding:"omitempty,min=1"`
}

type UpdateTemplateInput struct {
	PropertyID       *string          `json:"propertyId"`
	Name             *string          `json:"name" binding:"omitempty,min=1"`
	Frequency        *string          `json:"frequency" binding:"omitempty,oneof=weekly biweekly monthly quarterly yearly"`
	EndDate          *string          `json:"endDate"`
	NextRunDate      *string          `json:"nextRunDate"`
	IsActive         *bool            `json:"isActive"`
	TaxRate          *float64         `json:"taxRate" binding:"omitempty,gte=0,lte=100"`
	PaymentTermsDays *int             `json:"paymentTermsDays" binding:"omitempty,gte=0"`
	LineItems        *[]LineItemInput `json:"lineItems" binding:"omitempty,min=1,dive"`
	Notes            *string          `json:"notes"`
	CreateAsDraft    *bool            `json:"createAsDraft"`
	AutoSend         *bool            `json:"autoSend"`
	MaxOccurrences   *int             `json:"maxOccurrences" binding:"omitempty,min=1"`
}

func templateItems(in []LineItemInput) []models.TemplateLineItem {
	items := make([]models.TemplateLineItem, len(in))
	for i, li := range in {
		items[i] = models.TemplateLineItem{
			Description: strings.TrimSpace(li.Description),
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
		}
	}
	return items
}

func findTemplate(c *gin.Context) (*models.RecurringTemplate, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	var t models.RecurringTemplate
	if err := config.DB.Preload("Customer").First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Recurring template not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &t, true
}

// CreateRecurringTemplate stores an invoice blueprint generated on a schedule
func CreateRecurringTemplate(c *gin.Context) {
	var input CreateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	start, err := utils.ParseDate(input.StartDate)
	if err != nil {
		utils.RespondWithValidationError(c, map[string]string{"startDate": "date"})
		return
	}
	end, ok := optionalDate(c, "endDate", input.EndDate)
	if !ok {
		return
	}
	if end != nil && end.Before(start) {
		utils.RespondWithValidationError(c, map[string]string{"endDate": "gtefield=startDate"})
		return
	}
	propertyID, ok := parseOptionalID(c, "propertyId", input.PropertyID)
	if !ok {
		return
	}
	customerID := uuid.MustParse(input.CustomerID)

	var count int64
	if err := config.DB.Model(&models.Customer{}).Where("id = ?", customerID).Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if count == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	t := models.RecurringTemplate{
		CustomerID:       customerID,
		PropertyID:       propertyID,
		Name:             strings.TrimSpace(input.Name),
		Frequency:        input.Frequency,
		StartDate:        start,
		EndDate:          end,
		IsActive:         true,
		TaxRate:          input.TaxRate,
		PaymentTermsDays: input.PaymentTermsDays,
		Notes:            input.Notes,
		CreateAsDraft:    input.CreateAsDraft,
		AutoSend:         input.AutoSend,
		MaxOccurrences:   input.MaxOccurrences,
	}
	if err := t.SetItems(templateItems(input.LineItems)); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to encode line items")
		return
	}
	if err := app.Recurring.Prepare(&t); err != nil {
		respondServiceError(c, err, "Invalid recurring template")
		return
	}

	if err := config.DB.Create(&t).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create recurring template")
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GetRecurringTemplates lists templates, filtered by customer_id and active
func GetRecurringTemplates(c *gin.Context) {
	page, limit, offset := utils.Pagination(c)

	q := config.DB.Model(&models.RecurringTemplate{})
	customerID, ok := parseOptionalID(c, "customer_id", c.Query("customer_id"))
	if !ok {
		return
	}
	if customerID != nil {
		q = q.Where("customer_id = ?", *customerID)
	}
	if active := c.Query("active"); active != "" {
		q = q.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve recurring templates")
		return
	}
	var templates []models.RecurringTemplate
	if err := q.Preload("Customer").Order("next_run_date ASC").Offset(offset).Limit(limit).Find(&templates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve recurring templates")
		return
	}

	c.JSON(http.StatusOK, utils.Page{Data: templates, Total: total, Page: page, Limit: limit})
}

func GetRecurringTemplate(c *gin.Context) {
	t, ok := findTemplate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t)
}

func UpdateRecurringTemplate(c *gin.Context) {
	t, ok := findTemplate(c)
	if !ok {
		return
	}
	var input UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	if input.PropertyID != nil {
		if t.PropertyID, ok = parseOptionalID(c, "propertyId", *input.PropertyID); !ok {
			return
		}
	}
	if input.Name != nil {
		t.Name = strings.TrimSpace(*input.Name)
	}
	if input.Frequency != nil {
		t.Frequency = *input.Frequency
	}
	if input.EndDate != nil {
		if t.EndDate, ok = optionalDate(c, "endDate", *input.EndDate); !ok {
			return
		}
	}
	if input.NextRunDate != nil {
		next, err := utils.ParseDate(*input.NextRunDate)
		if err != nil {
			utils.RespondWithValidationError(c, map[string]string{"nextRunDate": "date"})
			return
		}
		t.NextRunDate = next
	}
	if input.IsActive != nil {
		t.IsActive = *input.IsActive
	}
	if input.TaxRate != nil {
		t.TaxRate = *input.TaxRate
	}
	if input.PaymentTermsDays != nil {
		t.PaymentTermsDays = *input.PaymentTermsDays
	}
	if input.LineItems != nil {
		if err := t.SetItems(templateItems(*input.LineItems)); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to encode line items")
			return
		}
	}
	if input.Notes != nil {
		t.Notes = *input.Notes
	}
	if input.CreateAsDraft != nil {
		t.CreateAsDraft = *input.CreateAsDraft
	}
	if input.AutoSend != nil {
		t.AutoSend = *input.AutoSend
	}
	if input.MaxOccurrences != nil {
		t.MaxOccurrences = input.MaxOccurrences
	}
	if err := app.Recurring.Prepare(t); err != nil {
		respondServiceError(c, err, "Invalid recurring template")
		return
	}

	// Select("*") so false booleans are written.
	if err := config.DB.Model(t).Omit("Customer", "ID", "CreatedAt").Select("*").Updates(t).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update recurring template")
		return
	}
	c.JSON(http.StatusOK, t)
}

func DeleteRecurringTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res := config.DB.Where("id = ?", id).Delete(&models.RecurringTemplate{})
	if res.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete recurring template")
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Recurring template not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recurring template deleted successfully"})
}

// GenerateRecurringInvoice creates the template's next invoice now
func GenerateRecurringInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	invoice, err := app.Recurring.Generate(id)
	if err != nil {
		respondServiceError(c, err, "Failed to generate invoice")
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// PreviewRecurringTemplate lists the next run dates (count, default 6, at most 24)
func PreviewRecurringTemplate(c *gin.Context) {
	t, ok := findTemplate(c)
	if !ok {
		return
	}
	n, err := strconv.Atoi(c.DefaultQuery("count", "6"))
	if err != nil || n < 1 {
		n = 6
	}
	if n > services.MaxCatchUp {
		n = services.MaxCatchUp
	}

	dates, err := app.Recurring.Preview(t, n)
	if err != nil {
		respondServiceError(c, err, "Failed to preview schedule")
		return
	}
	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[i] = d.Format(utils.DateLayout)
	}
	c.JSON(http.StatusOK, gin.H{"templateId": t.ID, "dates": formatted})
}

// RunDueRecurring generates every due invoice immediately
func RunDueRecurring(c *gin.Context) {
	result, err := app.Recurring.GenerateDue()
	if err != nil {
		respondServiceError(c, err, "Failed to run recurring templates")
		return
	}
	c.JSON(http.StatusOK, result)
}
