// controllers/service.go
package controllers

import (
	"errors"
	"net/http"

	"invoicepro-backend/config"
	"invoicepro-backend/models"
	"invoicepro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateServiceInput is a service history entry for a property
type CreateServiceInput struct {
	InvoiceID   string  `json:"invoiceId" binding:"omitempty,uuid"`
	ServiceDate string  `json:"serviceDate" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Technician  string  `json:"technician"`
	Cost        float64 `json:"cost" binding:"min=0"`
}

type UpdateServiceInput struct {
	InvoiceID   *string  `json:"invoiceId" binding:"omitempty"`
	ServiceDate *string  `json:"serviceDate"`
	Description *string  `json:"description" binding:"omitempty,min=1"`
	Technician  *string  `json:"technician"`
	Cost        *float64 `json:"cost" binding:"omitempty,min=0"`
}

func propertyExists(c *gin.Context, id uuid.UUID) bool {
	var count int64
	if err := config.DB.Model(&models.Property{}).Where("id = ?", id).Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return false
	}
	if count == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Property not found")
		return false
	}
	return true
}

// CreateService records work done at a property
func CreateService(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok || !propertyExists(c, propertyID) {
		return
	}

	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	date, err := utils.ParseDate(input.ServiceDate)
	if err != nil {
		utils.RespondWithValidationError(c, map[string]string{"serviceDate": "date"})
		return
	}
	invoiceID, ok := parseOptionalID(c, "invoiceId", input.InvoiceID)
	if !ok {
		return
	}

	entry := models.ServiceHistory{
		PropertyID:  propertyID,
		InvoiceID:   invoiceID,
		ServiceDate: date,
		Description: input.Description,
		Technician:  input.Technician,
		Cost:        input.Cost,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service record")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetServices lists a property's service history, newest first
func GetServices(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok || !propertyExists(c, propertyID) {
		return
	}

	var entries []models.ServiceHistory
	if err := config.DB.Where("property_id = ?", propertyID).
		Order("service_date DESC").
		Find(&entries).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve service history")
		return
	}

	c.JSON(http.StatusOK, entries)
}

func findServiceEntry(c *gin.Context) (*models.ServiceHistory, bool) {
	propertyID, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	entryID, ok := parseID(c, "serviceId")
	if !ok {
		return nil, false
	}

	var entry models.ServiceHistory
	if err := config.DB.Where("property_id = ? AND id = ?", propertyID, entryID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service record not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &entry, true
}

// UpdateService updates an existing service record
func UpdateService(c *gin.Context) {
	entry, ok := findServiceEntry(c)
	if !ok {
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	if input.InvoiceID != nil {
		invoiceID, ok := parseOptionalID(c, "invoiceId", *input.InvoiceID)
		if !ok {
			return
		}
		entry.InvoiceID = invoiceID
	}
	if input.ServiceDate != nil {
		date, err := utils.ParseDate(*input.ServiceDate)
		if err != nil {
			utils.RespondWithValidationError(c, map[string]string{"serviceDate": "date"})
			return
		}
		entry.ServiceDate = date
	}
	if input.Description != nil {
		entry.Description = *input.Description
	}
	if input.Technician != nil {
		entry.Technician = *input.Technician
	}
	if input.Cost != nil {
		entry.Cost = *input.Cost
	}

	if err := config.DB.Save(entry).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service record")
		return
	}

	c.JSON(http.StatusOK, entry)
}

func DeleteService(c *gin.Context) {
	entry, ok := findServiceEntry(c)
	if !ok {
		return
	}

	if err := config.DB.Delete(entry).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service record")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service record deleted successfully"})
}
