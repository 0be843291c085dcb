package controllers

import (
	"errors"
	"net/http"
	"strings"

	"invoicepro-backend/config"
	"invoicepro-backend/models"
	"invoicepro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreatePropertyInput struct {
	CustomerID   string   `json:"customerId" binding:"required,uuid"`
	Name         string   `json:"name"`
	AddressLine1 string   `json:"addressLine1" binding:"required"`
	AddressLine2 string   `json:"addressLine2"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	PostalCode   string   `json:"postalCode"`
	Latitude     *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	PropertyType string   `json:"propertyType" binding:"omitempty,oneof=residential commercial rental other"`
	YearBuilt    *int     `json:"yearBuilt" binding:"omitempty,min=1600,max=2200"`
	SquareFeet   *int     `json:"squareFeet" binding:"omitempty,min=0"`
	Bedrooms     *int     `json:"bedrooms" binding:"omitempty,min=0"`
	Bathrooms    *float64 `json:"bathrooms" binding:"omitempty,min=0"`
	LotSize      string   `json:"lotSize"`
	GateCode     string   `json:"gateCode"`
	KeyLocation  string   `json:"keyLocation"`
	AccessNotes  string   `json:"accessNotes"`
}

type UpdatePropertyInput struct {
	Name         *string  `json:"name"`
	AddressLine1 *string  `json:"addressLine1" binding:"omitempty,min=1"`
	AddressLine2 *string  `json:"addressLine2"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	PostalCode   *string  `json:"postalCode"`
	Latitude     *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	PropertyType *string  `json:"propertyType" binding:"omitempty,oneof=residential commercial rental other"`
	YearBuilt    *int     `json:"yearBuilt" binding:"omitempty,min=1600,max=2200"`
	SquareFeet   *int     `json:"squareFeet" binding:"omitempty,min=0"`
	Bedrooms     *int     `json:"bedrooms" binding:"omitempty,min=0"`
	Bathrooms    *float64 `json:"bathrooms" binding:"omitempty,min=0"`
	LotSize      *string  `json:"lotSize"`
	GateCode     *string  `json:"gateCode"`
	KeyLocation  *string  `json:"keyLocation"`
	AccessNotes  *string  `json:"accessNotes"`
}

func CreateProperty(c *gin.Context) {
	var input CreatePropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
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

	propertyType := input.PropertyType
	if propertyType == "" {
		propertyType = models.PropertyResidential
	}
	property := models.Property{
		CustomerID:   customerID,
		Name:         input.Name,
		AddressLine1: strings.TrimSpace(input.AddressLine1),
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		PropertyType: propertyType,
		YearBuilt:    input.YearBuilt,
		SquareFeet:   input.SquareFeet,
		Bedrooms:     input.Bedrooms,
		Bathrooms:    input.Bathrooms,
		LotSize:      input.LotSize,
		GateCode:     input.GateCode,
		KeyLocation:  input.KeyLocation,
		AccessNotes:  input.AccessNotes,
	}
	if err := config.DB.Create(&property).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create property")
		return
	}

	c.JSON(http.StatusCreated, property)
}

// GetProperties lists properties, filtered by customer_id, property_type or search
func GetProperties(c *gin.Context) {
	page, limit, offset := utils.Pagination(c)

	q := config.DB.Model(&models.Property{})
	customerID, ok := parseOptionalID(c, "customer_id", c.Query("customer_id"))
	if !ok {
		return
	}
	if customerID != nil {
		q = q.Where("customer_id = ?", *customerID)
	}
	if pt := c.Query("property_type"); pt != "" {
		q = q.Where("property_type = ?", pt)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(address_line1) LIKE ? OR LOWER(city) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve properties")
		return
	}
	var properties []models.Property
	if err := q.Preload("Customer").Order("address_line1 ASC").Offset(offset).Limit(limit).Find(&properties).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve properties")
		return
	}

	c.JSON(http.StatusOK, utils.Page{Data: properties, Total: total, Page: page, Limit: limit})
}

// GetProperty returns a property with its notes, photos and service history
func GetProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var property models.Property
	err := config.DB.
		Preload("Customer").
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("ServiceHistory", func(db *gorm.DB) *gorm.DB { return db.Order("service_date DESC") }).
		First(&property, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Property not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, property)
}

func UpdateProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input UpdatePropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	var property models.Property
	if err := config.DB.First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Property not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		property.Name = *input.Name
	}
	if input.AddressLine1 != nil {
		property.AddressLine1 = strings.TrimSpace(*input.AddressLine1)
	}
	if input.AddressLine2 != nil {
		property.AddressLine2 = *input.AddressLine2
	}
	if input.City != nil {
		property.City = *input.City
	}
	if input.State != nil {
		property.State = *input.State
	}
	if input.PostalCode != nil {
		property.PostalCode = *input.PostalCode
	}
	if input.Latitude != nil {
		property.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		property.Longitude = input.Longitude
	}
	if input.PropertyType != nil {
		property.PropertyType = *input.PropertyType
	}
	if input.YearBuilt != nil {
		property.YearBuilt = input.YearBuilt
	}
	if input.SquareFeet != nil {
		property.SquareFeet = input.SquareFeet
	}
	if input.Bedrooms != nil {
		property.Bedrooms = input.Bedrooms
	}
	if input.Bathrooms != nil {
		property.Bathrooms = input.Bathrooms
	}
	if input.LotSize != nil {
		property.LotSize = *input.LotSize
	}
	if input.GateCode != nil {
		property.GateCode = *input.GateCode
	}
	if input.KeyLocation != nil {
		property.KeyLocation = *input.KeyLocation
	}
	if input.AccessNotes != nil {
		property.AccessNotes = *input.AccessNotes
	}

	if err := config.DB.Omit("Customer", "Notes", "Photos", "ServiceHistory").Save(&property).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update property")
		return
	}

	c.JSON(http.StatusOK, property)
}

// deletePropertyTx removes a property and everything it owns. Invoices,
// expenses and templates pointing at it are unlinked. Returns photo paths.
func deletePropertyTx(tx *gorm.DB, id uuid.UUID) ([]string, error) {
	var photos []models.PropertyPhoto
	if err := tx.Where("property_id = ?", id).Find(&photos).Error; err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(photos))
	for _, p := range photos {
		paths = append(paths, p.FilePath)
	}

	for _, m := range []interface{}{&models.Invoice{}, &models.Expense{}, &models.RecurringTemplate{}} {
		if err := tx.Model(m).Where("property_id = ?", id).Update("property_id", nil).Error; err != nil {
			return nil, err
		}
	}
	for _, m := range []interface{}{&models.PropertyPhoto{}, &models.PropertyNote{}, &models.ServiceHistory{}} {
		if err := tx.Where("property_id = ?", id).Delete(m).Error; err != nil {
			return nil, err
		}
	}
	res := tx.Where("id = ?", id).Delete(&models.Property{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return paths, nil
}

func DeleteProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var paths []string
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		paths, err = deletePropertyTx(tx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Property not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete property")
		}
		return
	}

	app.Storage.Remove(paths...)
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted successfully"})
}
