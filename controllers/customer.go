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

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name         string `json:"name" binding:"required,max=200"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone"`
	CompanyName  string `json:"companyName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	Notes        string `json:"notes"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Phone        *string `json:"phone"`
	CompanyName  *string `json:"companyName"`
	AddressLine1 *string `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postalCode"`
	Country      *string `json:"country"`
	Notes        *string `json:"notes"`
}

// emailTaken reports whether another customer already uses email.
func emailTaken(email string, except uuid.UUID) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	err := config.DB.Model(&models.Customer{}).
		Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), except).
		Count(&count).Error
	return count > 0, err
}

// CreateCustomer creates a new customer
func CreateCustomer(c *gin.Context) {
	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithValidationError(c, map[string]string{"phone": "phone"})
		return
	}

	email := strings.TrimSpace(input.Email)
	taken, err := emailTaken(email, uuid.Nil)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if taken {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this email already exists")
		return
	}

	customer := models.Customer{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Phone:        input.Phone,
		CompanyName:  input.CompanyName,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		Country:      input.Country,
		Notes:        input.Notes,
	}
	if err := config.DB.Create(&customer).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			utils.RespondWithError(c, http.StatusConflict, "Customer with this email already exists")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomers lists customers, optionally filtered by a search term
func GetCustomers(c *gin.Context) {
	page, limit, offset := utils.Pagination(c)

	q := config.DB.Model(&models.Customer{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ? OR LOWER(company_name) LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	var customers []models.Customer
	if err := q.Order("name ASC").Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, utils.Page{Data: customers, Total: total, Page: page, Limit: limit})
}

// GetCustomer retrieves a customer with properties, notes and photos
func GetCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	err := config.DB.
		Preload("Properties", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("NoteList", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&customer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer updates the given fields of a customer
func UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	var customer models.Customer
	if err := config.DB.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		taken, err := emailTaken(email, customer.ID)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		if taken {
			utils.RespondWithError(c, http.StatusConflict, "Customer with this email already exists")
			return
		}
		customer.Email = email
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithValidationError(c, map[string]string{"phone": "phone"})
			return
		}
		customer.Phone = *input.Phone
	}
	if input.Name != nil {
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.CompanyName != nil {
		customer.CompanyName = *input.CompanyName
	}
	if input.AddressLine1 != nil {
		customer.AddressLine1 = *input.AddressLine1
	}
	if input.AddressLine2 != nil {
		customer.AddressLine2 = *input.AddressLine2
	}
	if input.City != nil {
		customer.City = *input.City
	}
	if input.State != nil {
		customer.State = *input.State
	}
	if input.PostalCode != nil {
		customer.PostalCode = *input.PostalCode
	}
	if input.Country != nil {
		customer.Country = *input.Country
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}

	if err := config.DB.Save(&customer).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			utils.RespondWithError(c, http.StatusConflict, "Customer with this email already exists")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes a customer with its properties, notes and photos.
// Customers with invoices cannot be deleted.
func DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := config.DB.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var invoiceCount int64
	if err := config.DB.Model(&models.Invoice{}).Where("customer_id = ?", id).Count(&invoiceCount).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if invoiceCount > 0 {
		utils.RespondWithError(c, http.StatusConflict, "Customer has invoices and cannot be deleted")
		return
	}

	var files []string
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var propertyIDs []uuid.UUID
	if err := tx.Model(&models.Property{}).Where("customer_id = ?", id).Pluck("id", &propertyIDs).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}
	for _, pid := range propertyIDs {
		paths, err := deletePropertyTx(tx, pid)
		if err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
			return
		}
		files = append(files, paths...)
	}

	var photos []models.CustomerPhoto
	if err := tx.Where("customer_id = ?", id).Find(&photos).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}
	for _, p := range photos {
		files = append(files, p.FilePath)
	}

	for _, m := range []interface{}{&models.CustomerPhoto{}, &models.CustomerNote{}, &models.RecurringTemplate{}} {
		if err := tx.Where("customer_id = ?", id).Delete(m).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
			return
		}
	}
	if err := tx.Delete(&customer).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}

	app.Storage.Remove(files...)
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
