package controllers

import (
	"errors"
	"net/http"
	"path"

	"invoicepro-backend/config"
	"invoicepro-backend/models"
	"invoicepro-backend/services"
	"invoicepro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UpdatePhotoInput struct {
	Category    *string `json:"category" binding:"omitempty,oneof=before after progress damage receipt other"`
	Description *string `json:"description"`
}

// photoScope describes the owner of a set of photos.
type photoScope struct {
	owner    interface{}
	label    string
	fk       string
	dir      string
	newPhoto func(ownerID uuid.UUID, f models.PhotoFile) interface{}
	newOne   func() interface{}
	newSlice func() interface{}
}

var CustomerPhotos = photoScope{
	owner: &models.Customer{},
	label: "Customer",
	fk:    "customer_id",
	dir:   "customers",
	newPhoto: func(id uuid.UUID, f models.PhotoFile) interface{} {
		return &models.CustomerPhoto{CustomerID: id, PhotoFile: f}
	},
	newOne:   func() interface{} { return &models.CustomerPhoto{} },
	newSlice: func() interface{} { return &[]models.CustomerPhoto{} },
}

var PropertyPhotos = photoScope{
	owner: &models.Property{},
	label: "Property",
	fk:    "property_id",
	dir:   "properties",
	newPhoto: func(id uuid.UUID, f models.PhotoFile) interface{} {
		return &models.PropertyPhoto{PropertyID: id, PhotoFile: f}
	},
	newOne:   func() interface{} { return &models.PropertyPhoto{} },
	newSlice: func() interface{} { return &[]models.PropertyPhoto{} },
}

var InvoicePhotos = photoScope{
	owner: &models.Invoice{},
	label: "Invoice",
	fk:    "invoice_id",
	dir:   "invoices",
	newPhoto: func(id uuid.UUID, f models.PhotoFile) interface{} {
		return &models.InvoicePhoto{InvoiceID: id, PhotoFile: f}
	},
	newOne:   func() interface{} { return &models.InvoicePhoto{} },
	newSlice: func() interface{} { return &[]models.InvoicePhoto{} },
}

func (s photoScope) ownerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return id, false
	}
	var count int64
	if err := config.DB.Model(s.owner).Where("id = ?", id).Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return id, false
	}
	if count == 0 {
		utils.RespondWithError(c, http.StatusNotFound, s.label+" not found")
		return id, false
	}
	return id, true
}

func (s photoScope) query(c *gin.Context) (*gorm.DB, bool) {
	ownerID, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	photoID, ok := parseID(c, "photoId")
	if !ok {
		return nil, false
	}
	return config.DB.Where(s.fk+" = ? AND id = ?", ownerID, photoID), true
}

// Upload stores a multipart "photo" with optional category and description fields.
func (s photoScope) Upload(c *gin.Context) {
	ownerID, ok := s.ownerID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		utils.RespondWithValidationError(c, map[string]string{"photo": "required"})
		return
	}
	category := c.DefaultPostForm("category", models.PhotoOther)
	if !models.ValidPhotoCategory(category) {
		utils.RespondWithValidationError(c, map[string]string{"category": "oneof"})
		return
	}

	stored, err := app.Storage.Save(fh, path.Join(s.dir, ownerID.String()), services.ImageMimeTypes)
	if err != nil {
		respondServiceError(c, err, "Failed to store photo")
		return
	}

	photo := s.newPhoto(ownerID, models.PhotoFile{
		Category:    category,
		Description: c.PostForm("description"),
		FileName:    stored.FileName,
		FilePath:    stored.Path,
		MimeType:    stored.MimeType,
		Size:        stored.Size,
	})
	if err := config.DB.Create(photo).Error; err != nil {
		app.Storage.Remove(stored.Path)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save photo")
		return
	}
	c.JSON(http.StatusCreated, photo)
}

func (s photoScope) List(c *gin.Context) {
	ownerID, ok := s.ownerID(c)
	if !ok {
		return
	}
	q := config.DB.Where(s.fk+" = ?", ownerID)
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	photos := s.newSlice()
	if err := q.Order("created_at DESC").Find(photos).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve photos")
		return
	}
	c.JSON(http.StatusOK, photos)
}

func (s photoScope) Update(c *gin.Context) {
	q, ok := s.query(c)
	if !ok {
		return
	}
	var input UpdatePhotoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	photo := s.newOne()
	if err := q.First(photo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Photo not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	updates := map[string]interface{}{}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if len(updates) > 0 {
		if err := config.DB.Model(photo).Updates(updates).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update photo")
			return
		}
	}
	c.JSON(http.StatusOK, photo)
}

func (s photoScope) Delete(c *gin.Context) {
	q, ok := s.query(c)
	if !ok {
		return
	}
	photo := s.newOne()
	if err := q.First(photo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Photo not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := config.DB.Delete(photo).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete photo")
		return
	}

	if f, ok := photo.(interface{ StoredPath() string }); ok {
		app.Storage.Remove(f.StoredPath())
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted successfully"})
}
