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

type NoteInput struct {
	Category string `json:"category" binding:"omitempty,oneof=general access billing maintenance"`
	Content  string `json:"content" binding:"required"`
}

type UpdateNoteInput struct {
	Category *string `json:"category" binding:"omitempty,oneof=general access billing maintenance"`
	Content  *string `json:"content" binding:"omitempty,min=1"`
}

// noteScope describes the owner of a set of notes.
type noteScope struct {
	owner    interface{} // model of the owning table
	label    string
	fk       string
	newNote  func(ownerID uuid.UUID, category, content string) interface{}
	newOne   func() interface{}
	newSlice func() interface{}
}

var CustomerNotes = noteScope{
	owner: &models.Customer{},
	label: "Customer",
	fk:    "customer_id",
	newNote: func(id uuid.UUID, category, content string) interface{} {
		return &models.CustomerNote{CustomerID: id, Category: category, Content: content}
	},
	newOne:   func() interface{} { return &models.CustomerNote{} },
	newSlice: func() interface{} { return &[]models.CustomerNote{} },
}

var PropertyNotes = noteScope{
	owner: &models.Property{},
	label: "Property",
	fk:    "property_id",
	newNote: func(id uuid.UUID, category, content string) interface{} {
		return &models.PropertyNote{PropertyID: id, Category: category, Content: content}
	},
	newOne:   func() interface{} { return &models.PropertyNote{} },
	newSlice: func() interface{} { return &[]models.PropertyNote{} },
}

func (s noteScope) ownerID(c *gin.Context) (uuid.UUID, bool) {
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

func (s noteScope) find(c *gin.Context) (interface{}, bool) {
	ownerID, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	noteID, ok := parseID(c, "noteId")
	if !ok {
		return nil, false
	}
	note := s.newOne()
	if err := config.DB.Where(s.fk+" = ? AND id = ?", ownerID, noteID).First(note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Note not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return note, true
}

func (s noteScope) Create(c *gin.Context) {
	ownerID, ok := s.ownerID(c)
	if !ok {
		return
	}
	var input NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	category := input.Category
	if category == "" {
		category = models.NoteGeneral
	}

	note := s.newNote(ownerID, category, input.Content)
	if err := config.DB.Create(note).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create note")
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (s noteScope) List(c *gin.Context) {
	ownerID, ok := s.ownerID(c)
	if !ok {
		return
	}
	q := config.DB.Where(s.fk+" = ?", ownerID)
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	notes := s.newSlice()
	if err := q.Order("created_at DESC").Find(notes).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notes")
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (s noteScope) Update(c *gin.Context) {
	note, ok := s.find(c)
	if !ok {
		return
	}
	var input UpdateNoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if len(updates) > 0 {
		if err := config.DB.Model(note).Updates(updates).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update note")
			return
		}
	}
	c.JSON(http.StatusOK, note)
}

func (s noteScope) Delete(c *gin.Context) {
	note, ok := s.find(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(note).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete note")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}
