package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"invoicepro-backend/services"
	"invoicepro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// app holds the services used by the handlers. Set once by Setup.
var app *services.Services

func Setup(s *services.Services) {
	app = s
}

// parseID reads a uuid path parameter, answering 400 when malformed.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalID parses s when non-empty. A nil result with ok means absent.
func parseOptionalID(c *gin.Context, field, s string) (*uuid.UUID, bool) {
	if s == "" {
		return nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		utils.RespondWithValidationError(c, map[string]string{field: "uuid"})
		return nil, false
	}
	return &id, true
}

// dateRange reads from/to query dates. Defaults are the start of the current
// year and the end of today.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	to := utils.EndOfDay(now)
	if s := c.Query("from"); s != "" {
		t, err := utils.ParseDate(s)
		if err != nil {
			utils.RespondWithValidationError(c, map[string]string{"from": "date"})
			return from, to, false
		}
		from = utils.BeginningOfDay(t)
	}
	if s := c.Query("to"); s != "" {
		t, err := utils.ParseDate(s)
		if err != nil {
			utils.RespondWithValidationError(c, map[string]string{"to": "date"})
			return from, to, false
		}
		to = utils.EndOfDay(t)
	}
	if to.Before(from) {
		utils.RespondWithValidationError(c, map[string]string{"to": "gtefield=from"})
		return from, to, false
	}
	return from, to, true
}

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, services.ErrBackupNotFound), errors.Is(err, services.ErrExportNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrTemplateInactive),
		errors.Is(err, services.ErrDuplicateNumber), errors.Is(err, services.ErrAlreadyGenerated),
		errors.Is(err, services.ErrCustomerHasInvoices), errors.Is(err, services.ErrDemoDataExists):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNoLineItems), errors.Is(err, services.ErrInvalidSchedule),
		errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, services.ErrUnsupportedFile), errors.Is(err, services.ErrInvalidFileName),
		errors.Is(err, services.ErrNoRecipient), errors.Is(err, services.ErrInvalidImport):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrFileTooLarge):
		utils.RespondWithError(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, services.ErrMailerNotConfigured), errors.Is(err, services.ErrSMSNotConfigured),
		errors.Is(err, services.ErrReceiptParserDisabled):
		utils.RespondWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("%s: %v", fallback, err)
		utils.RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}
