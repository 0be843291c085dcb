package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondWithError aborts the request with a JSON error body.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// RespondWithValidationError aborts with a 400 and per-field rule names.
func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(400, gin.H{
		"error":  "Validation failed",
		"fields": fields,
	})
}

// RespondWithBindError turns a binding error into a structured 400.
func RespondWithBindError(c *gin.Context, err error) {
	if fields := ValidationFields(err); len(fields) > 0 {
		RespondWithValidationError(c, fields)
		return
	}
	RespondWithError(c, 400, "Invalid input: "+err.Error())
}

// Page is the envelope for paginated listings.
type Page struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
