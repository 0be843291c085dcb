package controllers

import (
	"io"
	"net/http"
	"strings"

	"invoicepro-backend/services"
	"invoicepro-backend/utils"

	"github.com/gin-gonic/gin"
)

const maxImportBytes = 100 << 20

type ExportInput struct {
	Format   string   `json:"format" binding:"omitempty,oneof=json csv"`
	Entities []string `json:"entities" binding:"omitempty,dive,oneof=customers properties invoices expenses recurring_templates"`
}

// CreateExport writes a zip archive of the requested entities
func CreateExport(c *gin.Context) {
	var input ExportInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithBindError(c, err)
			return
		}
	}

	file, err := app.Exports.Export(input.Format, input.Entities)
	if err != nil {
		respondServiceError(c, err, "Failed to export data")
		return
	}
	c.JSON(http.StatusCreated, file)
}

func GetExports(c *gin.Context) {
	files, err := app.Exports.List()
	if err != nil {
		respondServiceError(c, err, "Failed to list exports")
		return
	}
	c.JSON(http.StatusOK, files)
}

func DownloadExport(c *gin.Context) {
	name := c.Param("name")
	path, err := app.Exports.Path(name)
	if err != nil {
		respondServiceError(c, err, "Failed to find export")
		return
	}
	c.FileAttachment(path, name)
}

func DeleteExport(c *gin.Context) {
	if err := app.Exports.Delete(c.Param("name")); err != nil {
		respondServiceError(c, err, "Failed to delete export")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Export deleted successfully"})
}

// ImportData loads a multipart "file" (.zip export, .json or .csv). The
// "entity" form field names the entity for single-entity files.
func ImportData(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithValidationError(c, map[string]string{"file": "required"})
		return
	}
	if fh.Size > maxImportBytes {
		respondServiceError(c, services.ErrFileTooLarge, "Import file too large")
		return
	}
	entity := strings.TrimSpace(c.PostForm("entity"))
	if entity != "" && !services.ValidEntity(entity) {
		utils.RespondWithValidationError(c, map[string]string{"entity": "oneof"})
		return
	}

	src, err := fh.Open()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read import file")
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read import file")
		return
	}

	result, err := app.Imports.ImportFile(fh.Filename, data, entity)
	if err != nil {
		respondServiceError(c, err, "Import failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Import completed",
		"result":  result,
	})
}
