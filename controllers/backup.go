package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetBackups(c *gin.Context) {
	files, err := app.Backups.List()
	if err != nil {
		respondServiceError(c, err, "Failed to list backups")
		return
	}
	c.JSON(http.StatusOK, files)
}

// CreateBackup runs pg_dump now
func CreateBackup(c *gin.Context) {
	file, err := app.Backups.Create(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to create backup")
		return
	}
	c.JSON(http.StatusCreated, file)
}

// RestoreBackup replays a backup into the database. Existing data is overwritten.
func RestoreBackup(c *gin.Context) {
	if err := app.Backups.Restore(c.Request.Context(), c.Param("name")); err != nil {
		respondServiceError(c, err, "Failed to restore backup")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Backup restored successfully"})
}

func DeleteBackup(c *gin.Context) {
	if err := app.Backups.Delete(c.Param("name")); err != nil {
		respondServiceError(c, err, "Failed to delete backup")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Backup deleted successfully"})
}

// CleanupBackups removes backups past the retention window
func CleanupBackups(c *gin.Context) {
	removed, err := app.Backups.Cleanup()
	if err != nil {
		respondServiceError(c, err, "Failed to clean up backups")
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func DownloadBackup(c *gin.Context) {
	name := c.Param("name")
	path, err := app.Backups.Path(name)
	if err != nil {
		respondServiceError(c, err, "Failed to find backup")
		return
	}
	c.FileAttachment(path, name)
}
