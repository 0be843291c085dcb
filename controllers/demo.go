package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDemoData reports how many demo rows exist per entity
func GetDemoData(c *gin.Context) {
	counts, err := app.Demo.Counts()
	if err != nil {
		respondServiceError(c, err, "Failed to count demo data")
		return
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, gin.H{"loaded": total > 0, "counts": counts})
}

func SeedDemoData(c *gin.Context) {
	counts, err := app.Demo.Seed()
	if err != nil {
		respondServiceError(c, err, "Failed to load demo data")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Demo data loaded", "counts": counts})
}

func ClearDemoData(c *gin.Context) {
	counts, err := app.Demo.Clear()
	if err != nil {
		respondServiceError(c, err, "Failed to clear demo data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Demo data removed", "removed": counts})
}
