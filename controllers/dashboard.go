package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview returns the dashboard widgets
func GetDashboardOverview(c *gin.Context) {
	if _, err := app.Invoices.RefreshOverdue(); err != nil {
		respondServiceError(c, err, "Failed to refresh invoice status")
		return
	}
	c.JSON(http.StatusOK, app.Reports.Dashboard())
}
