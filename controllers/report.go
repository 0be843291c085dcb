// controllers/report.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"invoicepro-backend/utils"

	"github.com/gin-gonic/gin"
)

// ReportController handles all reporting functions
type ReportController struct{}

// refresh brings overdue status up to date so report buckets are current.
func (rc *ReportController) refresh(c *gin.Context) bool {
	if _, err := app.Invoices.RefreshOverdue(); err != nil {
		respondServiceError(c, err, "Failed to refresh invoice status")
		return false
	}
	return true
}

// GetSummary returns invoiced, collected, outstanding and expense totals for a date range
func (rc *ReportController) GetSummary(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok || !rc.refresh(c) {
		return
	}
	summary, err := app.Reports.Summary(from, to)
	if err != nil {
		respondServiceError(c, err, "Failed to build summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetRevenue returns 12 monthly buckets for a year (default current year)
func (rc *ReportController) GetRevenue(c *gin.Context) {
	year := time.Now().Year()
	if s := c.Query("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1900 || y > 9999 {
			utils.RespondWithValidationError(c, map[string]string{"year": "year"})
			return
		}
		year = y
	}
	months, err := app.Reports.MonthlyRevenue(year)
	if err != nil {
		respondServiceError(c, err, "Failed to get monthly revenue")
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "months": months})
}

// GetAging buckets outstanding invoices by days past due
func (rc *ReportController) GetAging(c *gin.Context) {
	asOf := time.Now()
	if s := c.Query("asOf"); s != "" {
		t, err := utils.ParseDate(s)
		if err != nil {
			utils.RespondWithValidationError(c, map[string]string{"asOf": "date"})
			return
		}
		asOf = t
	}
	if !rc.refresh(c) {
		return
	}
	report, err := app.Reports.Aging(asOf)
	if err != nil {
		respondServiceError(c, err, "Failed to build aging report")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (rc *ReportController) GetExpensesByCategory(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	totals, err := app.Reports.ExpensesByCategory(from, to)
	if err != nil {
		respondServiceError(c, err, "Failed to get expenses by category")
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (rc *ReportController) GetProfitLoss(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	report, err := app.Reports.ProfitLoss(from, to)
	if err != nil {
		respondServiceError(c, err, "Failed to build profit and loss")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (rc *ReportController) GetTopCustomers(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit < 1 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}
	customers, err := app.Reports.TopCustomers(from, to, limit)
	if err != nil {
		respondServiceError(c, err, "Failed to get top customers")
		return
	}
	c.JSON(http.StatusOK, customers)
}

// GetReportAnalytics returns month, quarter and year revenue with growth against the previous period
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	analytics, err := app.Reports.Analytics()
	if err != nil {
		respondServiceError(c, err, "Failed to build analytics")
		return
	}
	c.JSON(http.StatusOK, analytics)
}
