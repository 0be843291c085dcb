// controllers/reminder.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SendInvoice emails the invoice PDF to the customer. Drafts become unpaid once sent.
func SendInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := app.Notifications.SendInvoiceEmail(id); err != nil {
		respondServiceError(c, err, "Failed to send invoice")
		return
	}

	invoice, err := app.Invoices.Get(id)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice sent successfully",
		"invoice": invoice,
	})
}

// SendInvoiceReminder texts a payment reminder for an unpaid or overdue invoice
func SendInvoiceReminder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := app.Notifications.SendPaymentReminder(id); err != nil {
		respondServiceError(c, err, "Failed to send reminder")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder sent successfully"})
}

// GetInvoiceNotifications lists delivery attempts for an invoice
func GetInvoiceNotifications(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := app.Invoices.Get(id); err != nil {
		respondServiceError(c, err, "Failed to retrieve invoice")
		return
	}

	logs, err := app.Notifications.History(id)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve notifications")
		return
	}
	c.JSON(http.StatusOK, logs)
}

// SweepOverdue marks past-due invoices overdue. With remind=true it also texts each newly overdue customer.
func SweepOverdue(c *gin.Context) {
	result, err := app.SweepOverdue(c.Query("remind") == "true")
	if err != nil {
		respondServiceError(c, err, "Failed to update overdue invoices")
		return
	}
	c.JSON(http.StatusOK, result)
}
