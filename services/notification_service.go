// services/notification_service.go
package services

import (
	"fmt"
	"io"
	"log"
	"time"

	"invoicepro-backend/models"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// MailSender is satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMSSender sends a text message and returns the provider message id.
type SMSSender interface {
	SendSMS(to, body string) (string, error)
}

// twilioSender sends SMS through the Twilio REST API.
type twilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) SMSSender {
	return &twilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (t *twilioSender) SendSMS(to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid != nil {
		return *resp.Sid, nil
	}
	return "", nil
}

type NotificationService struct {
	db       *gorm.DB
	invoices *InvoiceService
	Mailer   MailSender
	SMS      SMSSender
	From     string
	Business BusinessInfo
}

func NewNotificationService(db *gorm.DB, invoices *InvoiceService, biz BusinessInfo) *NotificationService {
	return &NotificationService{db: db, invoices: invoices, Business: biz}
}

// ConfigureSMTP installs a gomail dialer when a host is given.
func (s *NotificationService) ConfigureSMTP(host string, port int, user, password, from string) {
	if host == "" {
		return
	}
	s.Mailer = gomail.NewDialer(host, port, user, password)
	s.From = from
	if s.From == "" {
		s.From = user
	}
}

// ConfigureTwilio installs the Twilio sender when credentials are given.
func (s *NotificationService) ConfigureTwilio(accountSID, authToken, from string) {
	if accountSID == "" || authToken == "" || from == "" {
		return
	}
	s.SMS = NewTwilioSender(accountSID, authToken, from)
}

func (s *NotificationService) record(invoiceID uuid.UUID, channel, recipient, subject string, sendErr error) {
	entry := models.NotificationLog{
		InvoiceID: invoiceID,
		Channel:   channel,
		Recipient: recipient,
		Subject:   subject,
		Status:    models.NotificationSent,
		SentAt:    time.Now(),
	}
	if sendErr != nil {
		entry.Status = models.NotificationFailed
		entry.ErrorMessage = sendErr.Error()
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to log %s notification for invoice %s: %v", channel, invoiceID, err)
	}
}

// SendInvoiceEmail emails the invoice PDF to the customer and marks it sent.
func (s *NotificationService) SendInvoiceEmail(invoiceID uuid.UUID) error {
	if s.Mailer == nil {
		return ErrMailerNotConfigured
	}
	inv, err := s.invoices.Get(invoiceID)
	if err != nil {
		return err
	}
	if inv.Customer == nil || inv.Customer.Email == "" {
		return ErrNoRecipient
	}

	pdf, err := InvoicePDF(inv, s.Business)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Invoice %s from %s", inv.InvoiceNumber, s.Business.Name)
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.From)
	msg.SetHeader("To", inv.Customer.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", fmt.Sprintf(
		"<p>Hi %s,</p><p>Please find attached invoice <b>%s</b> for <b>%s</b>, due %s.</p><p>Thank you,<br>%s</p>",
		inv.Customer.Name, inv.InvoiceNumber, money(inv.Total), inv.DueDate.Format(dateFormat), s.Business.Name))
	msg.Attach(inv.InvoiceNumber+".pdf", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(pdf)
		return err
	}))

	sendErr := s.Mailer.DialAndSend(msg)
	s.record(inv.ID, models.ChannelEmail, inv.Customer.Email, subject, sendErr)
	if sendErr != nil {
		log.Printf("Failed to email invoice %s to %s: %v", inv.InvoiceNumber, inv.Customer.Email, sendErr)
		return fmt.Errorf("send email: %w", sendErr)
	}
	log.Printf("Invoice %s emailed to %s", inv.InvoiceNumber, inv.Customer.Email)
	return s.invoices.MarkSent(inv.ID)
}

// SendPaymentReminder texts the customer about an outstanding invoice.
func (s *NotificationService) SendPaymentReminder(invoiceID uuid.UUID) error {
	if s.SMS == nil {
		return ErrSMSNotConfigured
	}
	inv, err := s.invoices.Get(invoiceID)
	if err != nil {
		return err
	}
	if !inv.IsOutstanding() {
		return fmt.Errorf("invoice is %s: %w", inv.Status, ErrInvalidTransition)
	}
	if inv.Customer == nil || inv.Customer.Phone == "" {
		return ErrNoRecipient
	}

	body := fmt.Sprintf("Reminder: invoice %s for %s was due %s.",
		inv.InvoiceNumber, money(inv.Total), inv.DueDate.Format(dateFormat))
	sid, sendErr := s.SMS.SendSMS(inv.Customer.Phone, body)
	s.record(inv.ID, models.ChannelSMS, inv.Customer.Phone, "payment reminder", sendErr)
	if sendErr != nil {
		log.Printf("Failed to send message to %s: %v", inv.Customer.Phone, sendErr)
		return fmt.Errorf("send sms: %w", sendErr)
	}
	log.Printf("Message sent to %s, SID: %s", inv.Customer.Phone, sid)
	return nil
}

// History lists notifications sent for an invoice, newest first.
func (s *NotificationService) History(invoiceID uuid.UUID) ([]models.NotificationLog, error) {
	var logs []models.NotificationLog
	err := s.db.Where("invoice_id = ?", invoiceID).Order("sent_at DESC").Find(&logs).Error
	return logs, err
}
