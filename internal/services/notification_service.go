// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/ghanadude/backend/internal/config"
	"github.com/ghanadude/backend/internal/models"
)

// MailSender abstracts the SMTP dialer so tests can capture outgoing
// messages.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
	mailer MailSender
}

type Attachment struct {
	Filename string
	Content  []byte
	MimeType string
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	var mailer MailSender
	if cfg.Email.SMTPHost != "" {
		mailer = gomail.NewDialer(cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.SMTPUsername, cfg.Email.SMTPPassword)
	}

	return &NotificationService{
		db:     db,
		config: cfg,
		mailer: mailer,
	}
}

// NewNotificationServiceWithMailer is used by tests to inject a fake
// sender.
func NewNotificationServiceWithMailer(db *gorm.DB, cfg *config.Config, mailer MailSender) *NotificationService {
	return &NotificationService{db: db, config: cfg, mailer: mailer}
}

// SendInvoiceEmail mails the rendered invoice PDF to the order owner.
func (s *NotificationService) SendInvoiceEmail(user *models.User, subject string, orderID uint, totalPrice float64, orderType models.OrderType, addressSummary string, invoice *Attachment) error {
	data := map[string]interface{}{
		"Name":           user.FullName(),
		"OrderID":        orderID,
		"Total":          fmt.Sprintf("%s%.2f", s.config.Store.CurrencySymbol, totalPrice),
		"AddressSummary": addressSummary,
		"StoreName":      s.config.Store.Name,
		"Year":           time.Now().Year(),
	}

	body, err := s.renderTemplate(invoiceEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render invoice email: %w", err)
	}

	return s.sendEmail([]string{user.Email}, subject, body, invoice)
}

// SendAdminPaymentNotification summarizes a confirmed payment to every
// administrative user.
func (s *NotificationService) SendAdminPaymentNotification(kind string, orderID uint, customer *models.User, totalPrice float64, orderType models.OrderType, status models.OrderStatus) error {
	emails, err := s.adminEmails()
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Payment Received: %s #%d", kind, orderID)
	body := fmt.Sprintf(
		"Payment for %s #%d has been received.\n\n"+
			"Customer: %s (%s)\n"+
			"Total Paid: %s%.2f\n"+
			"Order Type: %s\n"+
			"Status: %s\n",
		kind, orderID, customer.FullName(), customer.Email,
		s.config.Store.CurrencySymbol, totalPrice, orderType, status)

	return s.sendEmail(emails, subject, body, nil)
}

// SendLowStockAlert notifies administrators that a product fell below
// the restock threshold.
func (s *NotificationService) SendLowStockAlert(alert *LowStockAlert) error {
	notification := &models.AdminNotification{
		Type:         "low_stock",
		Title:        "Low Stock Alert",
		Message:      fmt.Sprintf("The stock for %s is down to %d. Please restock soon.", alert.ProductName, alert.Remaining),
		Priority:     "high",
		ResourceType: "product",
		ResourceID:   &alert.ProductID,
	}
	if err := s.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	emails, err := s.adminEmails()
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return nil
	}

	return s.sendEmail(emails, "Low Stock Alert", notification.Message, nil)
}

// SendDispatchEmail tells the customer their order is on its way and
// carries the one-time delivery pin.
func (s *NotificationService) SendDispatchEmail(user *models.User, address, pinCode string) error {
	data := map[string]interface{}{
		"Name":      user.FullName(),
		"Address":   address,
		"PinCode":   pinCode,
		"StoreName": s.config.Store.Name,
		"Year":      time.Now().Year(),
	}

	body, err := s.renderTemplate(dispatchEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render dispatch email: %w", err)
	}

	return s.sendEmail([]string{user.Email}, "Your Order Has Been Dispatched", body, nil)
}

// SendOrderStatusEmail informs the customer about a status change.
func (s *NotificationService) SendOrderStatusEmail(user *models.User, orderID uint, totalPrice float64, status models.OrderStatus) error {
	data := map[string]interface{}{
		"Name":      user.FullName(),
		"OrderID":   orderID,
		"Total":     fmt.Sprintf("%s%.2f", s.config.Store.CurrencySymbol, totalPrice),
		"Status":    string(status),
		"StoreName": s.config.Store.Name,
		"Year":      time.Now().Year(),
	}

	body, err := s.renderTemplate(statusEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render status email: %w", err)
	}

	return s.sendEmail([]string{user.Email}, "Order Status Update", body, nil)
}

// RaiseOperatorAlert records a non-fatal failure on the operator channel.
func (s *NotificationService) RaiseOperatorAlert(alertType, title, message, resourceType string, resourceID uint) {
	notification := &models.AdminNotification{
		Type:         alertType,
		Title:        title,
		Message:      message,
		Priority:     "high",
		ResourceType: resourceType,
		ResourceID:   &resourceID,
	}
	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("type", alertType).Error("Failed to record operator alert")
	}
}

// Helper methods
func (s *NotificationService) adminEmails() ([]string, error) {
	var emails []string
	err := s.db.Model(&models.User{}).
		Where("user_type = ? AND email <> ''", models.UserTypeAdmin).
		Pluck("email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch admin emails: %w", err)
	}
	return emails, nil
}

func (s *NotificationService) sendEmail(to []string, subject, body string, attachment *Attachment) error {
	if s.mailer == nil {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email skipped (SMTP not configured)")
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.Email.FromEmail, s.config.Email.FromName)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if attachment != nil {
		m.Attach(attachment.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(attachment.Content)
				return err
			}),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {attachment.MimeType},
			}))
	}

	return s.mailer.DialAndSend(m)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

const invoiceEmailTemplate = `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your order!</h2>
	<p>Dear {{.Name}},</p>
	<p>Your invoice for order <strong>#{{.OrderID}}</strong> is attached.</p>
	<ul>
		<li>Total: <strong>{{.Total}}</strong></li>
		<li>Delivery: {{.AddressSummary}}</li>
	</ul>
	<p>Best regards,<br>{{.StoreName}} Team</p>
	<p>{{.Year}}</p>
</body>
</html>`

const dispatchEmailTemplate = `
<!DOCTYPE html>
<html>
<body>
	<h2>Your order has been dispatched</h2>
	<p>Dear {{.Name}},</p>
	<p>Your order is on its way to: {{.Address}}</p>
	<p>Your delivery pin is <strong>{{.PinCode}}</strong>. Share it only with the courier.</p>
	<p>Best regards,<br>{{.StoreName}} Team</p>
	<p>{{.Year}}</p>
</body>
</html>`

const statusEmailTemplate = `
<!DOCTYPE html>
<html>
<body>
	<p>Dear {{.Name}},</p>
	<p>The status of your order (Order ID: <strong>{{.OrderID}}</strong>) has been updated to <strong>{{.Status}}</strong>.</p>
	<ul>
		<li>Total Price: <strong>{{.Total}}</strong></li>
		<li>Current Status: <strong>{{.Status}}</strong></li>
	</ul>
	<p>Thank you for shopping with us.</p>
	<p>Best regards,<br>{{.StoreName}}</p>
	<p>{{.Year}}</p>
</body>
</html>`
