// internal/services/invoice_service.go
package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ghanadude/backend/internal/config"
	"github.com/ghanadude/backend/internal/models"
	"github.com/ghanadude/backend/internal/pricing"
)

// InvoiceService renders order invoices as PDF documents and stores them
// in the object store. Rendering failures are never fatal to the payment
// flow; callers log and raise an operator alert instead.
type InvoiceService struct {
	config  *config.Config
	storage *StorageService
}

func NewInvoiceService(cfg *config.Config, storage *StorageService) *InvoiceService {
	return &InvoiceService{config: cfg, storage: storage}
}

type invoiceLine struct {
	Description string
	Quantity    int
	UnitPrice   float64
}

// GenerateOrderInvoice renders and stores the invoice for a regular
// order. It returns the storage key and the rendered bytes so the caller
// can attach them to the confirmation email without a second fetch.
func (s *InvoiceService) GenerateOrderInvoice(order *models.Order) (string, *Attachment, error) {
	lines := make([]invoiceLine, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.Product.Name
		if name == "" {
			name = fmt.Sprintf("Product #%d", item.ProductID)
		}
		if item.SelectedSize != "" {
			name = fmt.Sprintf("%s (%s)", name, item.SelectedSize)
		}
		lines = append(lines, invoiceLine{
			Description: name,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
		})
	}

	return s.render(invoiceParams{
		Number:         fmt.Sprintf("INV-%d", order.ID),
		Key:            fmt.Sprintf("invoices/order_%d.pdf", order.ID),
		CustomerName:   order.User.FullName(),
		CustomerEmail:  order.User.Email,
		Address:        deliverySummary(order.OrderType, order.Address, order.City, order.PostalCode, order.Country),
		Lines:          lines,
		DeliveryFee:    order.DeliveryFee,
		VATAmount:      order.VATAmount,
		RewardApplied:  order.RewardApplied,
		DiscountAmount: order.DiscountAmount,
		TotalPrice:     order.TotalPrice,
	})
}

// GenerateBulkOrderInvoice renders and stores the invoice for a bulk
// order, including artwork-only lines.
func (s *InvoiceService) GenerateBulkOrderInvoice(order *models.BulkOrder) (string, *Attachment, error) {
	lines := make([]invoiceLine, 0, len(order.Items))
	for _, item := range order.Items {
		var name string
		switch {
		case item.Product != nil && item.Product.Name != "":
			name = item.Product.Name
		case item.CustomDesignKey != "":
			name = "Custom design print"
		case item.BrandLogoKey != "":
			name = "Brand logo print"
		default:
			name = "Bulk item"
		}
		if item.SelectedSize != "" {
			name = fmt.Sprintf("%s (%s)", name, item.SelectedSize)
		}
		lines = append(lines, invoiceLine{
			Description: name,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
		})
	}

	return s.render(invoiceParams{
		Number:        fmt.Sprintf("BINV-%d", order.ID),
		Key:           fmt.Sprintf("invoices/bulk_order_%d.pdf", order.ID),
		CustomerName:  order.User.FullName(),
		CustomerEmail: order.User.Email,
		Address:       deliverySummary(order.OrderType, order.Address, order.City, order.PostalCode, order.Country),
		Lines:         lines,
		DeliveryFee:   order.DeliveryFee,
		VATAmount:     order.VATAmount,
		TotalPrice:    order.TotalPrice,
	})
}

type invoiceParams struct {
	Number         string
	Key            string
	CustomerName   string
	CustomerEmail  string
	Address        string
	Lines          []invoiceLine
	DeliveryFee    float64
	VATAmount      float64
	RewardApplied  float64
	DiscountAmount float64
	TotalPrice     float64
}

func (s *InvoiceService) render(p invoiceParams) (string, *Attachment, error) {
	cur := s.config.Store.CurrencySymbol

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(p.Number, false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(100, 10, s.config.Store.Name)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "INVOICE "+p.Number, "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, s.config.Store.Address)
	pdf.Ln(6)
	pdf.Cell(0, 6, s.config.Store.Country)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date: "+time.Now().Format("2 January 2006"))
	pdf.Ln(10)

	// Bill-to block
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Billed To")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, p.CustomerName)
	pdf.Ln(6)
	pdf.Cell(0, 6, p.CustomerEmail)
	pdf.Ln(6)
	pdf.Cell(0, 6, p.Address)
	pdf.Ln(10)

	// Line items table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	var subtotal float64
	for _, line := range p.Lines {
		lineTotal := pricing.Round2(line.UnitPrice * float64(line.Quantity))
		subtotal += lineTotal
		pdf.CellFormat(90, 8, line.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", line.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%s%.2f", cur, line.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%s%.2f", cur, lineTotal), "1", 1, "R", false, 0, "")
	}

	// Totals
	writeTotal := func(label string, value float64, bold bool) {
		if bold {
			pdf.SetFont("Helvetica", "B", 10)
		} else {
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.CellFormat(115, 8, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%s%.2f", cur, value), "", 1, "R", false, 0, "")
	}

	writeTotal("Subtotal", subtotal, false)
	if p.DeliveryFee > 0 {
		writeTotal("Delivery", p.DeliveryFee, false)
	}
	if p.VATAmount > 0 {
		writeTotal(fmt.Sprintf("VAT (%.0f%%)", s.config.Store.VATPercentage), p.VATAmount, false)
	}
	if p.RewardApplied > 0 {
		writeTotal("Reward Applied", -p.RewardApplied, false)
	}
	if p.DiscountAmount > 0 {
		writeTotal("Coupon Discount", -p.DiscountAmount, false)
	}
	writeTotal("Total Due", p.TotalPrice, true)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Amount in words: "+amountInWords(p.TotalPrice, "Rand"))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, "Thank you for your business.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return "", nil, fmt.Errorf("failed to render invoice pdf: %w", err)
	}

	if _, err := s.storage.UploadBytes(buf.Bytes(), p.Key, "application/pdf", false); err != nil {
		return "", nil, fmt.Errorf("failed to store invoice: %w", err)
	}

	return p.Key, &Attachment{
		Filename: p.Number + ".pdf",
		Content:  buf.Bytes(),
		MimeType: "application/pdf",
	}, nil
}

// deliverySummary is the one-line address used on invoices and emails.
func deliverySummary(orderType models.OrderType, address, city, postalCode, country string) string {
	if orderType == models.OrderTypeCollection {
		return "Collection in store"
	}
	return fmt.Sprintf("%s, %s, %s, %s", address, city, postalCode, country)
}

// issueOrderInvoice renders and stores the invoice for an order, records
// its key on the row and emails it to the customer. Checkout and payment
// settlement both land here; every failure is logged or raised to the
// operator channel and never unwinds the order itself.
func issueOrderInvoice(db *gorm.DB, invoices *InvoiceService, notifier *NotificationService, order *models.Order, subject string) {
	key, attachment, err := invoices.GenerateOrderInvoice(order)
	if err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Error("Invoice generation failed")
		notifier.RaiseOperatorAlert("invoice_failed", "Invoice Generation Failed",
			fmt.Sprintf("Invoice for order #%d could not be generated: %v", order.ID, err),
			"order", order.ID)
	} else {
		if err := db.Model(order).Update("invoice_key", key).Error; err != nil {
			logrus.WithError(err).WithField("order_id", order.ID).Error("Failed to record invoice key")
		}
		order.InvoiceKey = key
	}

	addr := deliverySummary(order.OrderType, order.Address, order.City, order.PostalCode, order.Country)
	if err := notifier.SendInvoiceEmail(&order.User, subject, order.ID,
		order.TotalPrice, order.OrderType, addr, attachment); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Error("Failed to send invoice email")
	}
}

func issueBulkOrderInvoice(db *gorm.DB, invoices *InvoiceService, notifier *NotificationService, order *models.BulkOrder, subject string) {
	key, attachment, err := invoices.GenerateBulkOrderInvoice(order)
	if err != nil {
		logrus.WithError(err).WithField("bulk_order_id", order.ID).Error("Invoice generation failed")
		notifier.RaiseOperatorAlert("invoice_failed", "Invoice Generation Failed",
			fmt.Sprintf("Invoice for bulk order #%d could not be generated: %v", order.ID, err),
			"bulk_order", order.ID)
	} else {
		if err := db.Model(order).Update("invoice_key", key).Error; err != nil {
			logrus.WithError(err).WithField("bulk_order_id", order.ID).Error("Failed to record invoice key")
		}
		order.InvoiceKey = key
	}

	addr := deliverySummary(order.OrderType, order.Address, order.City, order.PostalCode, order.Country)
	if err := notifier.SendInvoiceEmail(&order.User, subject, order.ID,
		order.TotalPrice, order.OrderType, addr, attachment); err != nil {
		logrus.WithError(err).WithField("bulk_order_id", order.ID).Error("Failed to send invoice email")
	}
}
