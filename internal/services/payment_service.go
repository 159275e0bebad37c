// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"gorm.io/gorm"

	"github.com/ghanadude/backend/internal/config"
	"github.com/ghanadude/backend/internal/gateway"
	"github.com/ghanadude/backend/internal/models"
)

// PaymentService settles payments against order aggregates. Two paths
// feed it: the hosted gateway's server-to-server webhook and the Stripe
// card flow. Both converge on the same idempotent settlement step.
type PaymentService struct {
	db       *gorm.DB
	config   *config.Config
	gateway  *gateway.Client
	invoices *InvoiceService
	notifier *NotificationService
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, invoices *InvoiceService, notifier *NotificationService) *PaymentService {
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:       db,
		config:   cfg,
		gateway:  gateway.NewClient(cfg.Payment),
		invoices: invoices,
		notifier: notifier,
	}
}

// HandleNotify processes one gateway webhook post. paramOrder preserves
// the order the gateway posted its fields in, which the signature is
// computed over.
//
// A malformed reference is a permanent reject (the gateway must not
// retry); an unknown aggregate maps to not-found; database failures are
// internal so the gateway retries later.
func (s *PaymentService) HandleNotify(form url.Values, paramOrder []string) error {
	reference := form.Get("m_payment_id")
	kind, id, err := gateway.ParseReference(reference)
	if err != nil {
		return err
	}

	if s.config.Payment.Passphrase != "" && !s.gateway.VerifySignature(form, paramOrder) {
		logrus.WithField("reference", reference).Warn("Webhook signature mismatch")
		return &gateway.ErrInvalidReference{Reference: reference}
	}

	status := form.Get("payment_status")
	logrus.WithFields(logrus.Fields{
		"reference": reference,
		"status":    status,
	}).Info("Payment notification received")

	switch status {
	case gateway.StatusComplete:
		return s.settleComplete(kind, id)
	case gateway.StatusCancelled:
		return s.settleCancelled(kind, id)
	default:
		// Unrecognized interim statuses leave the aggregate Pending.
		return nil
	}
}

// settleComplete moves the aggregate to Processing exactly once. The
// invoice, customer email and admin summary fire only on the actual
// transition, so gateway retries stay side-effect free.
func (s *PaymentService) settleComplete(kind gateway.AggregateKind, id uint) error {
	switch kind {
	case gateway.KindBulkOrder:
		return s.settleBulkOrderComplete(id)
	default:
		return s.settleOrderComplete(id)
	}
}

func (s *PaymentService) settleOrderComplete(id uint) error {
	var order models.Order
	err := s.db.Preload("User").Preload("Items.Product").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if !order.Status.CanTransitionTo(models.OrderStatusProcessing) {
		logrus.WithFields(logrus.Fields{"order_id": id, "status": order.Status}).
			Info("Order already settled, skipping")
		return nil
	}

	res := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, order.Status).
		Update("status", models.OrderStatusProcessing)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race against a concurrent delivery of the same webhook.
		return nil
	}
	order.Status = models.OrderStatusProcessing

	s.fulfillOrderSideEffects(&order)
	return nil
}

func (s *PaymentService) settleBulkOrderComplete(id uint) error {
	var order models.BulkOrder
	err := s.db.Preload("User").Preload("Items.Product").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if !order.Status.CanTransitionTo(models.OrderStatusProcessing) {
		logrus.WithFields(logrus.Fields{"bulk_order_id": id, "status": order.Status}).
			Info("Bulk order already settled, skipping")
		return nil
	}

	res := s.db.Model(&models.BulkOrder{}).
		Where("id = ? AND status = ?", id, order.Status).
		Update("status", models.OrderStatusProcessing)
	if res.Error != nil {
		return fmt.Errorf("failed to update bulk order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil
	}
	order.Status = models.OrderStatusProcessing

	s.fulfillBulkOrderSideEffects(&order)
	return nil
}

// Payment confirmation regenerates the invoice so the stored document
// always reflects the settled state, then notifies the administrators.
func (s *PaymentService) fulfillOrderSideEffects(order *models.Order) {
	issueOrderInvoice(s.db, s.invoices, s.notifier, order, "Your Order Confirmation")

	if err := s.notifier.SendAdminPaymentNotification("Order", order.ID, &order.User,
		order.TotalPrice, order.OrderType, order.Status); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Error("Failed to notify admins of payment")
	}
}

func (s *PaymentService) fulfillBulkOrderSideEffects(order *models.BulkOrder) {
	issueBulkOrderInvoice(s.db, s.invoices, s.notifier, order, "Your Bulk Order Confirmation")

	if err := s.notifier.SendAdminPaymentNotification("Bulk Order", order.ID, &order.User,
		order.TotalPrice, order.OrderType, order.Status); err != nil {
		logrus.WithError(err).WithField("bulk_order_id", order.ID).Error("Failed to notify admins of payment")
	}
}

func (s *PaymentService) settleCancelled(kind gateway.AggregateKind, id uint) error {
	var (
		model  interface{}
		status models.OrderStatus
	)

	switch kind {
	case gateway.KindBulkOrder:
		var order models.BulkOrder
		if err := s.db.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		model, status = &models.BulkOrder{BaseModel: models.BaseModel{ID: id}}, order.Status
	default:
		var order models.Order
		if err := s.db.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		model, status = &models.Order{BaseModel: models.BaseModel{ID: id}}, order.Status
	}

	if !status.CanTransitionTo(models.OrderStatusCancelled) {
		return nil
	}

	if err := s.db.Model(model).Update("status", models.OrderStatusCancelled).Error; err != nil {
		return fmt.Errorf("failed to cancel on payment failure: %w", err)
	}
	return nil
}

// GatewayClientConfig is the public gateway configuration the mobile and
// web clients need to drive the hosted checkout redirect.
type GatewayClientConfig struct {
	URL         string `json:"url"`
	MerchantID  string `json:"merchant_id"`
	MerchantKey string `json:"merchant_key"`
	ReturnURL   string `json:"return_url"`
	CancelURL   string `json:"cancel_url"`
	NotifyURL   string `json:"notify_url"`
	Sandbox     bool   `json:"sandbox"`
}

func (s *PaymentService) GatewayConfig() GatewayClientConfig {
	return GatewayClientConfig{
		URL:         s.config.Payment.GatewayURL,
		MerchantID:  s.config.Payment.MerchantID,
		MerchantKey: s.config.Payment.MerchantKey,
		ReturnURL:   s.config.Payment.ReturnURL,
		CancelURL:   s.config.Payment.CancelURL,
		NotifyURL:   s.config.Payment.NotifyURL,
		Sandbox:     s.config.Payment.Sandbox(),
	}
}

// Stripe card path

type PaymentIntentRequest struct {
	OrderID     uint `json:"order_id"`
	BulkOrderID uint `json:"bulk_order_id"`
}

type PaymentIntentResult struct {
	ClientSecret   string `json:"client_secret"`
	PublishableKey string `json:"publishable_key"`
	Reference      string `json:"reference"`
}

// CreatePaymentIntent opens a Stripe payment intent for one of the
// caller's pending aggregates. The gateway reference travels in the
// intent metadata so confirmation lands on the same settlement step as
// the webhook path.
func (s *PaymentService) CreatePaymentIntent(userID uint, req *PaymentIntentRequest) (*PaymentIntentResult, error) {
	var (
		reference string
		amount    float64
	)

	switch {
	case req.OrderID != 0:
		var order models.Order
		err := s.db.Where("id = ? AND user_id = ?", req.OrderID, userID).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		if order.Status != models.OrderStatusPending {
			return nil, ErrInvalidTransition
		}
		reference = gateway.BuildReference(gateway.KindOrder, order.ID)
		amount = order.TotalPrice

	case req.BulkOrderID != 0:
		var order models.BulkOrder
		err := s.db.Where("id = ? AND user_id = ?", req.BulkOrderID, userID).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		if order.Status != models.OrderStatusPending {
			return nil, ErrInvalidTransition
		}
		reference = gateway.BuildReference(gateway.KindBulkOrder, order.ID)
		amount = order.TotalPrice

	default:
		return nil, ErrOrderNotFound
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(string(stripe.CurrencyZAR)),
	}
	params.AddMetadata("m_payment_id", reference)

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResult{
		ClientSecret:   intent.ClientSecret,
		PublishableKey: s.config.Payment.StripePublishable,
		Reference:      reference,
	}, nil
}

// ConfirmPaymentIntent verifies a succeeded intent with Stripe and
// settles the referenced aggregate.
func (s *PaymentService) ConfirmPaymentIntent(intentID string) error {
	intent, err := paymentintent.Get(intentID, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch payment intent: %w", err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("payment intent %s not succeeded (status %s)", intentID, intent.Status)
	}

	kind, id, err := gateway.ParseReference(intent.Metadata["m_payment_id"])
	if err != nil {
		return err
	}

	return s.settleComplete(kind, id)
}

// RefundPaymentIntent issues a full refund for a succeeded intent. Used
// by support when an order is cancelled after payment.
func (s *PaymentService) RefundPaymentIntent(intentID string) error {
	_, err := refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	})
	if err != nil {
		return fmt.Errorf("failed to refund payment intent: %w", err)
	}
	return nil
}
