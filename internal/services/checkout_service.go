// internal/services/checkout_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ghanadude/backend/internal/config"
	"github.com/ghanadude/backend/internal/database"
	"github.com/ghanadude/backend/internal/gateway"
	"github.com/ghanadude/backend/internal/models"
	"github.com/ghanadude/backend/internal/pricing"
)

// CheckoutService turns a submitted cart into persisted Order and
// BulkOrder aggregates. All stock reservations and row creations for one
// checkout happen in a single transaction; an insufficient-stock failure
// on any line rolls back every line.
type CheckoutService struct {
	db       *gorm.DB
	config   *config.Config
	catalog  *CatalogService
	invoices *InvoiceService
	notifier *NotificationService
	gateway  *gateway.Client
}

func NewCheckoutService(db *gorm.DB, cfg *config.Config, catalog *CatalogService, invoices *InvoiceService, notifier *NotificationService) *CheckoutService {
	return &CheckoutService{
		db:       db,
		config:   cfg,
		catalog:  catalog,
		invoices: invoices,
		notifier: notifier,
		gateway:  gateway.NewClient(cfg.Payment),
	}
}

type CheckoutItem struct {
	ProductID    uint   `json:"product_id" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,gt=0"`
	SelectedSize string `json:"selected_size"`
}

// BulkCheckoutItem is a line on the bulk side of the cart. ProductID may
// be zero for artwork-only lines; those are priced from store settings
// (brand price when a logo was uploaded, custom price for a design).
type BulkCheckoutItem struct {
	ProductID       uint   `json:"product_id"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	SelectedSize    string `json:"selected_size"`
	BrandLogoKey    string `json:"brand_logo_key"`
	CustomDesignKey string `json:"custom_design_key"`
	DesignerID      *uint  `json:"designer_id"`
}

type CheckoutRequest struct {
	Items         []CheckoutItem       `json:"items"`
	BulkItems     []BulkCheckoutItem   `json:"bulk_items"`
	Address       string               `json:"address"`
	City          string               `json:"city"`
	PostalCode    string               `json:"postal_code"`
	Country       string               `json:"country"`
	OrderType     models.OrderType     `json:"order_type"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	CouponCode    string               `json:"coupon_code"`
	RewardAmount  float64              `json:"reward_applied"`
}

type CheckoutResult struct {
	OrderID        *uint                 `json:"order_id,omitempty"`
	BulkOrderID    *uint                 `json:"bulk_order_id,omitempty"`
	TotalPrice     float64               `json:"total_price"`
	RewardApplied  float64               `json:"reward_applied"`
	DiscountAmount float64               `json:"discount_amount"`
	Reference      string                `json:"payment_reference,omitempty"`
	Gateway        *gateway.CheckoutForm `json:"gateway,omitempty"`
}

// Checkout validates the cart, applies reward balance and coupon,
// reserves stock and creates the order aggregates. Low-stock alerts
// collected during reservation are dispatched only after the transaction
// commits.
func (s *CheckoutService) Checkout(userID uint, req *CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 && len(req.BulkItems) == 0 {
		return nil, ErrEmptyCart
	}

	if req.OrderType == "" {
		req.OrderType = models.OrderTypeDelivery
	}

	if req.OrderType != models.OrderTypeCollection {
		if missing := missingAddressFields(req); len(missing) > 0 {
			return nil, &ValidationError{Fields: missing}
		}
	}

	var user models.User
	if err := s.db.Preload("Profile").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	coupon := s.resolveCoupon(userID, req.CouponCode)

	// The reward balance is deducted before the checkout transaction, in
	// one clamped UPDATE. If the checkout later fails the deduction is
	// not rolled back; the customer support path restores it manually.
	// Reward and coupon only apply against the regular order, so a
	// bulk-only cart never touches the balance.
	var rewardApplied float64
	if len(req.Items) > 0 {
		applied, err := s.deductReward(userID, req, user.Profile.RewardBalance)
		if err != nil {
			return nil, err
		}
		rewardApplied = applied
	}

	var (
		result    CheckoutResult
		alerts    []*LowStockAlert
		order     *models.Order
		bulkOrder *models.BulkOrder
	)

	txErr := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if len(req.Items) > 0 {
			o, lineAlerts, err := s.createOrder(tx, &user, req, coupon, rewardApplied)
			if err != nil {
				return err
			}
			order = o
			alerts = append(alerts, lineAlerts...)
		}

		if len(req.BulkItems) > 0 {
			bo, lineAlerts, err := s.createBulkOrder(tx, &user, req)
			if err != nil {
				return err
			}
			bulkOrder = bo
			alerts = append(alerts, lineAlerts...)
		}

		if coupon != nil && order != nil {
			if err := tx.Model(coupon).Update("is_redeemed", true).Error; err != nil {
				return fmt.Errorf("failed to redeem coupon: %w", err)
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	for _, alert := range alerts {
		if err := s.notifier.SendLowStockAlert(alert); err != nil {
			logrus.WithError(err).WithField("product_id", alert.ProductID).
				Error("Failed to send low stock alert")
		}
	}

	// Each created aggregate gets its invoice rendered and emailed right
	// away; a rendering failure never unwinds the committed order.
	if order != nil {
		order.User = user
		issueOrderInvoice(s.db, s.invoices, s.notifier, order, "Your Order Invoice")

		result.OrderID = &order.ID
		result.TotalPrice += order.TotalPrice
		result.RewardApplied = order.RewardApplied
		result.DiscountAmount = order.DiscountAmount
	}
	if bulkOrder != nil {
		bulkOrder.User = user
		issueBulkOrderInvoice(s.db, s.invoices, s.notifier, bulkOrder, "Your Bulk Order Invoice")

		result.BulkOrderID = &bulkOrder.ID
		result.TotalPrice += bulkOrder.TotalPrice
	}

	if req.PaymentMethod == models.PaymentMethodGateway {
		form, reference, err := s.buildGatewayForm(&user, order, bulkOrder)
		if err != nil {
			return nil, err
		}
		result.Gateway = form
		result.Reference = reference
	}

	return &result, nil
}

func missingAddressFields(req *CheckoutRequest) []string {
	var missing []string
	if req.Address == "" {
		missing = append(missing, "address")
	}
	if req.City == "" {
		missing = append(missing, "city")
	}
	if req.PostalCode == "" {
		missing = append(missing, "postal_code")
	}
	if req.Country == "" {
		missing = append(missing, "country")
	}
	return missing
}

// resolveCoupon looks up a usable coupon for the code. An unknown,
// redeemed, expired or foreign code is ignored silently; the checkout
// proceeds without a discount.
func (s *CheckoutService) resolveCoupon(userID uint, code string) *models.Coupon {
	if code == "" {
		return nil
	}

	var coupon models.Coupon
	err := s.db.Where("code = ? AND user_id = ?", code, userID).First(&coupon).Error
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "code": code}).
			Warn("Coupon code not found, ignoring")
		return nil
	}

	if !coupon.Usable(time.Now()) {
		logrus.WithFields(logrus.Fields{"user_id": userID, "code": code}).
			Warn("Coupon not usable, ignoring")
		return nil
	}

	return &coupon
}

// deductReward takes the requested reward amount off the user's balance
// in one clamped UPDATE. A request exceeding the balance spends the whole
// balance; the GREATEST clamp keeps a concurrent checkout from driving it
// negative.
func (s *CheckoutService) deductReward(userID uint, req *CheckoutRequest, balance float64) (float64, error) {
	if req.RewardAmount <= 0 || balance <= 0 {
		return 0, nil
	}

	applied := pricing.Round2(math.Min(req.RewardAmount, balance))
	err := s.db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("reward_balance", gorm.Expr("GREATEST(reward_balance - ?, 0)", applied)).Error
	if err != nil {
		return 0, fmt.Errorf("failed to deduct reward balance: %w", err)
	}

	return applied, nil
}

func (s *CheckoutService) createOrder(tx *gorm.DB, user *models.User, req *CheckoutRequest, coupon *models.Coupon, rewardApplied float64) (*models.Order, []*LowStockAlert, error) {
	var (
		lineTotals []float64
		items      []models.OrderItem
		alerts     []*LowStockAlert
	)

	for _, line := range req.Items {
		product, alert, err := s.catalog.ReserveStock(tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, nil, err
		}
		if alert != nil {
			alerts = append(alerts, alert)
		}

		unit, err := pricing.EffectiveUnitPrice(product)
		if err != nil {
			return nil, nil, err
		}
		lineTotal, err := pricing.LineTotal(product, line.Quantity)
		if err != nil {
			return nil, nil, err
		}
		lineTotals = append(lineTotals, lineTotal)

		items = append(items, models.OrderItem{
			ProductID:    product.ID,
			Quantity:     line.Quantity,
			Price:        unit,
			SelectedSize: line.SelectedSize,
			Product:      *product,
		})
	}

	var subtotal float64
	for _, lt := range lineTotals {
		subtotal += lt
	}

	deliveryFee := 0.0
	if req.OrderType == models.OrderTypeDelivery {
		deliveryFee = s.config.Store.DeliveryFee
	}
	vatAmount := pricing.Round2(subtotal * s.config.Store.VATPercentage / 100)

	var (
		couponID       *uint
		discountAmount float64
	)
	if coupon != nil {
		couponID = &coupon.ID
		discountAmount = coupon.Value
	}

	order := &models.Order{
		UserID:         user.ID,
		TotalPrice:     pricing.OrderTotal(lineTotals, deliveryFee, vatAmount, rewardApplied, discountAmount),
		Address:        req.Address,
		City:           req.City,
		PostalCode:     req.PostalCode,
		Country:        req.Country,
		CouponID:       couponID,
		DiscountAmount: discountAmount,
		PaymentMethod:  req.PaymentMethod,
		Status:         models.OrderStatusPending,
		OrderType:      req.OrderType,
		RewardApplied:  rewardApplied,
		DeliveryFee:    deliveryFee,
		VATAmount:      vatAmount,
	}

	if err := tx.Create(order).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create order items: %w", err)
	}
	order.Items = items

	return order, alerts, nil
}

func (s *CheckoutService) createBulkOrder(tx *gorm.DB, user *models.User, req *CheckoutRequest) (*models.BulkOrder, []*LowStockAlert, error) {
	var (
		lineTotals    []float64
		items         []models.BulkOrderItem
		alerts        []*LowStockAlert
		totalQuantity int
	)

	for _, line := range req.BulkItems {
		if line.DesignerID != nil {
			var count int64
			if err := tx.Model(&models.Designer{}).
				Where("id = ?", *line.DesignerID).Count(&count).Error; err != nil {
				return nil, nil, fmt.Errorf("database error: %w", err)
			}
			if count == 0 {
				return nil, nil, ErrDesignerNotFound
			}
		}

		item := models.BulkOrderItem{
			Quantity:        line.Quantity,
			SelectedSize:    line.SelectedSize,
			BrandLogoKey:    line.BrandLogoKey,
			CustomDesignKey: line.CustomDesignKey,
			DesignerID:      line.DesignerID,
		}

		switch {
		case line.ProductID != 0:
			product, alert, err := s.catalog.ReserveStock(tx, line.ProductID, line.Quantity)
			if err != nil {
				return nil, nil, err
			}
			if alert != nil {
				alerts = append(alerts, alert)
			}

			unit, err := pricing.EffectiveUnitPrice(product)
			if err != nil {
				return nil, nil, err
			}
			productID := product.ID
			item.ProductID = &productID
			item.Price = unit
			item.Product = product

		case line.CustomDesignKey != "":
			item.Price = s.config.Store.CustomPrice

		case line.BrandLogoKey != "":
			item.Price = s.config.Store.BrandPrice

		default:
			return nil, nil, &ValidationError{Fields: []string{"bulk_items"}}
		}

		lineTotals = append(lineTotals, pricing.Round2(item.Price*float64(line.Quantity)))
		totalQuantity += line.Quantity
		items = append(items, item)
	}

	var subtotal float64
	for _, lt := range lineTotals {
		subtotal += lt
	}

	deliveryFee := 0.0
	if req.OrderType == models.OrderTypeDelivery && len(req.Items) == 0 {
		// Charged once per checkout; the regular order carries it when
		// both aggregates are created together.
		deliveryFee = s.config.Store.DeliveryFee
	}
	vatAmount := pricing.Round2(subtotal * s.config.Store.VATPercentage / 100)

	bulkOrder := &models.BulkOrder{
		UserID:        user.ID,
		TotalPrice:    pricing.OrderTotal(lineTotals, deliveryFee, vatAmount, 0, 0),
		Quantity:      totalQuantity,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderStatusPending,
		OrderType:     req.OrderType,
		DeliveryFee:   deliveryFee,
		VATAmount:     vatAmount,
	}

	if err := tx.Create(bulkOrder).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create bulk order: %w", err)
	}

	for i := range items {
		items[i].BulkOrderID = bulkOrder.ID
	}
	if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create bulk order items: %w", err)
	}
	bulkOrder.Items = items

	return bulkOrder, alerts, nil
}

// buildGatewayForm prepares the hosted-redirect payload. A payment
// reference settles exactly one aggregate, so when a checkout produces
// both, the form covers the regular order and the bulk order is paid
// against its own BULKORDER reference afterwards.
func (s *CheckoutService) buildGatewayForm(user *models.User, order *models.Order, bulkOrder *models.BulkOrder) (*gateway.CheckoutForm, string, error) {
	var (
		reference string
		amount    float64
	)
	switch {
	case order != nil:
		reference = gateway.BuildReference(gateway.KindOrder, order.ID)
		amount = order.TotalPrice
	case bulkOrder != nil:
		reference = gateway.BuildReference(gateway.KindBulkOrder, bulkOrder.ID)
		amount = bulkOrder.TotalPrice
	default:
		return nil, "", ErrEmptyCart
	}

	itemName := fmt.Sprintf("%s purchase %s", s.config.Store.Name, reference)
	form := s.gateway.BuildCheckoutForm(reference, itemName, user.Email, amount)
	return &form, reference, nil
}
