// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ghanadude/backend/internal/config"
	"github.com/ghanadude/backend/internal/models"
	"github.com/ghanadude/backend/internal/utils"
)

// OrderService drives the post-checkout lifecycle of both aggregates:
// listing, cancellation, dispatch with a delivery pin, completion with
// the one-time reward grant, and invoice download.
type OrderService struct {
	db       *gorm.DB
	config   *config.Config
	rewards  *RewardService
	notifier *NotificationService
	storage  *StorageService
}

func NewOrderService(db *gorm.DB, cfg *config.Config, rewards *RewardService, notifier *NotificationService, storage *StorageService) *OrderService {
	return &OrderService{
		db:       db,
		config:   cfg,
		rewards:  rewards,
		notifier: notifier,
		storage:  storage,
	}
}

func (s *OrderService) GetUserOrders(userID uint, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	err := query.Preload("Items.Product").Preload("Coupon").
		Order("created_at DESC").
		Scopes(func(db *gorm.DB) *gorm.DB { return utils.ApplyPagination(db, params) }).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

func (s *OrderService) GetUserBulkOrders(userID uint, params utils.PaginationParams) ([]models.BulkOrder, int64, error) {
	query := s.db.Model(&models.BulkOrder{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bulk orders: %w", err)
	}

	var orders []models.BulkOrder
	err := query.Preload("Items.Product").Preload("Items.Designer").
		Order("created_at DESC").
		Scopes(func(db *gorm.DB) *gorm.DB { return utils.ApplyPagination(db, params) }).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bulk orders: %w", err)
	}

	return orders, total, nil
}

// GetOrder fetches one order scoped to its owner. Admin callers pass
// userID zero to skip the ownership check.
func (s *OrderService) GetOrder(userID, orderID uint) (*models.Order, error) {
	query := s.db.Preload("User").Preload("Items.Product").Preload("Coupon")
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}

	var order models.Order
	if err := query.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

func (s *OrderService) GetBulkOrder(userID, orderID uint) (*models.BulkOrder, error) {
	query := s.db.Preload("User").Preload("Items.Product").Preload("Items.Designer")
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}

	var order models.BulkOrder
	if err := query.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

// CancelOrder moves an owned order to Cancelled. Stock reserved at
// checkout is not restored automatically; restocking is a manual
// back-office decision.
func (s *OrderService) CancelOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(models.OrderStatusCancelled) {
		return nil, ErrInvalidTransition
	}

	res := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Update("status", models.OrderStatusCancelled)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	order.Status = models.OrderStatusCancelled
	return order, nil
}

func (s *OrderService) CancelBulkOrder(userID, orderID uint) (*models.BulkOrder, error) {
	order, err := s.GetBulkOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(models.OrderStatusCancelled) {
		return nil, ErrInvalidTransition
	}

	res := s.db.Model(&models.BulkOrder{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Update("status", models.OrderStatusCancelled)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to cancel bulk order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	order.Status = models.OrderStatusCancelled
	return order, nil
}

// UpdateOrderStatus is the admin-side transition. Completion triggers the
// one-time reward grant.
func (s *OrderService) UpdateOrderStatus(orderID uint, target models.OrderStatus) (*models.Order, error) {
	order, err := s.GetOrder(0, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	res := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Update("status", target)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}
	order.Status = target

	if target == models.OrderStatusCompleted {
		s.grantOrderReward(order)
	}

	if err := s.notifier.SendOrderStatusEmail(&order.User, order.ID, order.TotalPrice, order.Status); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Error("Failed to send status email")
	}

	return order, nil
}

func (s *OrderService) UpdateBulkOrderStatus(orderID uint, target models.OrderStatus) (*models.BulkOrder, error) {
	order, err := s.GetBulkOrder(0, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	res := s.db.Model(&models.BulkOrder{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Update("status", target)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update bulk order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}
	order.Status = target

	if target == models.OrderStatusCompleted {
		s.grantBulkOrderReward(order)
	}

	if err := s.notifier.SendOrderStatusEmail(&order.User, order.ID, order.TotalPrice, order.Status); err != nil {
		logrus.WithError(err).WithField("bulk_order_id", order.ID).Error("Failed to send status email")
	}

	return order, nil
}

// grantOrderReward flips reward_granted exactly once and accrues the
// cashback. Re-running the completion path is a no-op.
func (s *OrderService) grantOrderReward(order *models.Order) {
	res := s.db.Model(&models.Order{}).
		Where("id = ? AND reward_granted = false", order.ID).
		Update("reward_granted", true)
	if res.Error != nil {
		logrus.WithError(res.Error).WithField("order_id", order.ID).Error("Failed to mark reward granted")
		return
	}
	if res.RowsAffected == 0 {
		return
	}
	order.RewardGranted = true

	if err := s.rewards.Accrue(order.UserID, order.TotalPrice); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"order_id": order.ID,
			"user_id":  order.UserID,
		}).Error("Failed to accrue reward for completed order")
		return
	}

	if _, err := s.rewards.IssueIfEligible(order.UserID); err != nil {
		logrus.WithError(err).WithField("user_id", order.UserID).
			Error("Failed to issue reward coupon")
	}
}

func (s *OrderService) grantBulkOrderReward(order *models.BulkOrder) {
	res := s.db.Model(&models.BulkOrder{}).
		Where("id = ? AND reward_granted = false", order.ID).
		Update("reward_granted", true)
	if res.Error != nil {
		logrus.WithError(res.Error).WithField("bulk_order_id", order.ID).Error("Failed to mark reward granted")
		return
	}
	if res.RowsAffected == 0 {
		return
	}
	order.RewardGranted = true

	if err := s.rewards.Accrue(order.UserID, order.TotalPrice); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"bulk_order_id": order.ID,
			"user_id":       order.UserID,
		}).Error("Failed to accrue reward for completed bulk order")
		return
	}

	if _, err := s.rewards.IssueIfEligible(order.UserID); err != nil {
		logrus.WithError(err).WithField("user_id", order.UserID).
			Error("Failed to issue reward coupon")
	}
}

// DispatchOrder marks a paid order as handed to the courier and emails
// the customer the six-digit delivery pin. Dispatching twice fails.
func (s *OrderService) DispatchOrder(orderID uint) (*models.Order, error) {
	order, err := s.GetOrder(0, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusProcessing {
		return nil, ErrInvalidTransition
	}

	pin, err := utils.GenerateDispatchPin()
	if err != nil {
		return nil, fmt.Errorf("failed to generate dispatch pin: %w", err)
	}
	res := s.db.Model(&models.Order{}).
		Where("id = ? AND is_dispatched = false", order.ID).
		Updates(map[string]interface{}{"is_dispatched": true, "pin_code": pin})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to dispatch order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyDispatched
	}
	order.IsDispatched = true
	order.PinCode = pin

	addr := deliverySummary(order.OrderType, order.Address, order.City, order.PostalCode, order.Country)
	if err := s.notifier.SendDispatchEmail(&order.User, addr, pin); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Error("Failed to send dispatch email")
	}

	return order, nil
}

func (s *OrderService) DispatchBulkOrder(orderID uint) (*models.BulkOrder, error) {
	order, err := s.GetBulkOrder(0, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusProcessing {
		return nil, ErrInvalidTransition
	}

	pin, err := utils.GenerateDispatchPin()
	if err != nil {
		return nil, fmt.Errorf("failed to generate dispatch pin: %w", err)
	}
	res := s.db.Model(&models.BulkOrder{}).
		Where("id = ? AND is_dispatched = false", order.ID).
		Updates(map[string]interface{}{"is_dispatched": true, "pin_code": pin})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to dispatch bulk order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyDispatched
	}
	order.IsDispatched = true
	order.PinCode = pin

	addr := deliverySummary(order.OrderType, order.Address, order.City, order.PostalCode, order.Country)
	if err := s.notifier.SendDispatchEmail(&order.User, addr, pin); err != nil {
		logrus.WithError(err).WithField("bulk_order_id", order.ID).Error("Failed to send dispatch email")
	}

	return order, nil
}

// DownloadInvoice streams the stored invoice PDF for an owned order.
func (s *OrderService) DownloadInvoice(userID, orderID uint) ([]byte, string, error) {
	order, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, "", err
	}

	if order.InvoiceKey == "" {
		return nil, "", ErrInvoiceNotReady
	}

	return s.storage.Download(order.InvoiceKey)
}

func (s *OrderService) DownloadBulkInvoice(userID, orderID uint) ([]byte, string, error) {
	order, err := s.GetBulkOrder(userID, orderID)
	if err != nil {
		return nil, "", err
	}

	if order.InvoiceKey == "" {
		return nil, "", ErrInvoiceNotReady
	}

	return s.storage.Download(order.InvoiceKey)
}
