// internal/services/checkout_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghanadude/backend/internal/config"
)

func newCheckoutTestService(t *testing.T) (*CheckoutService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)
	cfg := &config.Config{
		Store: config.StoreConfig{
			Name:           "GhanaDude",
			CurrencySymbol: "R",
			VATPercentage:  0,
		},
	}

	// No AWS credentials puts the object store in local mode, so invoice
	// generation runs end to end without network access. SMTP is
	// unconfigured, so emails log and return nil.
	storage, err := NewStorageService(cfg)
	require.NoError(t, err)

	catalog := NewCatalogService(db, cfg, storage)
	invoices := NewInvoiceService(cfg, storage)
	notifier := NewNotificationService(db, cfg)

	return NewCheckoutService(db, cfg, catalog, invoices, notifier), mock
}

func checkoutAddress(req *CheckoutRequest) *CheckoutRequest {
	req.Address = "12 Main Rd"
	req.City = "Cape Town"
	req.PostalCode = "8001"
	req.Country = "South Africa"
	return req
}

func TestCheckoutInsufficientStockAbortsTransaction(t *testing.T) {
	svc, mock := newCheckoutTestService(t)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "email"}).
			AddRow(1, "Thabo", "thabo@example.com"))
	mock.ExpectQuery(`SELECT \* FROM "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "reward_balance"}).
			AddRow(1, 1, 0.0))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "products" .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
			AddRow(1, "Hoodie", 100.00, 5))
	mock.ExpectRollback()

	_, err := svc.Checkout(1, checkoutAddress(&CheckoutRequest{
		Items: []CheckoutItem{{ProductID: 1, Quantity: 10}},
	}))

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, uint(1), stockErr.ProductID)
	assert.Equal(t, 10, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)

	// The rollback fired and no order or item insert was ever attempted,
	// so the reservation cannot have stuck.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutCreatesOrderAndIssuesInvoice(t *testing.T) {
	svc, mock := newCheckoutTestService(t)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "email"}).
			AddRow(1, "Thabo", "thabo@example.com"))
	mock.ExpectQuery(`SELECT \* FROM "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "reward_balance"}).
			AddRow(1, 1, 0.0))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "products" .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
			AddRow(1, "Hoodie", 100.00, 5))
	mock.ExpectExec(`UPDATE "products" SET "stock"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	// The invoice is rendered and stored right after commit; recording
	// its key on the order is the observable half of that step.
	mock.ExpectExec(`UPDATE "orders" SET "invoice_key"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.Checkout(1, checkoutAddress(&CheckoutRequest{
		Items: []CheckoutItem{{ProductID: 1, Quantity: 3}},
	}))
	require.NoError(t, err)
	require.NotNil(t, result.OrderID)
	assert.Equal(t, uint(42), *result.OrderID)
	assert.InDelta(t, 300.00, result.TotalPrice, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRewardDeductionClampsToBalance(t *testing.T) {
	svc, mock := newCheckoutTestService(t)

	mock.ExpectExec(`UPDATE "profiles" SET "reward_balance"=GREATEST`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Requesting more than the balance spends the whole balance; the
	// GREATEST clamp in the statement keeps it from going below zero.
	applied, err := svc.deductReward(1, &CheckoutRequest{RewardAmount: 100}, 30)
	require.NoError(t, err)
	assert.InDelta(t, 30.00, applied, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRewardNotRequestedSkipsDeduction(t *testing.T) {
	svc, mock := newCheckoutTestService(t)

	applied, err := svc.deductReward(1, &CheckoutRequest{}, 75)
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
