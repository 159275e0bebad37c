// internal/services/payment_service_test.go
package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/ghanadude/backend/internal/config"
)

func TestSettleCompleteSecondDeliveryIsNoOp(t *testing.T) {
	db, mock := newMockDB(t)
	// Invoice and notification services are deliberately nil: if the
	// settlement re-fired its side effects the test would panic.
	svc := NewPaymentService(db, &config.Config{}, nil, nil)

	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status"}).
			AddRow(9, 1, "Completed"))
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := svc.settleOrderComplete(9)
	assert.NoError(t, err)

	// No UPDATE was registered, so any status write would have failed
	// the expectation check.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleCompleteAlreadyProcessingKeepsStatus(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPaymentService(db, &config.Config{}, nil, nil)

	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status"}).
			AddRow(9, 1, "Processing"))
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := svc.settleOrderComplete(9)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
