// internal/services/reward_service_test.go
package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ghanadude/backend/internal/config"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock
}

func rewardTestConfig() *config.Config {
	return &config.Config{
		Reward: config.RewardConfig{
			CashbackPercent:    1.0,
			CouponValue:        50,
			CouponValidityDays: 30,
			MinRedeemPoints:    5,
		},
	}
}

func TestRewardAccrue(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRewardService(db, rewardTestConfig())

	mock.ExpectExec(`UPDATE "profiles" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Accrue(7, 1250.00)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRewardAccrueUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRewardService(db, rewardTestConfig())

	mock.ExpectExec(`UPDATE "profiles" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Accrue(99, 500.00)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRewardAccrueZeroCashback(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRewardService(db, rewardTestConfig())

	// No statement expected: a zero cashback never touches the database.
	err := svc.Accrue(7, 0)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRewardEligibility(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRewardService(db, rewardTestConfig())

	rows := sqlmock.NewRows([]string{"id", "user_id", "reward_balance"}).
		AddRow(1, 7, 120.50)
	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id`).
		WillReturnRows(rows)

	eligibility, err := svc.Eligibility(7)
	require.NoError(t, err)
	assert.InDelta(t, 120.50, eligibility.Balance, 0.001)
	assert.Equal(t, 120, eligibility.Points)
	assert.True(t, eligibility.CanRedeem)
}

func TestRewardEligibilityBelowThreshold(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRewardService(db, rewardTestConfig())

	rows := sqlmock.NewRows([]string{"id", "user_id", "reward_balance"}).
		AddRow(1, 7, 30.00)
	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id`).
		WillReturnRows(rows)

	eligibility, err := svc.Eligibility(7)
	require.NoError(t, err)
	assert.False(t, eligibility.CanRedeem)
}

func TestCanRedeem(t *testing.T) {
	svc := NewRewardService(nil, rewardTestConfig())

	assert.False(t, svc.canRedeem(0))
	assert.False(t, svc.canRedeem(49.99))
	assert.True(t, svc.canRedeem(50))
	assert.True(t, svc.canRedeem(500))
}
