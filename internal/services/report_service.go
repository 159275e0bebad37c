// internal/services/report_service.go
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ghanadude/backend/internal/models"
)

// ReportService produces the admin sales and commission figures. All
// money figures come from the price snapshots taken at checkout, never
// from live product prices.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

type SalesBucket struct {
	Period     time.Time `json:"period"`
	OrderCount int64     `json:"order_count"`
	Revenue    float64   `json:"revenue"`
}

type SalesSummary struct {
	Granularity string        `json:"granularity"`
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	Buckets     []SalesBucket `json:"buckets"`
	Total       float64       `json:"total"`
}

var granularityTrunc = map[string]string{
	"daily":   "day",
	"monthly": "month",
	"yearly":  "year",
}

// SalesReport aggregates paid order revenue into date buckets. Only
// orders past the Pending state count; cancelled orders are excluded.
func (s *ReportService) SalesReport(granularity string, from, to time.Time) (*SalesSummary, error) {
	trunc, ok := granularityTrunc[granularity]
	if !ok {
		return nil, fmt.Errorf("unsupported granularity %q", granularity)
	}

	paid := []models.OrderStatus{models.OrderStatusProcessing, models.OrderStatusCompleted}

	var buckets []SalesBucket
	err := s.db.Model(&models.Order{}).
		Select("date_trunc(?, created_at) AS period, COUNT(*) AS order_count, SUM(total_price) AS revenue", trunc).
		Where("status IN ? AND created_at >= ? AND created_at < ?", paid, from, to).
		Group("period").
		Order("period").
		Scan(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	var bulkBuckets []SalesBucket
	err = s.db.Model(&models.BulkOrder{}).
		Select("date_trunc(?, created_at) AS period, COUNT(*) AS order_count, SUM(total_price) AS revenue", trunc).
		Where("status IN ? AND created_at >= ? AND created_at < ?", paid, from, to).
		Group("period").
		Order("period").
		Scan(&bulkBuckets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bulk sales: %w", err)
	}

	merged := mergeBuckets(buckets, bulkBuckets)

	summary := &SalesSummary{
		Granularity: granularity,
		From:        from,
		To:          to,
		Buckets:     merged,
	}
	for _, b := range merged {
		summary.Total += b.Revenue
	}
	return summary, nil
}

func mergeBuckets(a, b []SalesBucket) []SalesBucket {
	byPeriod := make(map[time.Time]*SalesBucket)
	order := make([]time.Time, 0, len(a)+len(b))

	for _, list := range [][]SalesBucket{a, b} {
		for _, bucket := range list {
			if existing, ok := byPeriod[bucket.Period]; ok {
				existing.OrderCount += bucket.OrderCount
				existing.Revenue += bucket.Revenue
				continue
			}
			copied := bucket
			byPeriod[bucket.Period] = &copied
			order = append(order, bucket.Period)
		}
	}

	// Re-sort since bulk buckets may introduce earlier periods.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j].Before(order[j-1]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	merged := make([]SalesBucket, 0, len(order))
	for _, p := range order {
		merged = append(merged, *byPeriod[p])
	}
	return merged
}

type DevEarningsRow struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitsSold   int64   `json:"units_sold"`
	GrossSales  float64 `json:"gross_sales"`
	Earnings    float64 `json:"earnings"`
}

// DevEarningsReport computes per-product commission over paid orders in
// the window, using each line's snapshot price and the product's
// commission percentage.
func (s *ReportService) DevEarningsReport(from, to time.Time) ([]DevEarningsRow, error) {
	paid := []models.OrderStatus{models.OrderStatusProcessing, models.OrderStatusCompleted}

	var rows []DevEarningsRow
	err := s.db.Model(&models.OrderItem{}).
		Select(`order_items.product_id,
			products.name AS product_name,
			SUM(order_items.quantity) AS units_sold,
			SUM(order_items.price * order_items.quantity) AS gross_sales,
			SUM(order_items.price * order_items.quantity * products.percentage / 100) AS earnings`).
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ? AND orders.created_at >= ? AND orders.created_at < ?", paid, from, to).
		Group("order_items.product_id, products.name").
		Order("earnings DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate dev earnings: %w", err)
	}

	return rows, nil
}
