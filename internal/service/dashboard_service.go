package service

import (
	"fmt"

	"github.com/wheelhub/internal/db"
	"gorm.io/gorm"
)

// DashboardSummary 汇总后台首页展示的统计数据。
type DashboardSummary struct {
	VehicleTypes      int64
	Vehicles          int64
	AvailableVehicles int64
	Bookings          int64
	BookingsByStatus  map[string]int64
	Users             int64
	TrackerPurchases  int64
	TrackerSpend      int64
	PaidRevenue       int64
}

// DashboardService 计算后台概览数据。
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a DashboardService instance.
func NewDashboardService(gdb *gorm.DB) *DashboardService {
	return &DashboardService{db: gdb}
}

// Summary collects entity counts and revenue. Revenue counts paid and completed bookings.
func (s *DashboardService) Summary() (DashboardSummary, error) {
	summary := DashboardSummary{
		BookingsByStatus: map[string]int64{
			db.BookingStatusPending:   0,
			db.BookingStatusPaid:      0,
			db.BookingStatusCancelled: 0,
			db.BookingStatusCompleted: 0,
		},
	}

	counts := []struct {
		model interface{}
		dest  *int64
		label string
	}{
		{&db.VehicleType{}, &summary.VehicleTypes, "vehicle types"},
		{&db.Vehicle{}, &summary.Vehicles, "vehicles"},
		{&db.Booking{}, &summary.Bookings, "bookings"},
		{&db.User{}, &summary.Users, "users"},
		{&db.TrackerPurchase{}, &summary.TrackerPurchases, "tracker purchases"},
	}
	for _, c := range counts {
		if err := s.db.Model(c.model).Count(c.dest).Error; err != nil {
			return summary, fmt.Errorf("count %s: %w", c.label, err)
		}
	}

	if err := s.db.Model(&db.Vehicle{}).Where("available = ?", true).Count(&summary.AvailableVehicles).Error; err != nil {
		return summary, fmt.Errorf("count available vehicles: %w", err)
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&db.Booking{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return summary, fmt.Errorf("count bookings by status: %w", err)
	}
	for _, row := range rows {
		summary.BookingsByStatus[row.Status] = row.Count
	}

	if err := s.db.Model(&db.Booking{}).
		Where("status IN ?", []string{db.BookingStatusPaid, db.BookingStatusCompleted}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&summary.PaidRevenue).Error; err != nil {
		return summary, fmt.Errorf("sum revenue: %w", err)
	}

	if err := s.db.Model(&db.TrackerPurchase{}).
		Where("status <> ?", db.TrackerStatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&summary.TrackerSpend).Error; err != nil {
		return summary, fmt.Errorf("sum tracker spend: %w", err)
	}

	return summary, nil
}
