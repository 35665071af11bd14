package db

import (
	"time"

	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusPaid      = "paid"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Booking 记录一次租车预订。Reference 是对外暴露的预订号，支付回调通过它定位预订。
// TotalAmount = Days * Vehicle.DailyRate，单位为分。
type Booking struct {
	gorm.Model
	Reference     string `gorm:"size:64;uniqueIndex;not null"`
	VehicleID     uint   `gorm:"index;not null"`
	Vehicle       Vehicle
	CustomerName  string `gorm:"not null"`
	CustomerEmail string `gorm:"not null"`
	CustomerPhone string
	StartDate     time.Time `gorm:"index"`
	EndDate       time.Time `gorm:"index"`
	Days          int
	TotalAmount   int64
	Status        string `gorm:"size:20;index;default:pending"`
	PaymentRef    string `gorm:"size:128"`
	PaidAt        *time.Time
}
