package db

import (
	"time"

	"gorm.io/gorm"
)

const (
	TrackerStatusOrdered   = "ordered"
	TrackerStatusReceived  = "received"
	TrackerStatusInstalled = "installed"
	TrackerStatusCancelled = "cancelled"
)

// TrackerPurchase 记录 GPS 定位设备的采购，VehicleID 在安装后关联车辆。
type TrackerPurchase struct {
	gorm.Model
	DeviceModel string `gorm:"not null"`
	Supplier    string
	Quantity    int
	UnitPrice   int64
	TotalAmount int64
	Status      string `gorm:"size:20;index;default:ordered"`
	VehicleID   *uint  `gorm:"index"`
	Vehicle     *Vehicle
	PurchasedAt time.Time
	Note        string `gorm:"type:text"`
}
