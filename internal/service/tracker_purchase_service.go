package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wheelhub/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTrackerPurchaseNotFound = errors.New("tracker purchase not found")
	ErrTrackerPurchaseInvalid  = errors.New("device model, quantity and unit price are required")
	ErrTrackerStatusInvalid    = errors.New("invalid tracker purchase status")
)

// TrackerPurchaseService 管理 GPS 定位设备的采购记录。
type TrackerPurchaseService struct {
	db  *gorm.DB
	now func() time.Time
}

// TrackerPurchaseInput 描述采购记录的可编辑字段。
type TrackerPurchaseInput struct {
	DeviceModel string
	Supplier    string
	Quantity    int
	UnitPrice   int64
	Status      string
	VehicleID   *uint
	PurchasedAt time.Time
	Note        string
}

// NewTrackerPurchaseService creates a TrackerPurchaseService instance.
func NewTrackerPurchaseService(gdb *gorm.DB) *TrackerPurchaseService {
	return &TrackerPurchaseService{db: gdb, now: time.Now}
}

// List returns purchases, optionally filtered by status, most recent first.
func (s *TrackerPurchaseService) List(status string) ([]db.TrackerPurchase, error) {
	query := s.db.Model(&db.TrackerPurchase{}).Preload("Vehicle")
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		normalized := normalizeTrackerStatus(trimmed)
		if normalized == "" {
			return nil, ErrTrackerStatusInvalid
		}
		query = query.Where("status = ?", normalized)
	}

	var purchases []db.TrackerPurchase
	if err := query.Order("purchased_at desc").Order("id desc").Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("list tracker purchases: %w", err)
	}
	return purchases, nil
}

// Get fetches a purchase by id.
func (s *TrackerPurchaseService) Get(id uint) (*db.TrackerPurchase, error) {
	var purchase db.TrackerPurchase
	if err := s.db.Preload("Vehicle").First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackerPurchaseNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

// Create stores a purchase and computes its total.
func (s *TrackerPurchaseService) Create(input TrackerPurchaseInput) (*db.TrackerPurchase, error) {
	purchase := db.TrackerPurchase{}
	if err := s.apply(&purchase, input); err != nil {
		return nil, err
	}

	if err := s.db.Omit(clause.Associations).Create(&purchase).Error; err != nil {
		return nil, fmt.Errorf("create tracker purchase: %w", err)
	}
	return s.Get(purchase.ID)
}

// Update replaces the editable fields of a purchase.
func (s *TrackerPurchaseService) Update(id uint, input TrackerPurchaseInput) (*db.TrackerPurchase, error) {
	var purchase db.TrackerPurchase
	if err := s.db.First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackerPurchaseNotFound
		}
		return nil, err
	}

	if err := s.apply(&purchase, input); err != nil {
		return nil, err
	}

	if err := s.db.Omit(clause.Associations).Save(&purchase).Error; err != nil {
		return nil, fmt.Errorf("update tracker purchase: %w", err)
	}
	return s.Get(purchase.ID)
}

// Delete removes a purchase.
func (s *TrackerPurchaseService) Delete(id uint) error {
	result := s.db.Delete(&db.TrackerPurchase{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete tracker purchase: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTrackerPurchaseNotFound
	}
	return nil
}

func (s *TrackerPurchaseService) apply(purchase *db.TrackerPurchase, input TrackerPurchaseInput) error {
	model := strings.TrimSpace(input.DeviceModel)
	if model == "" || input.Quantity <= 0 || input.UnitPrice < 0 {
		return ErrTrackerPurchaseInvalid
	}

	status := db.TrackerStatusOrdered
	if strings.TrimSpace(input.Status) != "" {
		status = normalizeTrackerStatus(input.Status)
		if status == "" {
			return ErrTrackerStatusInvalid
		}
	}

	vehicleID := input.VehicleID
	if vehicleID != nil && *vehicleID == 0 {
		vehicleID = nil
	}
	if vehicleID != nil {
		var count int64
		if err := s.db.Model(&db.Vehicle{}).Where("id = ?", *vehicleID).Count(&count).Error; err != nil {
			return fmt.Errorf("check vehicle: %w", err)
		}
		if count == 0 {
			return ErrVehicleNotFound
		}
	}

	purchasedAt := input.PurchasedAt
	if purchasedAt.IsZero() {
		purchasedAt = s.now()
	}

	purchase.DeviceModel = model
	purchase.Supplier = strings.TrimSpace(input.Supplier)
	purchase.Quantity = input.Quantity
	purchase.UnitPrice = input.UnitPrice
	purchase.TotalAmount = int64(input.Quantity) * input.UnitPrice
	purchase.Status = status
	purchase.VehicleID = vehicleID
	purchase.Vehicle = nil
	purchase.PurchasedAt = purchasedAt.UTC()
	purchase.Note = strings.TrimSpace(input.Note)
	return nil
}

func normalizeTrackerStatus(status string) string {
	switch s := strings.ToLower(strings.TrimSpace(status)); s {
	case db.TrackerStatusOrdered, db.TrackerStatusReceived, db.TrackerStatusInstalled, db.TrackerStatusCancelled:
		return s
	default:
		return ""
	}
}
