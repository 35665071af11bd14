package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wheelhub/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrVehicleNotFound        = errors.New("vehicle not found")
	ErrVehicleRateInvalid     = errors.New("daily rate must be positive")
	ErrVehicleSeatsInvalid    = errors.New("seats must be positive")
	ErrVehicleTransmission    = errors.New("invalid transmission")
	ErrVehicleHasBookings     = errors.New("vehicle has active bookings")
	ErrVehicleTypeUnspecified = errors.New("vehicle type is required")
)

// VehicleService handles vehicle CRUD.
type VehicleService struct {
	db *gorm.DB
}

// VehicleFilter describes filters for listing vehicles.
type VehicleFilter struct {
	TypeSlug      string
	AvailableOnly bool
	Page          int
	PerPage       int
}

// VehicleListResult aggregates paginated vehicle results.
type VehicleListResult struct {
	Items []db.Vehicle
	Paging
}

// VehicleInput represents fields accepted when creating or updating a vehicle.
type VehicleInput struct {
	Title         string
	VehicleTypeID uint
	Brand         string
	Seats         int
	Transmission  string
	DailyRate     int64
	Description   string
	ImageURL      string
	Available     bool
}

// NewVehicleService creates a VehicleService instance.
func NewVehicleService(gdb *gorm.DB) *VehicleService {
	return &VehicleService{db: gdb}
}

// List returns vehicles matching the filter, newest first.
func (s *VehicleService) List(filter VehicleFilter) (VehicleListResult, error) {
	result := VehicleListResult{Paging: newPaging(filter.Page, filter.PerPage, 12)}

	query := s.db.Model(&db.Vehicle{})
	if typeSlug := strings.TrimSpace(filter.TypeSlug); typeSlug != "" {
		query = query.Joins("JOIN vehicle_types ON vehicle_types.id = vehicles.vehicle_type_id").
			Where("vehicle_types.slug = ? AND vehicle_types.deleted_at IS NULL", typeSlug)
	}
	if filter.AvailableOnly {
		query = query.Where("vehicles.available = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return result, fmt.Errorf("count vehicles: %w", err)
	}
	result.setTotal(total)

	if err := query.Preload("VehicleType").
		Order("vehicles.created_at desc").
		Order("vehicles.id desc").
		Scopes(result.scope).
		Find(&result.Items).Error; err != nil {
		return result, fmt.Errorf("list vehicles: %w", err)
	}

	return result, nil
}

// Get fetches a vehicle by id.
func (s *VehicleService) Get(id uint) (*db.Vehicle, error) {
	var vehicle db.Vehicle
	if err := s.db.Preload("VehicleType").First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// GetBySlug fetches a vehicle for a given slug.
func (s *VehicleService) GetBySlug(slug string) (*db.Vehicle, error) {
	var vehicle db.Vehicle
	if err := s.db.Preload("VehicleType").Where("slug = ?", strings.TrimSpace(slug)).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// Create inserts a new vehicle. The slug is derived from the title.
func (s *VehicleService) Create(input VehicleInput) (*db.Vehicle, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	vehicle := db.Vehicle{}
	applyVehicleInput(&vehicle, input)

	if err := writeWithSlugRetry(func() error {
		return s.db.Omit(clause.Associations).Create(&vehicle).Error
	}); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	return s.Get(vehicle.ID)
}

// Update modifies an existing vehicle. The slug only follows the title when the title changes.
func (s *VehicleService) Update(id uint, input VehicleInput) (*db.Vehicle, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	var vehicle db.Vehicle
	if err := s.db.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	applyVehicleInput(&vehicle, input)

	if err := writeWithSlugRetry(func() error {
		return s.db.Omit(clause.Associations).Save(&vehicle).Error
	}); err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}
	return s.Get(vehicle.ID)
}

// Delete removes a vehicle without pending or paid bookings.
func (s *VehicleService) Delete(id uint) error {
	var vehicle db.Vehicle
	if err := s.db.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVehicleNotFound
		}
		return err
	}

	var active int64
	if err := s.db.Model(&db.Booking{}).
		Where("vehicle_id = ? AND status IN ?", id, activeBookingStatuses).
		Count(&active).Error; err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}
	if active > 0 {
		return ErrVehicleHasBookings
	}

	return s.db.Delete(&vehicle).Error
}

func (s *VehicleService) validateInput(input VehicleInput) error {
	if input.VehicleTypeID == 0 {
		return ErrVehicleTypeUnspecified
	}
	if input.DailyRate <= 0 {
		return ErrVehicleRateInvalid
	}
	if input.Seats <= 0 {
		return ErrVehicleSeatsInvalid
	}
	if normalizeTransmission(input.Transmission) == "" {
		return ErrVehicleTransmission
	}

	var count int64
	if err := s.db.Model(&db.VehicleType{}).Where("id = ?", input.VehicleTypeID).Count(&count).Error; err != nil {
		return fmt.Errorf("check vehicle type: %w", err)
	}
	if count == 0 {
		return ErrVehicleTypeNotFound
	}
	return nil
}

func applyVehicleInput(vehicle *db.Vehicle, input VehicleInput) {
	vehicle.Title = strings.TrimSpace(input.Title)
	vehicle.VehicleTypeID = input.VehicleTypeID
	vehicle.Brand = strings.TrimSpace(input.Brand)
	vehicle.Seats = input.Seats
	vehicle.Transmission = normalizeTransmission(input.Transmission)
	vehicle.DailyRate = input.DailyRate
	vehicle.Description = strings.TrimSpace(input.Description)
	vehicle.ImageURL = strings.TrimSpace(input.ImageURL)
	vehicle.Available = input.Available
}

func normalizeTransmission(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", db.TransmissionAutomatic, "auto":
		return db.TransmissionAutomatic
	case db.TransmissionManual:
		return db.TransmissionManual
	default:
		return ""
	}
}
