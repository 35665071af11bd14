package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wheelhub/internal/db"
	"gorm.io/gorm"
)

var (
	ErrVehicleTypeNotFound = errors.New("vehicle type not found")
	ErrVehicleTypeInUse    = errors.New("vehicle type has vehicles")
	ErrVehicleTypeOrder    = errors.New("invalid vehicle type order")
)

// VehicleTypeService wraps vehicle type operations.
type VehicleTypeService struct {
	db *gorm.DB
}

// VehicleTypeInput holds the editable fields of a vehicle type.
type VehicleTypeInput struct {
	Title       string
	Description string
	SortOrder   *int
}

// VehicleTypeUsage pairs a type with the number of vehicles assigned to it.
type VehicleTypeUsage struct {
	Type         db.VehicleType
	VehicleCount int64
}

// NewVehicleTypeService creates a VehicleTypeService instance.
func NewVehicleTypeService(gdb *gorm.DB) *VehicleTypeService {
	return &VehicleTypeService{db: gdb}
}

// List returns vehicle types ordered by configured sort order.
func (s *VehicleTypeService) List() ([]db.VehicleType, error) {
	var types []db.VehicleType
	if err := s.db.Order("sort_order asc").Order("title asc").Order("id asc").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("list vehicle types: %w", err)
	}
	return types, nil
}

// ListWithUsage returns vehicle types together with their vehicle counts.
func (s *VehicleTypeService) ListWithUsage() ([]VehicleTypeUsage, error) {
	types, err := s.List()
	if err != nil {
		return nil, err
	}

	var rows []struct {
		VehicleTypeID uint
		Count         int64
	}
	if err := s.db.Model(&db.Vehicle{}).
		Select("vehicle_type_id, COUNT(*) AS count").
		Group("vehicle_type_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count vehicles per type: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.VehicleTypeID] = row.Count
	}

	usages := make([]VehicleTypeUsage, 0, len(types))
	for _, t := range types {
		usages = append(usages, VehicleTypeUsage{Type: t, VehicleCount: counts[t.ID]})
	}
	return usages, nil
}

// Get fetches a vehicle type by id.
func (s *VehicleTypeService) Get(id uint) (*db.VehicleType, error) {
	var vt db.VehicleType
	if err := s.db.First(&vt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleTypeNotFound
		}
		return nil, err
	}
	return &vt, nil
}

// GetBySlug fetches a vehicle type for a given slug.
func (s *VehicleTypeService) GetBySlug(slug string) (*db.VehicleType, error) {
	var vt db.VehicleType
	if err := s.db.Where("slug = ?", strings.TrimSpace(slug)).First(&vt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleTypeNotFound
		}
		return nil, err
	}
	return &vt, nil
}

// Create inserts a new vehicle type. The slug is derived from the title.
func (s *VehicleTypeService) Create(input VehicleTypeInput) (*db.VehicleType, error) {
	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	} else {
		next, err := s.nextSortOrder()
		if err != nil {
			return nil, err
		}
		sortOrder = next
	}

	vt := db.VehicleType{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		SortOrder:   sortOrder,
	}

	if err := writeWithSlugRetry(func() error {
		return s.db.Create(&vt).Error
	}); err != nil {
		return nil, fmt.Errorf("create vehicle type: %w", err)
	}
	return &vt, nil
}

// Update changes a vehicle type. The slug only follows the title when the title changes.
func (s *VehicleTypeService) Update(id uint, input VehicleTypeInput) (*db.VehicleType, error) {
	vt, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	vt.Title = strings.TrimSpace(input.Title)
	vt.Description = strings.TrimSpace(input.Description)
	if input.SortOrder != nil {
		vt.SortOrder = *input.SortOrder
	}

	if err := writeWithSlugRetry(func() error {
		return s.db.Save(vt).Error
	}); err != nil {
		return nil, fmt.Errorf("update vehicle type: %w", err)
	}
	return vt, nil
}

// Delete removes a vehicle type that no vehicle references.
func (s *VehicleTypeService) Delete(id uint) error {
	vt, err := s.Get(id)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&db.Vehicle{}).Where("vehicle_type_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("count vehicles: %w", err)
	}
	if count > 0 {
		return ErrVehicleTypeInUse
	}

	return s.db.Delete(vt).Error
}

// Reorder updates sort order based on the provided ids sequence.
func (s *VehicleTypeService) Reorder(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return ErrVehicleTypeOrder
		}
		if _, ok := seen[id]; ok {
			return ErrVehicleTypeOrder
		}
		seen[id] = struct{}{}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for idx, id := range ids {
			result := tx.Model(&db.VehicleType{}).Where("id = ?", id).Update("sort_order", idx)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrVehicleTypeNotFound
			}
		}
		return nil
	})
}

func (s *VehicleTypeService) nextSortOrder() (int, error) {
	var maxSort int
	if err := s.db.Model(&db.VehicleType{}).
		Select("COALESCE(MAX(sort_order), -1)").
		Scan(&maxSort).Error; err != nil {
		return 0, err
	}
	return maxSort + 1, nil
}
