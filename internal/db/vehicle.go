package db

import "gorm.io/gorm"

const (
	TransmissionAutomatic = "automatic"
	TransmissionManual    = "manual"
)

// Vehicle 定义可租赁车辆，DailyRate 以分为单位存储。
type Vehicle struct {
	gorm.Model
	Title         string `gorm:"not null"`
	Slug          string `gorm:"uniqueIndex;not null"`
	VehicleTypeID uint   `gorm:"index;not null"`
	VehicleType   VehicleType
	Brand         string
	Seats         int
	Transmission  string
	DailyRate     int64
	Description   string `gorm:"type:text"`
	ImageURL      string
	Available     bool

	persistedTitle string
}

// AfterFind remembers the stored title so later saves can tell whether it changed.
func (v *Vehicle) AfterFind(tx *gorm.DB) error {
	v.persistedTitle = v.Title
	return nil
}

// AfterSave marks the written title as persisted.
func (v *Vehicle) AfterSave(tx *gorm.DB) error {
	v.persistedTitle = v.Title
	return nil
}

func (v *Vehicle) SlugTitle() string      { return v.Title }
func (v *Vehicle) SlugOwnerID() uint      { return v.ID }
func (v *Vehicle) SetSlug(slug string)    { v.Slug = slug }
func (v *Vehicle) SlugTitleChanged() bool { return v.ID == 0 || v.Slug == "" || v.Title != v.persistedTitle }
