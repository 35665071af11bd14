package db

import "gorm.io/gorm"

// VehicleType 定义车型分类（SUV、轿车、MPV 等），Slug 由 Title 自动生成。
type VehicleType struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Slug        string `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	SortOrder   int    `gorm:"default:0"`

	persistedTitle string
}

// AfterFind remembers the stored title so later saves can tell whether it changed.
func (t *VehicleType) AfterFind(tx *gorm.DB) error {
	t.persistedTitle = t.Title
	return nil
}

// AfterSave marks the written title as persisted.
func (t *VehicleType) AfterSave(tx *gorm.DB) error {
	t.persistedTitle = t.Title
	return nil
}

func (t *VehicleType) SlugTitle() string      { return t.Title }
func (t *VehicleType) SlugOwnerID() uint      { return t.ID }
func (t *VehicleType) SetSlug(slug string)    { t.Slug = slug }
func (t *VehicleType) SlugTitleChanged() bool { return t.ID == 0 || t.Slug == "" || t.Title != t.persistedTitle }
