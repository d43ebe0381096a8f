package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Temperature options for a menu item
const (
	TemperatureHot  = "hot"
	TemperatureCold = "cold"
	TemperatureBoth = "both"
	TemperatureRoom = "room"
)

// Serving size options
const (
	SizeSmall   = "small"
	SizeMedium  = "medium"
	SizeLarge   = "large"
	SizeXL      = "xl"
	SizeOneSize = "one_size"
)

// MenuItem is one orderable item on the menu. It corresponds to the
// 'menu_items' table. The item does not store variant paths itself: it keeps
// the subject key its current image generation was written under, and display
// code resolves the variant set through the media store.
type MenuItem struct {
	ID               uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string         `gorm:"not null" json:"name"`
	Slug             string         `gorm:"not null;unique" json:"slug"`
	Description      string         `gorm:"not null" json:"description"`
	PriceCents       int64          `gorm:"not null" json:"price_cents"`
	CategoryID       uint           `gorm:"not null;index" json:"category_id"`
	Category         *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Available        bool           `gorm:"not null;default:true" json:"available"`
	Featured         bool           `gorm:"not null;default:false" json:"featured"`
	Temperature      string         `gorm:"not null;default:both" json:"temperature"`
	Size             string         `gorm:"not null;default:one_size" json:"size"`
	Calories         *int           `gorm:"" json:"calories,omitempty"`      // Nullable
	ContainsCaffeine bool           `gorm:"not null;default:false" json:"contains_caffeine"`
	DietaryNotes     *string        `gorm:"" json:"dietary_notes,omitempty"` // Nullable
	PrepMinutes      int            `gorm:"not null;default:5" json:"prep_minutes"`
	ImageSubjectKey  *string        `gorm:"" json:"image_subject_key,omitempty"` // Nullable; set while a real photo exists
	CreatedAt        int64          `gorm:"not null" json:"created_at"`          // Unix timestamp
	UpdatedAt        int64          `gorm:"not null" json:"updated_at"`          // Unix timestamp
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`   // For soft deletes
}

// TableName explicitly sets the table name for GORM.
func (MenuItem) TableName() string {
	return "menu_items"
}

// SubjectKey derives the storage key new image uploads are written under.
// The ID suffix keeps keys stable and unique even when two items share a
// renamed slug; the key in use for the current image is the persisted
// ImageSubjectKey, which may predate a slug change.
func (mi *MenuItem) SubjectKey() string {
	return fmt.Sprintf("%s_%d", mi.Slug, mi.ID)
}

// HasImage reports whether a real photo is currently stored for this item
func (mi *MenuItem) HasImage() bool {
	return mi.ImageSubjectKey != nil && *mi.ImageSubjectKey != ""
}
