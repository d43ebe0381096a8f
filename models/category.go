package models

// Category groups menu items for display (e.g. Coffee, Food, Desserts).
// It corresponds to the 'categories' table.
type Category struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null;unique" json:"name"`
	Slug        string  `gorm:"not null;unique" json:"slug"`
	Description *string `gorm:"" json:"description,omitempty"` // Nullable
	SortOrder   int     `gorm:"not null;default:0" json:"sort_order"`
	Active      bool    `gorm:"not null;default:true" json:"active"`
	CreatedAt   int64   `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt   int64   `gorm:"not null" json:"updated_at"` // Unix timestamp

	MenuItems []MenuItem `gorm:"foreignKey:CategoryID" json:"menu_items,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Category) TableName() string {
	return "categories"
}
