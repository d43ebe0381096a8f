package repository

import "github.com/camden-git/menusysbackend/models"

// CategoryRepositoryInterface defines database operations for categories
type CategoryRepositoryInterface interface {
	Create(category *models.Category) error
	GetByID(id uint) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	ListAll(includeInactive bool) ([]models.Category, error)
	Update(category *models.Category) error
	Delete(id uint) error
	SlugExists(slug string, excludeID uint) (bool, error)
}

// MenuItemRepositoryInterface defines database operations for menu items
type MenuItemRepositoryInterface interface {
	Create(item *models.MenuItem) error
	GetByID(id uint) (*models.MenuItem, error)
	GetBySlug(slug string) (*models.MenuItem, error)
	ListByCategory(categoryID uint, includeUnavailable bool) ([]models.MenuItem, error)
	ListAll(includeUnavailable bool) ([]models.MenuItem, error)
	Update(item *models.MenuItem) error
	Delete(id uint) error
	SlugExists(slug string, excludeID uint) (bool, error)
}
