package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/menusysbackend/models"
)

// MenuItemRepository handles database operations for MenuItem entities
type MenuItemRepository struct {
	DB *gorm.DB
}

// NewMenuItemRepository creates a new instance of MenuItemRepository
func NewMenuItemRepository(db *gorm.DB) *MenuItemRepository {
	return &MenuItemRepository{DB: db}
}

// Create creates a new menu item record in the database
func (r *MenuItemRepository) Create(item *models.MenuItem) error {
	now := time.Now().Unix()
	if item.CreatedAt == 0 {
		item.CreatedAt = now
	}
	if item.UpdatedAt == 0 {
		item.UpdatedAt = now
	}

	err := r.DB.Create(item).Error
	if err != nil {
		return fmt.Errorf("failed to create menu item %s: %w", item.Name, err)
	}
	return nil
}

// GetByID retrieves a menu item by its ID, preloading its category
func (r *MenuItemRepository) GetByID(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.DB.Preload("Category").First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get menu item by ID %d: %w", id, err)
	}
	return &item, nil
}

// GetBySlug retrieves a menu item by its slug, preloading its category
func (r *MenuItemRepository) GetBySlug(slug string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.DB.Preload("Category").Where("slug = ?", slug).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get menu item by slug %s: %w", slug, err)
	}
	return &item, nil
}

// ListByCategory retrieves menu items for one category
func (r *MenuItemRepository) ListByCategory(categoryID uint, includeUnavailable bool) ([]models.MenuItem, error) {
	var items []models.MenuItem
	query := r.DB.Where("category_id = ?", categoryID)
	if !includeUnavailable {
		query = query.Where("available = ?", true)
	}
	err := query.Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items for category %d: %w", categoryID, err)
	}
	return items, nil
}

// ListAll retrieves every menu item, preloading categories
func (r *MenuItemRepository) ListAll(includeUnavailable bool) ([]models.MenuItem, error) {
	var items []models.MenuItem
	query := r.DB.Preload("Category")
	if !includeUnavailable {
		query = query.Where("available = ?", true)
	}
	err := query.Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

// Update saves changes to an existing menu item
func (r *MenuItemRepository) Update(item *models.MenuItem) error {
	item.UpdatedAt = time.Now().Unix()
	err := r.DB.Save(item).Error
	if err != nil {
		return fmt.Errorf("failed to update menu item %d: %w", item.ID, err)
	}
	return nil
}

// Delete soft-deletes a menu item by ID
func (r *MenuItemRepository) Delete(id uint) error {
	err := r.DB.Delete(&models.MenuItem{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete menu item %d: %w", id, err)
	}
	return nil
}

// SlugExists reports whether another menu item already uses slug
func (r *MenuItemRepository) SlugExists(slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&models.MenuItem{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check menu item slug %s: %w", slug, err)
	}
	return count > 0, nil
}
