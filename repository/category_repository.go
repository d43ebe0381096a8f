package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/menusysbackend/models"
)

// CategoryRepository handles database operations for Category entities
type CategoryRepository struct {
	DB *gorm.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

// Create creates a new category record in the database
func (r *CategoryRepository) Create(category *models.Category) error {
	now := time.Now().Unix()
	if category.CreatedAt == 0 {
		category.CreatedAt = now
	}
	if category.UpdatedAt == 0 {
		category.UpdatedAt = now
	}

	err := r.DB.Create(category).Error
	if err != nil {
		return fmt.Errorf("failed to create category %s: %w", category.Name, err)
	}
	return nil
}

// GetByID retrieves a category by its ID
func (r *CategoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	err := r.DB.First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category by ID %d: %w", id, err)
	}
	return &category, nil
}

// GetBySlug retrieves a category by its slug
func (r *CategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	var category models.Category
	err := r.DB.Where("slug = ?", slug).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category by slug %s: %w", slug, err)
	}
	return &category, nil
}

// ListAll retrieves categories ordered by sort order then name
func (r *CategoryRepository) ListAll(includeInactive bool) ([]models.Category, error) {
	var categories []models.Category
	query := r.DB.Order("sort_order ASC, name ASC")
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	err := query.Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Update saves changes to an existing category
func (r *CategoryRepository) Update(category *models.Category) error {
	category.UpdatedAt = time.Now().Unix()
	err := r.DB.Save(category).Error
	if err != nil {
		return fmt.Errorf("failed to update category %d: %w", category.ID, err)
	}
	return nil
}

// Delete removes a category by ID
func (r *CategoryRepository) Delete(id uint) error {
	err := r.DB.Delete(&models.Category{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return nil
}

// SlugExists reports whether another category already uses slug
func (r *CategoryRepository) SlugExists(slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&models.Category{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check category slug %s: %w", slug, err)
	}
	return count > 0, nil
}
