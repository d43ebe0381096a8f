package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/facette/natsort"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/menusysbackend/media"
	"github.com/camden-git/menusysbackend/models"
	"github.com/camden-git/menusysbackend/repository"
	"github.com/camden-git/menusysbackend/utils"
	"github.com/camden-git/menusysbackend/workers"
)

// MenuItemHandler serves menu item CRUD and the image endpoints defined in
// menu_image.go
type MenuItemHandler struct {
	Repo         repository.MenuItemRepositoryInterface
	CategoryRepo repository.CategoryRepositoryInterface
	Store        media.Store
	Pipeline     *media.Pipeline
	Cleanup      *workers.FileCleanup
	VariantDB    *sql.DB

	// configured upload byte ceiling; zero falls back to the media default
	MaxUploadSize int64

	// serializes uploads per subject; two concurrent uploads for the same
	// item would otherwise race on the deterministic variant names
	uploadLocks sync.Map
}

type menuItemPayload struct {
	Name             string  `json:"name"`
	Description      *string `json:"description"`
	PriceCents       *int64  `json:"price_cents"`
	CategoryID       *uint   `json:"category_id"`
	Available        *bool   `json:"available"`
	Featured         *bool   `json:"featured"`
	Temperature      *string `json:"temperature"`
	Size             *string `json:"size"`
	Calories         *int    `json:"calories"`
	ContainsCaffeine *bool   `json:"contains_caffeine"`
	DietaryNotes     *string `json:"dietary_notes"`
	PrepMinutes      *int    `json:"prep_minutes"`
}

// getItemByIdentifier resolves a path identifier as either an ID or a slug
func (mh *MenuItemHandler) getItemByIdentifier(identifier string) (*models.MenuItem, error) {
	if id, err := strconv.ParseUint(identifier, 10, 64); err == nil {
		item, err := mh.Repo.GetByID(uint(id))
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return mh.Repo.GetBySlug(identifier)
}

func (mh *MenuItemHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var payload menuItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid JSON body")
		return
	}
	if payload.Name == "" || payload.CategoryID == nil || payload.PriceCents == nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "name, category_id and price_cents are required")
		return
	}
	if *payload.PriceCents <= 0 {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "price_cents must be positive")
		return
	}
	if _, err := mh.CategoryRepo.GetByID(*payload.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "category does not exist")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to check category")
		return
	}

	slug, err := utils.UniqueSlug(utils.Slugify(payload.Name), func(s string) (bool, error) {
		return mh.Repo.SlugExists(s, 0)
	})
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to generate slug")
		return
	}

	item := models.MenuItem{
		Name:        payload.Name,
		Slug:        slug,
		PriceCents:  *payload.PriceCents,
		CategoryID:  *payload.CategoryID,
		Available:   true,
		Temperature: models.TemperatureBoth,
		Size:        models.SizeOneSize,
		PrepMinutes: 5,
	}
	if payload.Description != nil {
		item.Description = *payload.Description
	}
	applyOptionalFields(&item, payload)

	if err := mh.Repo.Create(&item); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to create menu item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func applyOptionalFields(item *models.MenuItem, payload menuItemPayload) {
	if payload.Available != nil {
		item.Available = *payload.Available
	}
	if payload.Featured != nil {
		item.Featured = *payload.Featured
	}
	if payload.Temperature != nil {
		item.Temperature = *payload.Temperature
	}
	if payload.Size != nil {
		item.Size = *payload.Size
	}
	if payload.Calories != nil {
		item.Calories = payload.Calories
	}
	if payload.ContainsCaffeine != nil {
		item.ContainsCaffeine = *payload.ContainsCaffeine
	}
	if payload.DietaryNotes != nil {
		item.DietaryNotes = payload.DietaryNotes
	}
	if payload.PrepMinutes != nil && *payload.PrepMinutes > 0 {
		item.PrepMinutes = *payload.PrepMinutes
	}
}

// ListMenuItems returns items in natural name order, so "Latte 2" sorts
// before "Latte 10"
func (mh *MenuItemHandler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	includeUnavailable := r.URL.Query().Get("include_unavailable") == "true"

	var items []models.MenuItem
	var err error
	if categoryParam := r.URL.Query().Get("category_id"); categoryParam != "" {
		categoryID, parseErr := strconv.ParseUint(categoryParam, 10, 64)
		if parseErr != nil {
			WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "category_id must be numeric")
			return
		}
		items, err = mh.Repo.ListByCategory(uint(categoryID), includeUnavailable)
	} else {
		items, err = mh.Repo.ListAll(includeUnavailable)
	}
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to list menu items")
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		return natsort.Compare(items[i].Name, items[j].Name)
	})
	writeJSON(w, http.StatusOK, items)
}

func (mh *MenuItemHandler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := mh.getItemByIdentifier(chi.URLParam(r, "item_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "menu item not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to fetch menu item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (mh *MenuItemHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := mh.getItemByIdentifier(chi.URLParam(r, "item_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "menu item not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to fetch menu item")
		return
	}

	var payload menuItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid JSON body")
		return
	}
	if payload.Name != "" {
		item.Name = payload.Name
	}
	if payload.Description != nil {
		item.Description = *payload.Description
	}
	if payload.PriceCents != nil {
		if *payload.PriceCents <= 0 {
			WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "price_cents must be positive")
			return
		}
		item.PriceCents = *payload.PriceCents
	}
	if payload.CategoryID != nil {
		if _, err := mh.CategoryRepo.GetByID(*payload.CategoryID); err != nil {
			WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "category does not exist")
			return
		}
		item.CategoryID = *payload.CategoryID
	}
	applyOptionalFields(item, payload)

	if err := mh.Repo.Update(item); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to update menu item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}
