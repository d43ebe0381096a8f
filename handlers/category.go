package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/menusysbackend/models"
	"github.com/camden-git/menusysbackend/repository"
	"github.com/camden-git/menusysbackend/utils"
)

type CategoryHandler struct {
	Repo repository.CategoryRepositoryInterface
}

type categoryPayload struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
	Active      *bool   `json:"active"`
}

// getCategoryByIdentifier resolves a path identifier as either an ID or a slug
func (ch *CategoryHandler) getCategoryByIdentifier(identifier string) (*models.Category, error) {
	if id, err := strconv.ParseUint(identifier, 10, 64); err == nil {
		category, err := ch.Repo.GetByID(uint(id))
		if err == nil {
			return category, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return ch.Repo.GetBySlug(identifier)
}

func (ch *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid JSON body")
		return
	}
	if payload.Name == "" {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "name is required")
		return
	}

	slug, err := utils.UniqueSlug(utils.Slugify(payload.Name), func(s string) (bool, error) {
		return ch.Repo.SlugExists(s, 0)
	})
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to generate slug")
		return
	}

	category := models.Category{
		Name:        payload.Name,
		Slug:        slug,
		Description: payload.Description,
		Active:      true,
	}
	if payload.SortOrder != nil {
		category.SortOrder = *payload.SortOrder
	}
	if payload.Active != nil {
		category.Active = *payload.Active
	}

	if err := ch.Repo.Create(&category); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to create category")
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (ch *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	categories, err := ch.Repo.ListAll(includeInactive)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (ch *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := ch.getCategoryByIdentifier(chi.URLParam(r, "category_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "category not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to fetch category")
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (ch *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	category, err := ch.getCategoryByIdentifier(chi.URLParam(r, "category_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "category not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to fetch category")
		return
	}

	var payload categoryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid JSON body")
		return
	}
	if payload.Name != "" {
		category.Name = payload.Name
	}
	if payload.Description != nil {
		category.Description = payload.Description
	}
	if payload.SortOrder != nil {
		category.SortOrder = *payload.SortOrder
	}
	if payload.Active != nil {
		category.Active = *payload.Active
	}

	if err := ch.Repo.Update(category); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to update category")
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (ch *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	category, err := ch.getCategoryByIdentifier(chi.URLParam(r, "category_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "category not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to fetch category")
		return
	}

	if err := ch.Repo.Delete(category.ID); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
