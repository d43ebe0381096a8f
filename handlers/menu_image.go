package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/menusysbackend/database"
	"github.com/camden-git/menusysbackend/media"
	"github.com/camden-git/menusysbackend/models"
)

// uploadFormField is the multipart field name the image is read from
const uploadFormField = "image"

// how much slack beyond the validator's byte ceiling the multipart parser
// accepts; the validator still rejects oversized image payloads itself
const multipartOverhead = 1 << 20

// uploadMemoryLimit is the multipart parse memory threshold: the configured
// byte ceiling plus framing slack. Not the enforcement point, that stays with
// the validator.
func (mh *MenuItemHandler) uploadMemoryLimit() int64 {
	limit := mh.MaxUploadSize
	if limit <= 0 {
		limit = media.DefaultMaxUploadSize
	}
	return limit + multipartOverhead
}

// lockSubject serializes image writes for one menu item
func (mh *MenuItemHandler) lockSubject(itemID uint) func() {
	actual, _ := mh.uploadLocks.LoadOrStore(itemID, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// UploadMenuItemImage accepts a multipart photo upload, runs it through the
// processing pipeline, persists the new subject key, and schedules deletion
// of the superseded variant files. New files are durable before anything old
// is touched.
func (mh *MenuItemHandler) UploadMenuItemImage(w http.ResponseWriter, r *http.Request) {
	item, err := mh.getItemByIdentifier(chi.URLParam(r, "item_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "menu item not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to fetch menu item")
		return
	}

	if err := r.ParseMultipartForm(mh.uploadMemoryLimit()); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid multipart form")
		return
	}
	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", fmt.Sprintf("missing %q file field", uploadFormField))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "failed to read uploaded file")
		return
	}

	src := media.ImageSource{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}

	unlock := mh.lockSubject(item.ID)
	defer unlock()

	oldPaths := mh.currentImagePaths(item)

	subjectKey := item.SubjectKey()
	set, err := mh.Pipeline.Process(src, subjectKey)
	if err != nil {
		WritePipelineError(w, err)
		return
	}

	if err := database.ReplaceVariantSet(mh.VariantDB, set); err != nil {
		// the files are on disk but unindexed; they still resolve through
		// the store probe, and the orphan sweep spares files whose subject
		// key a live item references
		log.Printf("failed to index variant set for %s: %v", subjectKey, err)
	}

	item.ImageSubjectKey = &subjectKey
	if err := mh.Repo.Update(item); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to save menu item image reference")
		return
	}

	// write-new-then-delete-old: everything from the previous generation
	// that the new set did not overwrite goes to the cleanup queue
	var stale []string
	for _, path := range oldPaths {
		if !set.Contains(path) {
			stale = append(stale, path)
		}
	}
	mh.Cleanup.Enqueue(stale)

	writeJSON(w, http.StatusOK, descriptorSetResponse(set))
}

// GetMenuItemImage resolves the stored variant set for an item. Items
// without a real photo get a 404 plus the placeholder URL, so front-end code
// still has something to render.
func (mh *MenuItemHandler) GetMenuItemImage(w http.ResponseWriter, r *http.Request) {
	item, err := mh.getItemByIdentifier(chi.URLParam(r, "item_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "menu item not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to fetch menu item")
		return
	}

	if !item.HasImage() {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"errors": []APIErrorDetail{{
				Code:   "no_image",
				Status: "404",
				Detail: "menu item has no photo",
			}},
			"placeholder_url": fmt.Sprintf("/api/menu-items/%d/image/placeholder", item.ID),
		})
		return
	}

	set, err := mh.Store.ResolveVariants(*item.ImageSubjectKey)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to resolve image variants")
		return
	}
	writeJSON(w, http.StatusOK, descriptorSetResponse(set))
}

// DeleteMenuItemImage removes an item's photo: the record reference is
// cleared first, then the files are reaped in the background
func (mh *MenuItemHandler) DeleteMenuItemImage(w http.ResponseWriter, r *http.Request) {
	item, err := mh.getItemByIdentifier(chi.URLParam(r, "item_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "menu item not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to fetch menu item")
		return
	}

	unlock := mh.lockSubject(item.ID)
	defer unlock()

	paths := mh.currentImagePaths(item)

	if item.HasImage() {
		item.ImageSubjectKey = nil
		if err := mh.Repo.Update(item); err != nil {
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to clear menu item image reference")
			return
		}
	}

	mh.Cleanup.Enqueue(paths)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMenuItem removes the record and schedules its image files for cleanup
func (mh *MenuItemHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := mh.getItemByIdentifier(chi.URLParam(r, "item_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "menu item not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to fetch menu item")
		return
	}

	unlock := mh.lockSubject(item.ID)
	defer unlock()

	paths := mh.currentImagePaths(item)

	if err := mh.Repo.Delete(item.ID); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to delete menu item")
		return
	}

	mh.Cleanup.Enqueue(paths)
	w.WriteHeader(http.StatusNoContent)
}

// GetMenuItemPlaceholder renders the deterministic stand-in image for an
// item without a photo. The category's sort order picks the palette color,
// so items in one category share a look.
func (mh *MenuItemHandler) GetMenuItemPlaceholder(w http.ResponseWriter, r *http.Request) {
	item, err := mh.getItemByIdentifier(chi.URLParam(r, "item_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "menu item not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to fetch menu item")
		return
	}

	colorIndex := 0
	if item.Category != nil {
		colorIndex = item.Category.SortOrder
	}

	spec, _ := media.CatalogSpec("card")
	data := media.GeneratePlaceholder(item.Name, spec.MaxWidth, spec.MaxHeight, colorIndex)

	w.Header().Set("Content-Type", media.FormatJPEG.ContentType())
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("failed to write placeholder response: %v", err)
	}
}

// currentImagePaths gathers every file belonging to the item's current image
// generation, from both the variant index and a store probe (older records
// may predate the index)
func (mh *MenuItemHandler) currentImagePaths(item *models.MenuItem) []string {
	if !item.HasImage() {
		return nil
	}
	subjectKey := *item.ImageSubjectKey

	seen := make(map[string]bool)
	var paths []string

	indexed, err := database.ListVariantPaths(mh.VariantDB, subjectKey)
	if err != nil {
		log.Printf("failed to list indexed variants for %s: %v", subjectKey, err)
	}
	for _, path := range indexed {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	if set, err := mh.Store.ResolveVariants(subjectKey); err == nil {
		for _, path := range set.Paths() {
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		}
	}

	return paths
}

// descriptorSetResponse shapes a descriptor set for JSON: size name to
// format to URL, plus per-variant metadata
func descriptorSetResponse(set media.DescriptorSet) map[string]interface{} {
	urls := make(map[string]map[string]string)
	variants := make([]media.StoredVariant, 0, len(set.Variants))
	for key, v := range set.Variants {
		if urls[key.Spec] == nil {
			urls[key.Spec] = make(map[string]string)
		}
		urls[key.Spec][string(key.Format)] = "/media/" + v.Path
		variants = append(variants, v)
	}
	return map[string]interface{}{
		"subject_key": set.SubjectKey,
		"urls":        urls,
		"variants":    variants,
	}
}
