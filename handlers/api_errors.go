package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/camden-git/menusysbackend/media"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// WritePipelineError translates an image pipeline failure into the API error
// envelope. Validation failures carry the specific rejection for the user;
// processing failures are logged with context and surfaced as a generic 500
// so internal paths never leak.
func WritePipelineError(w http.ResponseWriter, err error) {
	var valErr *media.ValidationError
	if errors.As(err, &valErr) {
		WriteAPIError(w, validationStatus(valErr.Kind), "validation_failed", valErr.Detail)
		return
	}

	var procErr *media.ProcessingError
	if errors.As(err, &procErr) {
		log.Printf("image processing failed: %v", procErr)
		WriteAPIError(w, http.StatusInternalServerError, "processing_failed", "failed to process the uploaded image")
		return
	}

	log.Printf("unexpected image pipeline error: %v", err)
	WriteAPIError(w, http.StatusInternalServerError, "processing_failed", "failed to process the uploaded image")
}

func validationStatus(kind media.ValidationKind) int {
	switch kind {
	case media.ValidationTooLarge:
		return http.StatusRequestEntityTooLarge
	case media.ValidationDisallowedExtension, media.ValidationDisallowedMimeType:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}
