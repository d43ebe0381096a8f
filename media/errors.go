package media

import "fmt"

// ValidationKind distinguishes the possible upload rejection reasons. All of
// them are user-facing; nothing is written to the store before validation
// passes.
type ValidationKind string

const (
	ValidationTooLarge             ValidationKind = "too_large"
	ValidationDisallowedExtension  ValidationKind = "disallowed_extension"
	ValidationDisallowedMimeType   ValidationKind = "disallowed_mime_type"
	ValidationCorruptImage         ValidationKind = "corrupt_image"
	ValidationDimensionTooLarge    ValidationKind = "dimension_too_large"
	ValidationUnsupportedColorMode ValidationKind = "unsupported_color_mode"
)

// ValidationError is returned when an upload is rejected before any
// processing happens
type ValidationError struct {
	Kind   ValidationKind
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("image validation failed (%s): %s", e.Kind, e.Detail)
}

// Processing stages used in ProcessingError
const (
	StageEncode = "encode"
	StageStore  = "store"
)

// ProcessingError is returned when variant generation fails after validation
// succeeded. Any files written during the failed attempt have already been
// cleaned up by the time the error is returned.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("image processing failed at %s: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
