package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxUploadSize     = 5 * 1024 * 1024 // 5 MiB
	DefaultMaxPixelDimension = 4096
)

// DefaultAllowedExtensions lists the upload extensions accepted when no
// override is configured
var DefaultAllowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ValidatorConfig bounds what the validator accepts. Zero fields fall back to
// the defaults above; an empty MIME allow-list disables the MIME check.
type ValidatorConfig struct {
	MaxUploadSize     int64
	AllowedExtensions []string
	AllowedMIMETypes  []string
	MaxPixelDimension int
}

// Validator rejects anything that is not a well-formed, size-bounded,
// allowed-format still image. It never writes anything; the source bytes are
// untouched and can be decoded again by the caller.
type Validator struct {
	maxUploadSize     int64
	allowedExtensions map[string]bool
	allowedMIMETypes  map[string]bool
	maxPixelDimension int
}

func NewValidator(cfg ValidatorConfig) *Validator {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if cfg.MaxPixelDimension <= 0 {
		cfg.MaxPixelDimension = DefaultMaxPixelDimension
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = DefaultAllowedExtensions
	}

	exts := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}

	var mimes map[string]bool
	if len(cfg.AllowedMIMETypes) > 0 {
		mimes = make(map[string]bool, len(cfg.AllowedMIMETypes))
		for _, mt := range cfg.AllowedMIMETypes {
			mt = strings.ToLower(strings.TrimSpace(mt))
			if mt != "" {
				mimes[mt] = true
			}
		}
	}

	return &Validator{
		maxUploadSize:     cfg.MaxUploadSize,
		allowedExtensions: exts,
		allowedMIMETypes:  mimes,
		maxPixelDimension: cfg.MaxPixelDimension,
	}
}

// Validate checks src against the configured limits. It returns a
// *ValidationError describing the first failed check, or nil when the upload
// is acceptable.
//
// The MIME allow-list only applies to uploads that declare a content type.
// Multipart clients may legitimately omit it, and those uploads are still
// gated by the extension check and the decode itself.
func (v *Validator) Validate(src ImageSource) error {
	if int64(len(src.Data)) > v.maxUploadSize {
		return &ValidationError{
			Kind:   ValidationTooLarge,
			Detail: fmt.Sprintf("image is %d bytes, maximum is %d", len(src.Data), v.maxUploadSize),
		}
	}

	ext := strings.ToLower(filepath.Ext(src.Filename))
	if !v.allowedExtensions[ext] {
		return &ValidationError{
			Kind:   ValidationDisallowedExtension,
			Detail: fmt.Sprintf("extension %q is not allowed", ext),
		}
	}

	if v.allowedMIMETypes != nil && src.ContentType != "" {
		mt := strings.ToLower(src.ContentType)
		// strip any parameters, e.g. "image/jpeg; charset=binary"
		if idx := strings.Index(mt, ";"); idx >= 0 {
			mt = strings.TrimSpace(mt[:idx])
		}
		if !v.allowedMIMETypes[mt] {
			return &ValidationError{
				Kind:   ValidationDisallowedMimeType,
				Detail: fmt.Sprintf("content type %q is not allowed", src.ContentType),
			}
		}
	}

	// header check first: dimensions must be bounded before the full decode
	// so a decompression bomb never allocates its pixel buffer
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src.Data))
	if err != nil {
		return &ValidationError{
			Kind:   ValidationCorruptImage,
			Detail: fmt.Sprintf("cannot decode image header: %v", err),
		}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return &ValidationError{
			Kind:   ValidationCorruptImage,
			Detail: fmt.Sprintf("image has zero area (%dx%d)", cfg.Width, cfg.Height),
		}
	}
	if cfg.Width > v.maxPixelDimension || cfg.Height > v.maxPixelDimension {
		return &ValidationError{
			Kind:   ValidationDimensionTooLarge,
			Detail: fmt.Sprintf("image is %dx%d, maximum is %d on either axis", cfg.Width, cfg.Height, v.maxPixelDimension),
		}
	}
	if !allowedColorModel(cfg.ColorModel) {
		return &ValidationError{
			Kind:   ValidationUnsupportedColorMode,
			Detail: "image color mode is not supported; use RGB, RGBA, grayscale or palette",
		}
	}

	if _, _, err := image.Decode(bytes.NewReader(src.Data)); err != nil {
		return &ValidationError{
			Kind:   ValidationCorruptImage,
			Detail: fmt.Sprintf("cannot decode image data: %v", err),
		}
	}

	return nil
}

// allowedColorModel reports whether the decoded color model maps onto RGB,
// RGBA, grayscale or palette. JPEG decodes as YCbCr, which is plain RGB on
// the wire; CMYK and alpha-only models are rejected.
func allowedColorModel(m color.Model) bool {
	switch m {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model,
		color.GrayModel, color.Gray16Model, color.YCbCrModel, color.NYCbCrAModel:
		return true
	}
	if _, ok := m.(color.Palette); ok {
		return true
	}
	return false
}
