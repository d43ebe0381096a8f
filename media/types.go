// media/types.go
package media

import (
	"fmt"
	"strings"
)

type AssetType string

const (
	AssetTypeMenuImage   AssetType = "menu"
	AssetTypePlaceholder AssetType = "placeholder"
	AssetTypeUnknown     AssetType = "unknown"
)

// Format is an output encoding for a generated variant
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

// Extension returns the filename extension used for stored files of this format
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatWebP:
		return ".webp"
	}
	return "." + string(f)
}

// ContentType returns the MIME type served for this format
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatWebP:
		return "image/webp"
	}
	return "application/octet-stream"
}

// VariantSpec defines one slot in the variant catalog: a display context with
// maximum pixel bounds and the formats it is encoded to
type VariantSpec struct {
	Name      string
	MaxWidth  int
	MaxHeight int
	Formats   []Format
}

// VariantCatalog is the fixed set of sizes generated for every uploaded menu
// image. Resizing fits within the bounds preserving aspect ratio; sources
// smaller than the bounds are never upscaled.
var VariantCatalog = []VariantSpec{
	{Name: "thumbnail", MaxWidth: 150, MaxHeight: 150, Formats: []Format{FormatJPEG, FormatWebP}},
	{Name: "card", MaxWidth: 400, MaxHeight: 300, Formats: []Format{FormatJPEG, FormatWebP}},
	{Name: "detail", MaxWidth: 800, MaxHeight: 600, Formats: []Format{FormatJPEG, FormatWebP}},
	{Name: "hero", MaxWidth: 1200, MaxHeight: 900, Formats: []Format{FormatJPEG, FormatWebP}},
}

// CatalogSpec looks up a VariantSpec by name
func CatalogSpec(name string) (VariantSpec, bool) {
	for _, spec := range VariantCatalog {
		if spec.Name == name {
			return spec, true
		}
	}
	return VariantSpec{}, false
}

// ImageSource is one uploaded image as received from the upload-handling
// layer. It only lives for the duration of a single request.
type ImageSource struct {
	Data        []byte
	Filename    string // declared filename, used for the extension check
	ContentType string // declared MIME type, may be empty
}

// StoredVariant describes one generated file on the backing store
type StoredVariant struct {
	SpecName string `json:"spec_name"`
	Format   Format `json:"format"`
	Path     string `json:"path"` // relative to the store root
	ByteSize int64  `json:"byte_size"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// VariantKey identifies one slot of a descriptor set
type VariantKey struct {
	Spec   string
	Format Format
}

func (k VariantKey) String() string {
	return fmt.Sprintf("%s.%s", k.Spec, k.Format)
}

// DescriptorSet is the full set of stored variants belonging to one subject's
// current image generation. Callers persist the subject key and resolve the
// set back through the store when rendering.
type DescriptorSet struct {
	SubjectKey  string
	Variants    map[VariantKey]StoredVariant
	Placeholder bool
}

// Paths returns the relative storage paths of every variant in the set
func (ds DescriptorSet) Paths() []string {
	paths := make([]string, 0, len(ds.Variants))
	for _, v := range ds.Variants {
		paths = append(paths, v.Path)
	}
	return paths
}

// Contains reports whether relPath belongs to this set
func (ds DescriptorSet) Contains(relPath string) bool {
	for _, v := range ds.Variants {
		if v.Path == relPath {
			return true
		}
	}
	return false
}

// VariantFilename builds the deterministic storage filename for one variant.
// Keys are unique per subject, so two different subjects can never collide.
func VariantFilename(subjectKey, specName string, format Format) string {
	return fmt.Sprintf("%s_%s%s", subjectKey, specName, format.Extension())
}

// SubjectKeyFromFilename recovers the subject key from a stored variant
// filename. It reports false for names that do not match the
// VariantFilename layout for any catalog spec.
func SubjectKeyFromFilename(filename string) (string, bool) {
	for _, spec := range VariantCatalog {
		for _, format := range spec.Formats {
			suffix := "_" + spec.Name + format.Extension()
			if strings.HasSuffix(filename, suffix) && len(filename) > len(suffix) {
				return strings.TrimSuffix(filename, suffix), true
			}
		}
	}
	return "", false
}
