package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

const (
	// sources with either dimension above this are treated as unprocessed
	// phone photos and compressed harder
	phonePhotoThreshold = 2000

	qualityPhonePhoto   = 80
	qualityDefault      = 85
	qualityPreOptimized = 90
)

// Processor derives the catalog of sized, re-encoded variants from a decoded
// source image. It relies on a Store implementation for persisting the
// results.
type Processor struct {
	store Store
}

func NewProcessor(store Store) *Processor {
	return &Processor{store: store}
}

// GenerateVariants resizes and encodes the normalized source into every
// spec/format combination in the catalog and saves the results. Generation is
// all-or-nothing: if any variant fails to encode or store, everything written
// during this call is deleted before the error is returned.
func (p *Processor) GenerateVariants(img image.Image, subjectKey string) (DescriptorSet, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return DescriptorSet{}, &ProcessingError{
			Stage: StageEncode,
			Err:   fmt.Errorf("source image has invalid dimensions %dx%d", bounds.Dx(), bounds.Dy()),
		}
	}

	set := DescriptorSet{
		SubjectKey: subjectKey,
		Variants:   make(map[VariantKey]StoredVariant),
	}
	var written []string

	for _, spec := range VariantCatalog {
		resized := fitWithin(img, spec.MaxWidth, spec.MaxHeight)
		quality := qualityFor(bounds, spec)

		for _, format := range spec.Formats {
			data, err := encodeVariant(resized, format, quality)
			if err != nil {
				p.discard(written)
				return DescriptorSet{}, &ProcessingError{
					Stage: StageEncode,
					Err:   fmt.Errorf("variant %s/%s for %s: %w", spec.Name, format, subjectKey, err),
				}
			}

			filename := VariantFilename(subjectKey, spec.Name, format)
			relPath, err := p.store.Save(AssetTypeMenuImage, filename, bytes.NewReader(data))
			if err != nil {
				p.discard(written)
				return DescriptorSet{}, &ProcessingError{
					Stage: StageStore,
					Err:   fmt.Errorf("variant %s/%s for %s: %w", spec.Name, format, subjectKey, err),
				}
			}
			written = append(written, relPath)

			rb := resized.Bounds()
			set.Variants[VariantKey{Spec: spec.Name, Format: format}] = StoredVariant{
				SpecName: spec.Name,
				Format:   format,
				Path:     relPath,
				ByteSize: int64(len(data)),
				Width:    rb.Dx(),
				Height:   rb.Dy(),
			}
		}
	}

	log.Printf("media.processor: Generated %d variants for %s (source %dx%d)",
		len(set.Variants), subjectKey, bounds.Dx(), bounds.Dy())
	return set, nil
}

// discard removes files written during a failed generation attempt
func (p *Processor) discard(paths []string) {
	for _, path := range paths {
		if err := p.store.Delete(path); err != nil {
			log.Printf("media.processor: Failed to discard partial variant %s: %v", path, err)
		}
	}
}

// fitWithin resizes img so neither dimension exceeds the bounds, preserving
// aspect ratio. Sources already inside the bounds pass through unchanged
// rather than being upscaled.
func fitWithin(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth && b.Dy() <= maxHeight {
		return img
	}
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}

// qualityFor classifies the source against one spec's bounds: big phone
// photos compress harder to control output size, sources already small
// enough to skip resizing keep more quality, everything else takes the
// middle setting.
func qualityFor(source image.Rectangle, spec VariantSpec) int {
	w, h := source.Dx(), source.Dy()
	if w > phonePhotoThreshold || h > phonePhotoThreshold {
		return qualityPhonePhoto
	}
	if w <= spec.MaxWidth && h <= spec.MaxHeight {
		return qualityPreOptimized
	}
	return qualityDefault
}

// encodeVariant encodes img into the requested output format at the given
// quality. JPEG cannot carry transparency, so those sources are flattened
// onto white first.
func encodeVariant(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		err := imaging.Encode(&buf, flattenOnWhite(img), imaging.JPEG, imaging.JPEGQuality(quality))
		if err != nil {
			return nil, fmt.Errorf("jpeg encoding failed: %w", err)
		}
	case FormatWebP:
		opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
		if err != nil {
			return nil, fmt.Errorf("failed to create webp encoder options: %w", err)
		}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("webp encoding failed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return buf.Bytes(), nil
}

// flattenOnWhite composites a transparent image onto a white background.
// Opaque images pass through untouched.
func flattenOnWhite(img image.Image) image.Image {
	if op, ok := img.(interface{ Opaque() bool }); ok && op.Opaque() {
		return img
	}
	b := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)
	return flat
}
