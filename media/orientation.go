package media

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// NormalizeOrientation rotates or flips img so the visual top of the photo
// matches the pixel-buffer top, based on the EXIF Orientation tag embedded in
// raw. A missing or unreadable tag leaves the image untouched, so a second
// pass over already-normalized output (which carries no tag) is a no-op.
func NormalizeOrientation(raw []byte, img image.Image) image.Image {
	return ApplyOrientation(img, readOrientation(raw))
}

// readOrientation extracts the EXIF Orientation value (1-8) from raw,
// returning 1 (upright) when the tag is absent or malformed
func readOrientation(raw []byte) int {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil || tag == nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// ApplyOrientation applies the transform named by an EXIF orientation value.
// imaging's rotations are counter-clockwise, so EXIF 6 ("rotate 90 CW to
// display") maps to Rotate270 and EXIF 8 to Rotate90.
func ApplyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}
