package media

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeTestImage(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestReadOrientationDefaultsToUpright(t *testing.T) {
	// stdlib-encoded JPEG carries no EXIF block at all
	assert.Equal(t, 1, readOrientation(newTestJPEG(20, 20)))
	assert.Equal(t, 1, readOrientation(newTestPNG(20, 20, false)))
	assert.Equal(t, 1, readOrientation([]byte("garbage")))
	assert.Equal(t, 1, readOrientation(nil))
}

func TestReadOrientationFromExifTag(t *testing.T) {
	assert.Equal(t, 6, readOrientation(newExifJPEG(30, 20, 6)))
	assert.Equal(t, 8, readOrientation(newExifJPEG(30, 20, 8)))
	assert.Equal(t, 3, readOrientation(newExifJPEG(30, 20, 3)))

	// out-of-range tag values fall back to upright
	assert.Equal(t, 1, readOrientation(newExifJPEG(30, 20, 0)))
	assert.Equal(t, 1, readOrientation(newExifJPEG(30, 20, 9)))
}

func TestNormalizeOrientationRotatesTaggedJPEG(t *testing.T) {
	// landscape pixels tagged "rotate 90 CW to display"
	raw := newExifJPEG(40, 30, 6)
	img := decodeTestImage(t, raw)
	require.Equal(t, 40, img.Bounds().Dx())

	out := NormalizeOrientation(raw, img)
	assert.Equal(t, 30, out.Bounds().Dx())
	assert.Equal(t, 40, out.Bounds().Dy())
}

func TestApplyOrientationRotations(t *testing.T) {
	src := decodeTestImage(t, newTestJPEG(30, 20))

	tests := []struct {
		orientation int
		wantW       int
		wantH       int
	}{
		{1, 30, 20},
		{2, 30, 20}, // mirrored, same dimensions
		{3, 30, 20}, // 180 degrees
		{4, 30, 20},
		{5, 20, 30}, // transposed
		{6, 20, 30}, // 90 CW
		{7, 20, 30},
		{8, 20, 30}, // 90 CCW
		{0, 30, 20}, // out of range values pass through
		{9, 30, 20},
	}
	for _, tc := range tests {
		out := ApplyOrientation(src, tc.orientation)
		b := out.Bounds()
		assert.Equal(t, tc.wantW, b.Dx(), "orientation %d width", tc.orientation)
		assert.Equal(t, tc.wantH, b.Dy(), "orientation %d height", tc.orientation)
	}
}

func TestApplyOrientationRotate90CWMovesTopLeft(t *testing.T) {
	// 2x1 image: left pixel white, right pixel black
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Pix = []uint8{255, 255, 255, 255, 0, 0, 0, 255}

	// after a 90 CW display rotation the white pixel ends up top-right
	out := ApplyOrientation(src, 6)
	b := out.Bounds()
	require.Equal(t, 1, b.Dx())
	require.Equal(t, 2, b.Dy())
	r, _, _, _ := out.At(b.Min.X, b.Min.Y).RGBA()
	assert.NotZero(t, r, "white source pixel should be at the top after rotation")
}

func TestNormalizeOrientationIsIdempotent(t *testing.T) {
	raw := newTestJPEG(40, 30)
	img := decodeTestImage(t, raw)

	once := NormalizeOrientation(raw, img)
	twice := NormalizeOrientation(raw, once)

	assert.Equal(t, once.Bounds(), twice.Bounds())
	// untagged input is passed through untouched, not copied
	assert.Same(t, img, once)
	assert.Same(t, once, twice)
}
