package media

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePlaceholderIsDeterministic(t *testing.T) {
	a := GeneratePlaceholder("Latte", 400, 300, 0)
	b := GeneratePlaceholder("Latte", 400, 300, 0)
	require.NotEmpty(t, a)
	assert.Equal(t, a, b, "same inputs must produce identical bytes")

	other := GeneratePlaceholder("Mocha", 400, 300, 0)
	assert.NotEqual(t, a, other, "different labels must render differently")
}

func TestGeneratePlaceholderDimensions(t *testing.T) {
	data := GeneratePlaceholder("Latte", 640, 480, 1)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
}

func TestGeneratePlaceholderDefaultsZeroDimensions(t *testing.T) {
	data := GeneratePlaceholder("Latte", 0, -5, 0)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestGeneratePlaceholderHandlesAwkwardLabels(t *testing.T) {
	assert.NotEmpty(t, GeneratePlaceholder("", 400, 300, 0))
	assert.NotEmpty(t, GeneratePlaceholder(strings.Repeat("Caramel Macchiato ", 10), 400, 300, 0))
	assert.NotEmpty(t, GeneratePlaceholder("Crème Brûlée Latte", 400, 300, 3))
	// label wider than a tiny canvas must not panic
	assert.NotEmpty(t, GeneratePlaceholder("Very Long Drink Name", 40, 30, 0))
}

func TestPlaceholderColorCycles(t *testing.T) {
	n := len(placeholderPalette)
	assert.Equal(t, PlaceholderColor(2), PlaceholderColor(2+n))
	assert.Equal(t, PlaceholderColor(0), PlaceholderColor(n))
	// negative indexes still land inside the palette
	assert.Equal(t, PlaceholderColor(3), PlaceholderColor(-3))
}

func TestPlaceholderBackgroundMatchesPalette(t *testing.T) {
	data := GeneratePlaceholder("Latte", 400, 300, 2)
	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	want := PlaceholderColor(2)
	// sample away from the border, glyph, and label
	r, g, b, _ := img.At(20, 280).RGBA()
	got := color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xFF}

	assert.InDelta(t, int(want.R), int(got.R), 8, "JPEG compression may shift the channel slightly")
	assert.InDelta(t, int(want.G), int(got.G), 8)
	assert.InDelta(t, int(want.B), int(got.B), 8)
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "Latte", truncateLabel("Latte", 20))
	assert.Equal(t, "12345678901234567890", truncateLabel("12345678901234567890", 20))
	assert.Equal(t, "123456789012345678901"[:20]+"...", truncateLabel("123456789012345678901", 20))

	// rune-aware, not byte-aware
	long := strings.Repeat("é", 25)
	got := truncateLabel(long, 20)
	assert.Equal(t, strings.Repeat("é", 20)+"...", got)
}
