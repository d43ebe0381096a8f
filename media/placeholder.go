package media

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"log"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// placeholderPalette holds the fixed background colors cycled through by
// color index, so the same subject always regenerates with the same color
var placeholderPalette = []color.NRGBA{
	{0xE3, 0xF2, 0xFD, 0xFF}, // light blue
	{0xF3, 0xE5, 0xF5, 0xFF}, // light purple
	{0xE8, 0xF5, 0xE8, 0xFF}, // light green
	{0xFF, 0xF3, 0xE0, 0xFF}, // light orange
	{0xFC, 0xE4, 0xEC, 0xFF}, // light pink
	{0xF1, 0xF8, 0xE9, 0xFF}, // light lime
}

var (
	placeholderTextColor   = color.NRGBA{0x66, 0x66, 0x66, 0xFF}
	placeholderBorderColor = color.NRGBA{0xDD, 0xDD, 0xDD, 0xFF}
	placeholderCupColor    = color.NRGBA{0x8D, 0x6E, 0x63, 0xFF}
)

const (
	placeholderLabelLimit = 20
	placeholderQuality    = 90
)

// PlaceholderColor returns the palette entry for a color index
func PlaceholderColor(colorIndex int) color.NRGBA {
	if colorIndex < 0 {
		colorIndex = -colorIndex
	}
	return placeholderPalette[colorIndex%len(placeholderPalette)]
}

// GeneratePlaceholder synthesizes a stand-in JPEG for a subject with no real
// photo: palette background, truncated centered label, border and a small cup
// glyph. It never fails; if anything goes wrong during drawing or encoding it
// degrades to a flat-color image so a placeholder can never block a save.
func GeneratePlaceholder(label string, width, height, colorIndex int) []byte {
	if width <= 0 {
		width = 400
	}
	if height <= 0 {
		height = 300
	}
	background := PlaceholderColor(colorIndex)

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	drawBorder(img, placeholderBorderColor, 2)
	drawCupGlyph(img)
	drawLabel(img, truncateLabel(label, placeholderLabelLimit))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(placeholderQuality)); err != nil {
		log.Printf("media.placeholder: Encode failed, falling back to flat color: %v", err)
		return flatColorJPEG(width, height, background)
	}
	return buf.Bytes()
}

// truncateLabel caps the label at limit runes, appending an ellipsis when
// anything was cut
func truncateLabel(label string, limit int) string {
	runes := []rune(label)
	if len(runes) <= limit {
		return label
	}
	return string(runes[:limit]) + "..."
}

// drawLabel renders text centered horizontally, below the glyph. The bitmap
// face ships with the binary, so there is no font file to go missing; an
// empty label simply draws nothing.
func drawLabel(img *image.NRGBA, label string) {
	if label == "" {
		return
	}
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(placeholderTextColor),
		Face: face,
	}

	bounds := img.Bounds()
	textWidth := drawer.MeasureString(label).Ceil()
	x := (bounds.Dx() - textWidth) / 2
	if x < 0 {
		x = 0
	}
	y := bounds.Dy()/2 + face.Metrics().Ascent.Ceil()/2

	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(label)
}

// drawBorder draws a rectangular frame of the given thickness just inside
// the image edges
func drawBorder(img *image.NRGBA, c color.NRGBA, thickness int) {
	b := img.Bounds()
	for t := 0; t < thickness; t++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetNRGBA(x, b.Min.Y+t, c)
			img.SetNRGBA(x, b.Max.Y-1-t, c)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			img.SetNRGBA(b.Min.X+t, y, c)
			img.SetNRGBA(b.Max.X-1-t, y, c)
		}
	}
}

// drawCupGlyph paints a simple coffee-cup shape in the upper half of the
// image: a filled ellipse body plus a half-ring handle on the right. The
// glyph distinguishes placeholders from broken images at a glance.
func drawCupGlyph(img *image.NRGBA) {
	b := img.Bounds()
	size := minInt(b.Dx(), b.Dy()) / 6
	if size < 8 {
		return
	}

	cx := float64(b.Min.X+b.Dx()/2) - float64(size)/2
	cy := float64(b.Min.Y + b.Dy()/4)

	// body: ellipse spanning the lower two thirds of the glyph box
	bodyCX := cx + float64(size)/2
	bodyCY := cy + float64(size)*2/3
	radX := float64(size) / 2
	radY := float64(size) / 3
	for y := int(bodyCY - radY); y <= int(bodyCY+radY); y++ {
		for x := int(bodyCX - radX); x <= int(bodyCX+radX); x++ {
			dx := (float64(x) - bodyCX) / radX
			dy := (float64(y) - bodyCY) / radY
			if dx*dx+dy*dy <= 1.0 {
				img.SetNRGBA(x, y, placeholderCupColor)
			}
		}
	}

	// handle: right-side half ring attached to the body
	handleR := float64(size) / 4
	handleCX := bodyCX + radX
	handleCY := bodyCY
	for y := int(handleCY - handleR - 2); y <= int(handleCY+handleR+2); y++ {
		for x := int(handleCX); x <= int(handleCX+handleR+2); x++ {
			d := math.Hypot(float64(x)-handleCX, float64(y)-handleCY)
			if d >= handleR-1.5 && d <= handleR+1.5 {
				img.SetNRGBA(x, y, placeholderCupColor)
			}
		}
	}
}

// flatColorJPEG is the last-resort placeholder: a plain background with no
// decoration at all
func flatColorJPEG(width, height int, c color.NRGBA) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: placeholderQuality}); err != nil {
		// encoding a uniform NRGBA into memory cannot realistically fail,
		// but the contract is that this function always returns bytes
		log.Printf("media.placeholder: Flat fallback encode failed: %v", err)
		return nil
	}
	return buf.Bytes()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
