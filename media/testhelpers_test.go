package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"
	"time"
)

// newTestJPEG encodes a solid-color JPEG of the given size
func newTestJPEG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// newTestPNG encodes a PNG, optionally with a transparent region
func newTestPNG(width, height int, transparent bool) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := color.NRGBA{R: 40, G: 120, B: 200, A: 255}
			if transparent && x < width/2 {
				px.A = 0
			}
			img.SetNRGBA(x, y, px)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// newExifJPEG splices a minimal APP1 Exif segment carrying an Orientation tag
// into a stdlib-encoded JPEG, right after the SOI marker
func newExifJPEG(width, height, orientation int) []byte {
	plain := newTestJPEG(width, height)

	tiff := []byte{
		'I', 'I', 0x2A, 0x00, // little-endian TIFF header
		0x08, 0x00, 0x00, 0x00, // offset to IFD0
		0x01, 0x00, // one IFD entry
		0x12, 0x01, // tag 0x0112 (Orientation)
		0x03, 0x00, // type SHORT
		0x01, 0x00, 0x00, 0x00, // count
		byte(orientation), 0x00, 0x00, 0x00, // value, padded
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}

	payload := append([]byte("Exif\x00\x00"), tiff...)
	segment := []byte{0xFF, 0xE1, byte((len(payload) + 2) >> 8), byte(len(payload) + 2)}
	segment = append(segment, payload...)

	out := make([]byte, 0, len(plain)+len(segment))
	out = append(out, plain[:2]...) // SOI
	out = append(out, segment...)
	out = append(out, plain[2:]...)
	return out
}

// memStore is an in-memory Store used to test the processor without disk IO
type memStore struct {
	files     map[string][]byte
	failAfter int // fail the Nth Save (1-based); 0 disables
	saves     int
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (ms *memStore) Save(assetType AssetType, filename string, data io.Reader) (string, error) {
	ms.saves++
	if ms.failAfter > 0 && ms.saves >= ms.failAfter {
		return "", fmt.Errorf("simulated storage failure")
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	relPath := string(assetType) + "/" + filename
	ms.files[relPath] = content
	return relPath, nil
}

func (ms *memStore) Get(relativePath string) (io.ReadCloser, os.FileInfo, error) {
	content, ok := ms.files[relativePath]
	if !ok {
		return nil, nil, fmt.Errorf("asset not found at '%s'", relativePath)
	}
	return io.NopCloser(bytes.NewReader(content)), memFileInfo{name: relativePath, size: int64(len(content))}, nil
}

func (ms *memStore) Delete(relativePath string) error {
	delete(ms.files, relativePath)
	return nil
}

func (ms *memStore) GetFullPath(relativePath string) (string, error) {
	return "/" + relativePath, nil
}

func (ms *memStore) EnsureDir(assetType AssetType) (string, error) {
	return "/" + string(assetType), nil
}

func (ms *memStore) ResolveVariants(subjectKey string) (DescriptorSet, error) {
	set := DescriptorSet{SubjectKey: subjectKey, Variants: make(map[VariantKey]StoredVariant)}
	for _, spec := range VariantCatalog {
		for _, format := range spec.Formats {
			relPath := string(AssetTypeMenuImage) + "/" + VariantFilename(subjectKey, spec.Name, format)
			if content, ok := ms.files[relPath]; ok {
				set.Variants[VariantKey{Spec: spec.Name, Format: format}] = StoredVariant{
					SpecName: spec.Name,
					Format:   format,
					Path:     relPath,
					ByteSize: int64(len(content)),
				}
			}
		}
	}
	return set, nil
}

func (ms *memStore) pathsWithPrefix(prefix string) []string {
	var paths []string
	for path := range ms.files {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	return paths
}

type memFileInfo struct {
	name string
	size int64
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() os.FileMode  { return 0644 }
func (fi memFileInfo) ModTime() time.Time { return time.Time{} }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() interface{}   { return nil }
