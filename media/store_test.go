package media

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	ls, err := NewLocalStorage(t.TempDir(), map[AssetType]string{
		AssetTypeMenuImage:   "menu",
		AssetTypePlaceholder: "placeholders",
	})
	require.NoError(t, err)
	return ls
}

func TestLocalStorageSaveAndGet(t *testing.T) {
	ls := newTestLocalStorage(t)

	content := []byte("variant bytes")
	relPath, err := ls.Save(AssetTypeMenuImage, "latte_1_card.jpg", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "menu/latte_1_card.jpg", relPath)

	reader, info, err := ls.Get(relPath)
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), info.Size())
}

func TestLocalStorageSaveOverwritesDeterministicName(t *testing.T) {
	ls := newTestLocalStorage(t)

	_, err := ls.Save(AssetTypeMenuImage, "latte_1_card.jpg", bytes.NewReader([]byte("first")))
	require.NoError(t, err)
	relPath, err := ls.Save(AssetTypeMenuImage, "latte_1_card.jpg", bytes.NewReader([]byte("second")))
	require.NoError(t, err)

	reader, _, err := ls.Get(relPath)
	require.NoError(t, err)
	defer reader.Close()
	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestLocalStorageSaveLeavesNoTempFiles(t *testing.T) {
	ls := newTestLocalStorage(t)

	_, err := ls.Save(AssetTypeMenuImage, "latte_1_card.jpg", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	menuDir, err := ls.EnsureDir(AssetTypeMenuImage)
	require.NoError(t, err)
	entries, err := os.ReadDir(menuDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "latte_1_card.jpg", entries[0].Name())
}

func TestLocalStorageSaveRejectsBadFilenames(t *testing.T) {
	ls := newTestLocalStorage(t)

	_, err := ls.Save(AssetTypeMenuImage, "", bytes.NewReader(nil))
	assert.Error(t, err)

	_, err = ls.Save(AssetTypeMenuImage, "../escape.jpg", bytes.NewReader(nil))
	assert.Error(t, err)

	_, err = ls.Save(AssetTypeMenuImage, "sub/dir.jpg", bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestLocalStorageDelete(t *testing.T) {
	ls := newTestLocalStorage(t)

	relPath, err := ls.Save(AssetTypeMenuImage, "latte_1_card.jpg", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	require.NoError(t, ls.Delete(relPath))
	_, _, err = ls.Get(relPath)
	assert.Error(t, err)

	// deleting again is not an error
	assert.NoError(t, ls.Delete(relPath))
	assert.NoError(t, ls.Delete("menu/never_existed.jpg"))
}

func TestLocalStorageGetFullPathRejectsTraversal(t *testing.T) {
	ls := newTestLocalStorage(t)

	_, err := ls.GetFullPath("../../etc/passwd")
	assert.Error(t, err)

	fullPath, err := ls.GetFullPath("menu/latte_1_card.jpg")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(fullPath))
}

func TestLocalStorageGetFullPathRejectsSiblingDirectory(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "media")
	ls, err := NewLocalStorage(base, map[AssetType]string{AssetTypeMenuImage: "menu"})
	require.NoError(t, err)

	// "media2" shares the "media" string prefix but is a different tree
	sibling := base + "2"
	require.NoError(t, os.MkdirAll(sibling, 0755))

	_, err = ls.GetFullPath("../media2/secret.jpg")
	assert.Error(t, err)
}

func TestLocalStorageResolveVariants(t *testing.T) {
	ls := newTestLocalStorage(t)

	// write only two of the catalog combinations
	jpegData := newTestJPEG(150, 113)
	_, err := ls.Save(AssetTypeMenuImage, VariantFilename("latte_1", "thumbnail", FormatJPEG), bytes.NewReader(jpegData))
	require.NoError(t, err)
	_, err = ls.Save(AssetTypeMenuImage, VariantFilename("latte_1", "card", FormatJPEG), bytes.NewReader(newTestJPEG(400, 300)))
	require.NoError(t, err)

	set, err := ls.ResolveVariants("latte_1")
	require.NoError(t, err)
	assert.Equal(t, "latte_1", set.SubjectKey)
	assert.Len(t, set.Variants, 2)

	thumb, ok := set.Variants[VariantKey{Spec: "thumbnail", Format: FormatJPEG}]
	require.True(t, ok)
	assert.Equal(t, "menu/latte_1_thumbnail.jpg", thumb.Path)
	assert.Equal(t, int64(len(jpegData)), thumb.ByteSize)
	assert.Equal(t, 150, thumb.Width)
	assert.Equal(t, 113, thumb.Height)

	// another subject's files stay invisible
	other, err := ls.ResolveVariants("mocha_2")
	require.NoError(t, err)
	assert.Empty(t, other.Variants)
}

func TestLocalStorageResolveVariantsRequiresSubjectKey(t *testing.T) {
	ls := newTestLocalStorage(t)
	_, err := ls.ResolveVariants("")
	assert.Error(t, err)
}
