package media

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store defines the interface for persisting, resolving, and deleting
// generated image assets
type Store interface {
	// Save stores data under filename within the asset type's directory and
	// returns the relative path used. The write is not visible under its
	// final name until it is complete.
	Save(assetType AssetType, filename string, data io.Reader) (string, error)
	// Get retrieves a reader for an asset
	Get(relativePath string) (io.ReadCloser, os.FileInfo, error)
	// Delete removes an asset; a missing file is not an error
	Delete(relativePath string) error
	// GetFullPath returns the absolute filesystem path for a relative asset path
	GetFullPath(relativePath string) (string, error)
	// EnsureDir makes sure a specific asset type directory exists
	EnsureDir(assetType AssetType) (string, error)
	// ResolveVariants probes for every catalog spec/format combination
	// belonging to subjectKey and returns the ones that exist
	ResolveVariants(subjectKey string) (DescriptorSet, error)
}

// LocalStorage implements the Store interface using the local filesystem
type LocalStorage struct {
	basePath        string               // absolute path to the media storage root
	subDirMap       map[AssetType]string // maps AssetType to subdirectory name (e.g., "menu")
	resolvedPathMap map[AssetType]string // maps AssetType to full absolute path
}

// NewLocalStorage creates a new local filesystem store rooted at basePath
func NewLocalStorage(basePath string, subDirs map[AssetType]string) (*LocalStorage, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base storage path '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory '%s': %w", absBasePath, err)
	}

	resolvedPaths := make(map[AssetType]string)
	for assetType, subDir := range subDirs {
		fullPath := filepath.Clean(filepath.Join(absBasePath, subDir))
		if !strings.HasPrefix(fullPath, absBasePath+string(os.PathSeparator)) {
			return nil, fmt.Errorf("invalid subdirectory configuration: '%s' resolves outside base path '%s'", subDir, absBasePath)
		}
		resolvedPaths[assetType] = fullPath
	}

	log.Printf("media.store: Initialized LocalStorage at %s", absBasePath)
	return &LocalStorage{
		basePath:        absBasePath,
		subDirMap:       subDirs,
		resolvedPathMap: resolvedPaths,
	}, nil
}

// getAssetTypeDir resolves the absolute path for a given asset type
func (ls *LocalStorage) getAssetTypeDir(assetType AssetType) (string, error) {
	dirPath, ok := ls.resolvedPathMap[assetType]
	if !ok {
		log.Printf("media.store: Warning - Asset type '%s' not explicitly configured, using as subdirectory name", assetType)
		dirPath = filepath.Clean(filepath.Join(ls.basePath, string(assetType)))

		if !strings.HasPrefix(dirPath, ls.basePath+string(os.PathSeparator)) {
			return "", fmt.Errorf("asset type '%s' resolves outside base path", assetType)
		}
		ls.resolvedPathMap[assetType] = dirPath
	}
	return dirPath, nil
}

// EnsureDir creates the directory for the asset type if it doesn't exist
func (ls *LocalStorage) EnsureDir(assetType AssetType) (string, error) {
	dirPath, err := ls.getAssetTypeDir(assetType)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure directory '%s': %w", dirPath, err)
	}
	return dirPath, nil
}

// Save writes data to a temporary file in the target directory and renames it
// into place. Variant filenames are deterministic per subject, so a re-upload
// lands on the same name; the rename keeps a half-written file from ever
// being visible under that name.
func (ls *LocalStorage) Save(assetType AssetType, filename string, data io.Reader) (string, error) {
	targetDir, err := ls.EnsureDir(assetType)
	if err != nil {
		return "", err
	}

	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty for LocalStorage.Save")
	}
	if filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid filename '%s'", filename)
	}

	finalPath := filepath.Join(targetDir, filename)
	tmpPath := finalPath + ".tmp-" + uuid.NewString()

	outFile, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file '%s': %w", tmpPath, err)
	}

	if _, err := io.Copy(outFile, data); err != nil {
		outFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write data to '%s': %w", tmpPath, err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to finish writing '%s': %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move '%s' into place: %w", tmpPath, err)
	}

	relativePath, err := filepath.Rel(ls.basePath, finalPath)
	if err != nil {
		log.Printf("media.store: Error calculating relative path for '%s' from '%s': %v", finalPath, ls.basePath, err)
		return "", fmt.Errorf("internal error calculating relative path: %w", err)
	}

	log.Printf("media.store: Saved asset to %s", finalPath)
	return filepath.ToSlash(relativePath), nil
}

func (ls *LocalStorage) Get(relativePath string) (io.ReadCloser, os.FileInfo, error) {
	fullPath, err := ls.GetFullPath(relativePath)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("asset not found at '%s': %w", relativePath, err)
		}
		return nil, nil, fmt.Errorf("failed to open asset '%s': %w", relativePath, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to stat asset '%s': %w", relativePath, err)
	}

	return file, info, nil
}

// Delete removes an asset file. Missing files are treated as success so
// retried cleanups stay quiet.
func (ls *LocalStorage) Delete(relativePath string) error {
	fullPath, err := ls.GetFullPath(relativePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete asset '%s': %w", relativePath, err)
	}
	if err == nil {
		log.Printf("media.store: Deleted asset %s", fullPath)
	}
	return nil
}

// GetFullPath calculates the absolute path and performs security check
func (ls *LocalStorage) GetFullPath(relativePath string) (string, error) {
	// clean the relative path first to prevent simple traversal tricks
	cleanRelativePath := filepath.Clean(relativePath)

	fullPath := filepath.Join(ls.basePath, cleanRelativePath)

	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", relativePath, err)
	}

	// a bare prefix check would also accept sibling directories like
	// basePath + "2", so require the separator
	if absFullPath != ls.basePath && !strings.HasPrefix(absFullPath, ls.basePath+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid path: access denied for '%s'", relativePath)
	}

	return absFullPath, nil
}

// ResolveVariants probes the menu image directory for every spec/format
// combination in the catalog and returns the variants that exist. Absent
// combinations are skipped without error: records written before the catalog
// grew legitimately lack the newer sizes.
func (ls *LocalStorage) ResolveVariants(subjectKey string) (DescriptorSet, error) {
	if subjectKey == "" {
		return DescriptorSet{}, fmt.Errorf("subject key cannot be empty")
	}

	menuDir, err := ls.getAssetTypeDir(AssetTypeMenuImage)
	if err != nil {
		return DescriptorSet{}, err
	}
	subDir, err := filepath.Rel(ls.basePath, menuDir)
	if err != nil {
		return DescriptorSet{}, fmt.Errorf("internal error calculating menu directory path: %w", err)
	}

	set := DescriptorSet{
		SubjectKey: subjectKey,
		Variants:   make(map[VariantKey]StoredVariant),
	}
	for _, spec := range VariantCatalog {
		for _, format := range spec.Formats {
			relPath := filepath.ToSlash(filepath.Join(subDir, VariantFilename(subjectKey, spec.Name, format)))
			variant, err := ls.probeVariant(relPath, spec.Name, format)
			if err != nil {
				continue
			}
			set.Variants[VariantKey{Spec: spec.Name, Format: format}] = variant
		}
	}
	return set, nil
}

// probeVariant stats and decodes the header of one candidate variant file
func (ls *LocalStorage) probeVariant(relPath, specName string, format Format) (StoredVariant, error) {
	file, info, err := ls.Get(relPath)
	if err != nil {
		return StoredVariant{}, err
	}
	defer file.Close()

	variant := StoredVariant{
		SpecName: specName,
		Format:   format,
		Path:     relPath,
		ByteSize: info.Size(),
	}
	if cfg, _, err := image.DecodeConfig(file); err == nil {
		variant.Width = cfg.Width
		variant.Height = cfg.Height
	}
	return variant, nil
}
