package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultMenuImagesSubDir   = "menu"
	DefaultPlaceholdersSubDir = "placeholders"
)

const (
	defaultMaxUploadSize     = 5 * 1024 * 1024 // 5 MiB
	defaultMaxPixelDimension = 4096
	defaultCleanupQueueSize  = 100
	defaultNumCleanupWorkers = 2
)

var defaultAllowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

type Config struct {
	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for generated assets
	MenuImagesPath   string // full-calculated path for menu item variants
	PlaceholdersPath string // full-calculated path for generated placeholders

	// upload validation settings
	MaxUploadSize     int64
	AllowedExtensions []string
	AllowedMIMETypes  []string // empty disables the MIME check
	MaxPixelDimension int

	// cleanup worker settings
	CleanupQueueSize  int
	NumCleanupWorkers int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvInt64OrDefault(envVar string, defaultVal int64) int64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseInt(valStr, 10, 64)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

// getEnvListOrDefault parses a comma-separated list, trimming whitespace
func getEnvListOrDefault(envVar string, defaultVal []string) []string {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(valStr, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "menu.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	menuSubDir := getEnvOrDefault("MENU_IMAGES_SUBDIR", DefaultMenuImagesSubDir)
	absMenuImagesPath := filepath.Join(absMediaStorage, menuSubDir)

	placeholderSubDir := getEnvOrDefault("PLACEHOLDERS_SUBDIR", DefaultPlaceholdersSubDir)
	absPlaceholdersPath := filepath.Join(absMediaStorage, placeholderSubDir)

	maxUploadSize := getEnvInt64OrDefault("MAX_UPLOAD_SIZE", defaultMaxUploadSize)
	allowedExtensions := getEnvListOrDefault("ALLOWED_EXTENSIONS", defaultAllowedExtensions)
	allowedMIMETypes := getEnvListOrDefault("ALLOWED_MIME_TYPES", nil)
	maxPixelDimension := getEnvIntOrDefault("MAX_PIXEL_DIMENSION", defaultMaxPixelDimension)

	queueSize := getEnvIntOrDefault("CLEANUP_QUEUE_SIZE", defaultCleanupQueueSize)
	numWorkers := getEnvIntOrDefault("NUM_CLEANUP_WORKERS", defaultNumCleanupWorkers)

	cfg := Config{
		DatabasePath:      dbPath,
		MediaStoragePath:  absMediaStorage,
		MenuImagesPath:    absMenuImagesPath,
		PlaceholdersPath:  absPlaceholdersPath,
		MaxUploadSize:     maxUploadSize,
		AllowedExtensions: allowedExtensions,
		AllowedMIMETypes:  allowedMIMETypes,
		MaxPixelDimension: maxPixelDimension,
		CleanupQueueSize:  queueSize,
		NumCleanupWorkers: numWorkers,
	}

	return cfg, nil
}
