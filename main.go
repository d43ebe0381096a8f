package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/menusysbackend/config"
	"github.com/camden-git/menusysbackend/database"
	"github.com/camden-git/menusysbackend/handlers"
	"github.com/camden-git/menusysbackend/media"
	"github.com/camden-git/menusysbackend/repository"
	"github.com/camden-git/menusysbackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.MenuImagesPath, cfg.PlaceholdersPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	variantDB, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize variant index database: %v", err)
	}
	defer variantDB.Close()

	gormDB, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(gormDB); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeMenuImage:   filepath.Base(cfg.MenuImagesPath),
		media.AssetTypePlaceholder: filepath.Base(cfg.PlaceholdersPath),
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}

	pipeline := media.NewPipeline(mediaStore, media.ValidatorConfig{
		MaxUploadSize:     cfg.MaxUploadSize,
		AllowedExtensions: cfg.AllowedExtensions,
		AllowedMIMETypes:  cfg.AllowedMIMETypes,
		MaxPixelDimension: cfg.MaxPixelDimension,
	})

	log.Printf("Initializing cleanup worker pool (Workers: %d, Queue Size: %d)...", cfg.NumCleanupWorkers, cfg.CleanupQueueSize)
	cleanup := workers.NewFileCleanup(mediaStore, variantDB, cfg.CleanupQueueSize, cfg.NumCleanupWorkers)
	defer cleanup.Stop()
	cleanup.SweepOrphans()

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing menu images in: %s", cfg.MenuImagesPath)
	log.Printf("Max upload size: %d bytes, max pixel dimension: %d", cfg.MaxUploadSize, cfg.MaxPixelDimension)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	categoryHandler := &handlers.CategoryHandler{Repo: repository.NewCategoryRepository(gormDB)}
	menuItemHandler := &handlers.MenuItemHandler{
		Repo:          repository.NewMenuItemRepository(gormDB),
		CategoryRepo:  repository.NewCategoryRepository(gormDB),
		Store:         mediaStore,
		Pipeline:      pipeline,
		Cleanup:       cleanup,
		VariantDB:     variantDB,
		MaxUploadSize: cfg.MaxUploadSize,
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categoryHandler.CreateCategory)
			r.Get("/", categoryHandler.ListCategories)
			r.Route("/{category_identifier}", func(r chi.Router) {
				r.Get("/", categoryHandler.GetCategory)
				r.Put("/", categoryHandler.UpdateCategory)
				r.Delete("/", categoryHandler.DeleteCategory)
			})
		})

		r.Route("/menu-items", func(r chi.Router) {
			r.Post("/", menuItemHandler.CreateMenuItem)
			r.Get("/", menuItemHandler.ListMenuItems)
			r.Route("/{item_identifier}", func(r chi.Router) {
				r.Get("/", menuItemHandler.GetMenuItem)
				r.Put("/", menuItemHandler.UpdateMenuItem)
				r.Delete("/", menuItemHandler.DeleteMenuItem)
				r.Put("/image", menuItemHandler.UploadMenuItemImage)
				r.Get("/image", menuItemHandler.GetMenuItemImage)
				r.Delete("/image", menuItemHandler.DeleteMenuItemImage)
				r.Get("/image/placeholder", menuItemHandler.GetMenuItemPlaceholder)
			})
		})
	})

	menuSubDir := filepath.Base(cfg.MenuImagesPath)
	r.Get(fmt.Sprintf("/media/%s/*", menuSubDir), handlers.AssetServer(cfg.MediaStoragePath, menuSubDir))

	placeholderSubDir := filepath.Base(cfg.PlaceholdersPath)
	r.Get(fmt.Sprintf("/media/%s/*", placeholderSubDir), handlers.AssetServer(cfg.MediaStoragePath, placeholderSubDir))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
