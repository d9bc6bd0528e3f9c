package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/filetype"
	"docvault/internal/handler"
	"docvault/internal/middleware"
	"docvault/internal/repository/postgres"
	"docvault/internal/service"
	"docvault/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"storage_root", cfg.StorageRoot,
	)

	// Token issuance is local HS256 unless an external JWKS endpoint is
	// configured, in which case an SSO gateway owns identity.
	tokenManager, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, logger)
	if err != nil {
		log.Fatalf("Failed to create token manager: %v", err)
	}

	var verifier auth.TokenVerifier = tokenManager
	if cfg.JWKSURL != "" {
		verifier, err = auth.NewJWKSVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWKS verifier: %v", err)
		}
		logger.Info("external token verification enabled")
	}
	defer verifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	groupRepo := postgres.NewGroupRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	fileRepo := postgres.NewFileRepository(repoConfig)
	userRepo := postgres.NewUserRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Physical storage and the filetype registry
	store := storage.New(cfg.StorageRoot)

	typeRegistry, err := filetype.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load filetype registry: %v", err)
	}

	// Create services
	userService := service.NewUserService(userRepo, groupRepo, tokenManager, logger)
	groupService := service.NewGroupService(groupRepo, folderRepo, fileRepo, userRepo, txManager, store, logger)
	folderService := service.NewFolderService(folderRepo, fileRepo, groupRepo, store, logger)
	fileService := service.NewFileService(fileRepo, folderRepo, groupRepo, userRepo, store, typeRegistry, logger)
	favoriteService := service.NewFavoriteService(userRepo, fileRepo, folderRepo, logger)

	// Create handlers
	authHandler := handler.NewAuthHandler(userService, logger)
	groupHandler := handler.NewGroupHandler(groupService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	fileHandler := handler.NewFileHandler(fileService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", authHandler.HealthCheck)

	// Auth routes
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)

	// Group routes
	mux.HandleFunc("GET /api/groups", groupHandler.ListGroups)
	mux.HandleFunc("POST /api/groups", groupHandler.CreateGroup)
	mux.HandleFunc("PATCH /api/groups/{id}", groupHandler.RenameGroup)
	mux.HandleFunc("POST /api/groups/{id}/archive", groupHandler.ArchiveGroup)
	mux.HandleFunc("POST /api/groups/{id}/restore", groupHandler.RestoreGroup)
	mux.HandleFunc("GET /api/groups/{id}/contents", folderHandler.ListDirectory)
	mux.HandleFunc("GET /api/groups/{id}/download", fileHandler.DownloadFolderZip)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("POST /api/folders/{id}/archive", folderHandler.ArchiveFolder)
	mux.HandleFunc("POST /api/folders/{id}/restore", folderHandler.RestoreFolder)
	mux.HandleFunc("PUT /api/folders/{id}/permissions", folderHandler.SetPermissions)

	// File routes
	mux.HandleFunc("GET /api/files", fileHandler.ListFiles)
	mux.HandleFunc("POST /api/files/upload", fileHandler.Upload)
	mux.HandleFunc("GET /api/files/{id}/download", fileHandler.Download)
	mux.HandleFunc("POST /api/files/{id}/archive", fileHandler.ArchiveFile)
	mux.HandleFunc("POST /api/files/{id}/restore", fileHandler.RestoreFile)
	mux.HandleFunc("PUT /api/files/{id}/permissions", fileHandler.SetPermissions)

	// Archived overview
	mux.HandleFunc("GET /api/archived", fileHandler.ListArchivedItems)

	// User routes
	mux.HandleFunc("GET /api/users", userHandler.ListUsers)
	mux.HandleFunc("POST /api/users", userHandler.CreateUser)
	mux.HandleFunc("GET /api/users/me/groups", userHandler.MyGroups)
	mux.HandleFunc("PATCH /api/users/{id}", userHandler.UpdateUser)
	mux.HandleFunc("PUT /api/users/{id}/permissions", userHandler.UpdatePermissions)
	mux.HandleFunc("POST /api/users/{id}/groups", userHandler.AddGroups)
	mux.HandleFunc("POST /api/users/{id}/archive", userHandler.ArchiveUser)
	mux.HandleFunc("POST /api/users/{id}/restore", userHandler.RestoreUser)

	// Favorites routes
	mux.HandleFunc("GET /api/favorites", favoriteHandler.List)
	mux.HandleFunc("POST /api/favorites/toggle", favoriteHandler.Toggle)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	h = middleware.Auth(verifier, userRepo)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // large downloads
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
