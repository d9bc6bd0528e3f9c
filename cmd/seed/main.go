package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/repository/postgres"
	"docvault/internal/service"
	"docvault/internal/storage"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed accounts or groups")
	adminUser := flag.String("admin-user", "admin", "Username for the bootstrap superadmin")
	adminPass := flag.String("admin-pass", "", "Password for the bootstrap superadmin (required unless --schema-only)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *adminPass == "" {
		log.Fatalf("🚫 --admin-pass is required when seeding accounts")
	}

	// Create repositories and services
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
	store := storage.New(cfg.StorageRoot)

	groupService := service.NewGroupService(groupRepo, folderRepo, fileRepo, userRepo, txManager, store, logger)

	// Bootstrap superadmin
	hash, err := auth.HashPassword(*adminPass)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin, err := userRepo.GetByUsername(ctx, *adminUser)
	switch {
	case err == nil:
		log.Printf("✅ Superadmin '%s' already exists (ID: %s)", admin.Username, admin.ID)
	case errors.Is(err, domain.ErrNotFound):
		admin = &models.User{
			Username:     *adminUser,
			PasswordHash: hash,
			Role:         models.RoleSuperadmin,
			GroupIDs:     []string{},
			CanUpload:    true,
			CanDownload:  true,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			log.Fatalf("Failed to create superadmin: %v", err)
		}
		log.Printf("✅ Created superadmin '%s' (ID: %s)", admin.Username, admin.ID)
	default:
		log.Fatalf("Failed to look up superadmin: %v", err)
	}

	// Seed a demo group so the first login has somewhere to upload
	principal := models.PrincipalFromUser(admin)
	group, err := groupService.CreateGroup(ctx, principal, "General")
	if err != nil {
		var conflictErr *domain.ConflictError
		if errors.As(err, &conflictErr) {
			log.Println("✅ Demo group 'General' already exists")
		} else {
			log.Fatalf("Failed to create demo group: %v", err)
		}
	} else {
		log.Printf("✅ Created demo group 'General' (ID: %s)", group.ID)
	}

	log.Println("🎉 Seeding complete!")
}

// dropAllTables drops the repository tables in dependency order.
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	for _, table := range []string{tables.Files, tables.Folders, tables.Users, tables.Groups} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}
