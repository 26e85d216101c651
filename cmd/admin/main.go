package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/config"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/logger"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/migrate"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/security"
)

// admin is the operational CLI: goose migrations plus a seed-admin command
// that provisions the first administrator account.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "admin"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "command: up|down|status|seed-admin")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")

	// seed-admin flags
	email := flag.String("email", "", "admin email (for seed-admin)")
	password := flag.String("password", "", "admin password (for seed-admin)")
	name := flag.String("name", "Administrador", "admin display name (for seed-admin)")

	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	switch *cmd {
	case "up", "down", "status":
		sqlDB, err := dbClient.DB().DB()
		requireResource(ctx, logg, "sql database", err)
		if err := migrate.Run(ctx, sqlDB, *dir, *cmd); err != nil {
			fmt.Fprintf(os.Stderr, "goose %s failed: %v\n", *cmd, err)
			os.Exit(1)
		}

	case "seed-admin":
		if *email == "" || *password == "" {
			fmt.Fprintln(os.Stderr, "missing -email or -password for seed-admin")
			os.Exit(1)
		}
		if err := seedAdmin(ctx, dbClient, cfg, *email, *password, *name); err != nil {
			logg.Error(ctx, "failed to seed admin account", err)
			os.Exit(1)
		}
		logg.Info(ctx, "admin account ready")

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}

func seedAdmin(ctx context.Context, dbClient *db.Client, cfg *config.Config, email, password, name string) error {
	repo := accounts.NewRepository(dbClient.DB())

	if existing, err := repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return fmt.Errorf("account already exists for %s", email)
	}

	hash, err := security.HashPassword(password, cfg.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return repo.Create(ctx, &models.Account{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		ClassGroup:   "staff",
		Role:         enums.RoleAdmin,
		LGPDConsent:  true,
		IsActive:     true,
	})
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
