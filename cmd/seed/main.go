package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/santapan/api/internal/auth"
	"github.com/santapan/api/internal/config"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/enum"
	"github.com/santapan/api/internal/logger"
	"go.uber.org/zap"
)

type demoFood struct {
	category string
	name     string
	price    string
	stock    int32
	minStock int32
}

var demoCategories = []struct {
	name        string
	description string
}{
	{"Nasi", "Rice dishes"},
	{"Mie", "Noodle dishes"},
	{"Minuman", "Drinks"},
}

var demoFoods = []demoFood{
	{"Nasi", "Nasi Goreng Spesial", "25000.00", 40, 5},
	{"Nasi", "Nasi Bakar Ayam", "28000.00", 30, 5},
	{"Mie", "Mie Ayam Bakso", "22000.00", 25, 5},
	{"Mie", "Kwetiau Goreng", "24000.00", 20, 3},
	{"Minuman", "Es Teh Manis", "6000.00", 100, 10},
	{"Minuman", "Es Jeruk", "8000.00", 80, 10},
}

func main() {
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	name := flag.String("name", "", "Admin full name")
	withFoods := flag.Bool("foods", true, "Seed demo categories and foods")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	*email = firstNonEmpty(*email, os.Getenv("SEED_EMAIL"), "admin@santapan.local")
	*name = firstNonEmpty(*name, os.Getenv("SEED_NAME"), "Admin Santapan")
	*password = firstNonEmpty(*password, os.Getenv("SEED_PASSWORD"))
	if *password == "" {
		if cfg.IsProduction() {
			log.Fatal("SEED_PASSWORD is required in production")
		}
		*password = "password123"
		log.Warn("using default admin password 'password123', change it immediately")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.DatabaseURL, 2, 1)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()

	// Admin and catalog land together or not at all.
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal("begin transaction", zap.Error(err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	adminID, err := seedAdmin(ctx, tx, log, *email, *password, *name)
	if err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}

	if *withFoods {
		if err := seedCatalog(ctx, tx, log); err != nil {
			log.Fatal("seed catalog", zap.Error(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal("commit", zap.Error(err))
	}
	log.Info("seed completed", zap.String("admin_id", adminID.String()))
}

// seedAdmin creates the admin user unless the email is already taken.
func seedAdmin(ctx context.Context, tx pgx.Tx, log *zap.Logger, email, password, fullName string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if err == nil {
		log.Info("admin already exists, skipping", zap.String("email", email), zap.String("id", id.String()))
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("check user: %w", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return uuid.Nil, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, hashed_password, full_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, email, hashed, fullName, enum.UserRoleAdmin).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}
	log.Info("created admin", zap.String("email", email), zap.String("id", id.String()))
	return id, nil
}

// seedCatalog inserts the demo categories and foods that are missing.
// Existing rows keep their stock.
func seedCatalog(ctx context.Context, tx pgx.Tx, log *zap.Logger) error {
	categoryIDs := make(map[string]uuid.UUID, len(demoCategories))
	for _, c := range demoCategories {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO categories (name, description)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, c.name, c.description).Scan(&id)
		if err != nil {
			return fmt.Errorf("upsert category %q: %w", c.name, err)
		}
		categoryIDs[c.name] = id
	}

	created := 0
	for _, f := range demoFoods {
		tag, err := tx.Exec(ctx, `
			INSERT INTO foods (category_id, name, price, stock, min_stock)
			SELECT $1, $2, $3::numeric, $4, $5
			WHERE NOT EXISTS (SELECT 1 FROM foods WHERE category_id = $1 AND name = $2)
		`, categoryIDs[f.category], f.name, f.price, f.stock, f.minStock)
		if err != nil {
			return fmt.Errorf("insert food %q: %w", f.name, err)
		}
		created += int(tag.RowsAffected())
	}
	log.Info("catalog seeded", zap.Int("categories", len(demoCategories)), zap.Int("foods_created", created))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
