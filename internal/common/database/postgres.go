package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bulkbuddy-workers/internal/common/config"

	_ "github.com/lib/pq"
)

type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// schema is applied at startup. Nutrition columns on recipes are per 100 g.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id               TEXT PRIMARY KEY,
		email            TEXT NOT NULL UNIQUE,
		phone            TEXT,
		age              INTEGER,
		weight_kg        DOUBLE PRECISION,
		height_cm        DOUBLE PRECISION,
		sex              TEXT,
		body_fat_percent DOUBLE PRECISION,
		activity_level   TEXT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id             TEXT PRIMARY KEY,
		title          TEXT NOT NULL,
		source         TEXT,
		serving_grams  DOUBLE PRECISION NOT NULL DEFAULT 100,
		calories       DOUBLE PRECISION NOT NULL DEFAULT 0,
		protein        DOUBLE PRECISION NOT NULL DEFAULT 0,
		fat            DOUBLE PRECISION NOT NULL DEFAULT 0,
		carbs          DOUBLE PRECISION NOT NULL DEFAULT 0,
		sugar          DOUBLE PRECISION NOT NULL DEFAULT 0,
		fiber          DOUBLE PRECISION NOT NULL DEFAULT 0,
		sodium         DOUBLE PRECISION NOT NULL DEFAULT 0,
		micronutrients JSONB
	)`,
	`CREATE TABLE IF NOT EXISTS meal_plans (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL REFERENCES users(id),
		name            TEXT NOT NULL,
		target_calories DOUBLE PRECISION NOT NULL,
		summary         JSONB,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS meal_plan_items (
		meal_plan_id  TEXT NOT NULL REFERENCES meal_plans(id) ON DELETE CASCADE,
		slot          TEXT NOT NULL,
		recipe_id     TEXT NOT NULL REFERENCES recipes(id),
		serving_grams DOUBLE PRECISION NOT NULL,
		position      INTEGER NOT NULL,
		PRIMARY KEY (meal_plan_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id         BIGSERIAL PRIMARY KEY,
		entity     TEXT NOT NULL,
		entity_id  TEXT NOT NULL,
		action     TEXT NOT NULL,
		payload    JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables the workers read and write.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
