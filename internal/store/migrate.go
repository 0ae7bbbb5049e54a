/**
 * @description
 * This file applies the embedded Goose migrations at startup. Goose needs a
 * database/sql handle, so a short-lived connection is opened through the pgx
 * stdlib driver and closed once the schema is up to date; all regular queries
 * go through the pgx pool directly.
 */
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/subtrack/subtrack-service/migrations"
)

// Migrate brings the database schema up to date.
func Migrate(ctx context.Context, databaseURL string) error {
	goose.SetBaseFS(migrations.Files)
	goose.SetVerbose(false)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	if err := goose.RunContext(ctx, "up", db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
