package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jhoicas/Trazabilidad-api/pkg/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate aplica las migraciones embebidas pendientes. No-op si el esquema
// ya está al día.
func Migrate(cfg config.DBConfig) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(cfg))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// migrateURL adapta el DSN al esquema pgx5:// que espera golang-migrate.
func migrateURL(cfg config.DBConfig) string {
	dsn := cfg.ConnectionString()
	if len(dsn) >= len("postgres://") && dsn[:len("postgres://")] == "postgres://" {
		return "pgx5://" + dsn[len("postgres://"):]
	}
	if len(dsn) >= len("postgresql://") && dsn[:len("postgresql://")] == "postgresql://" {
		return "pgx5://" + dsn[len("postgresql://"):]
	}
	return dsn
}
