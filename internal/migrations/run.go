// Package migrations применяет SQL-миграции схемы через golang-migrate.
package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirty — предыдущая миграция прервана, схема требует ручного вмешательства.
var ErrDirty = errors.New("schema is dirty")

// Run поднимает схему до последней версии из каталога path и возвращает её номер.
// Закрывать migrate.Migrate нельзя: драйвер закроет переданный db.
func Run(db *sql.DB, path string, log *slog.Logger) (uint, error) {
	const op = "migrations.Run"
	driver, err := pgxv5.WithInstance(db, &pgxv5.Config{})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+path, "pgx_v5", driver)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if _, dirty, verErr := m.Version(); verErr == nil && dirty {
		return 0, fmt.Errorf("%s: %w", op, ErrDirty)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return 0, fmt.Errorf("%s: %w", op, upErr)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("schema is up to date",
		slog.Uint64("version", uint64(version)),
		slog.Bool("applied", upErr == nil),
	)
	return version, nil
}
