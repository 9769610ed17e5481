package migrate

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

// The game server owns these schemas in production. The embedded scripts
// recreate them for local development and integration environments only.
//
//go:embed sql/*.sql
var scripts embed.FS

// Up applies the bundled game schema to the database at url.
func Up(url string, logger zerolog.Logger) error {
	src, err := iofs.New(scripts, "sql")
	if err != nil {
		return fmt.Errorf("open schema scripts: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, driverURL(url))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	version, dirty, _ := m.Version()
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("game schema bootstrapped")
	return nil
}

// driverURL rewrites a postgres:// DSN to the scheme registered by the pgx/v5
// migrate driver.
func driverURL(url string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(url, prefix) {
			return "pgx5://" + strings.TrimPrefix(url, prefix)
		}
	}
	return url
}
