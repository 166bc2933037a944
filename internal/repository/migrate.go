package repository

import (
	"embed"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.json
var migrationsFS embed.FS

const migrationsCollection = "schema_migrations"

// RunMigrations applies the embedded index migrations to the given database.
func RunMigrations(mongoURI, database string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	dbURL, err := migrationURL(mongoURI, database)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// migrationURL points the connection string at the target database, which the
// migrate driver reads from the URL path.
func migrationURL(mongoURI, database string) (string, error) {
	u, err := url.Parse(mongoURI)
	if err != nil {
		return "", fmt.Errorf("invalid mongo uri: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return "", fmt.Errorf("invalid mongo uri scheme %q", u.Scheme)
	}

	u.Path = "/" + database
	q := u.Query()
	q.Set("x-migrations-collection", migrationsCollection)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
