// Package app assembles the storage backend selected by configuration.
package app

import (
	"context"
	"fmt"

	"github.com/icar-directory/backend/internal/config"
	"github.com/icar-directory/backend/internal/db"
	"github.com/icar-directory/backend/internal/repositories"
	"github.com/icar-directory/backend/internal/services"
	"go.uber.org/zap"
)

// Store bundles the repositories of one driver.
type Store struct {
	Driver   string
	Records  services.DirectoryStore
	Ledger   services.Ledger
	Claims   services.ClaimStore
	Taxonomy services.TaxonomyStore
	close    func()
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStore connects to the configured driver and brings its schema up to date.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		conn, err := db.OpenSQLite(cfg.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := db.RunSQLiteMigrations(ctx, conn, log); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return &Store{
			Driver:   config.DriverSQLite,
			Records:  repositories.NewSQLiteRecordRepo(conn),
			Ledger:   repositories.NewSQLiteEditRepo(conn),
			Claims:   repositories.NewSQLiteClaimRepo(conn),
			Taxonomy: repositories.NewSQLiteTaxonomyRepo(conn),
			close:    func() { conn.Close() },
		}, nil

	case config.DriverPostgres, "":
		pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &Store{
			Driver:   config.DriverPostgres,
			Records:  repositories.NewRecordRepo(pool),
			Ledger:   repositories.NewEditRepo(pool),
			Claims:   repositories.NewClaimRepo(pool),
			Taxonomy: repositories.NewTaxonomyRepo(pool),
			close:    pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
