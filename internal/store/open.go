package store

import (
	"fmt"
	"net/url"

	"github.com/septivank/attendance-ingestion-worker/internal/config"
	"github.com/septivank/attendance-ingestion-worker/internal/db"
	"github.com/septivank/attendance-ingestion-worker/internal/mongostore"
	"github.com/septivank/attendance-ingestion-worker/internal/repository"
	"github.com/septivank/attendance-ingestion-worker/internal/store/memstore"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Open picks the store backend from the DATABASE_URL scheme. Connections
// are created once here and closed by lifecycle hooks.
func Open(lc fx.Lifecycle, logger *zap.Logger, cfg config.DatabaseConfig) (Store, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL %s: %w", db.MaskPassword(cfg.URL), err)
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		pool, err := db.NewPool(lc, logger, cfg.URL, cfg.AutoMigrate)
		if err != nil {
			return nil, err
		}
		return repository.NewRepository(pool), nil
	case "mongodb", "mongodb+srv":
		s, err := mongostore.New(lc, logger, cfg.URL, cfg.Name)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		logger.Warn("using in-memory store, nothing will be persisted")
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme %q (want postgres, mongodb or memory)", u.Scheme)
	}
}
