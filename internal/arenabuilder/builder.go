// Package arenabuilder wires configuration into the runtime pieces the
// arena binary needs: engine catalog, strategy registry, archive
// repository, live store and watch server.
package arenabuilder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/thearst3rd/chess-tournament/internal/archive"
	"github.com/thearst3rd/chess-tournament/internal/config"
	"github.com/thearst3rd/chess-tournament/internal/engine"
	"github.com/thearst3rd/chess-tournament/internal/obslog"
	"github.com/thearst3rd/chess-tournament/internal/strategy"
	"github.com/thearst3rd/chess-tournament/internal/watch"
)

const connectTimeout = 5 * time.Second

type Deps struct {
	Catalog  map[string]engine.Spec
	Registry *strategy.Registry
	Repo     archive.Repository
	Live     *archive.LiveStore // nil without redis
	Hub      *watch.Hub
	Server   *watch.Server

	db  *sql.DB
	rdb *redis.Client
}

func New(cfg *config.AppConfig, seed int64) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	catalog, err := config.LoadCatalog(cfg.EnginesFile)
	if err != nil {
		return nil, err
	}

	d := &Deps{
		Catalog:  catalog,
		Registry: strategy.NewRegistry(catalog, seed),
		Hub:      watch.NewHub(),
	}

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		repo, err := archive.NewPostgresRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init archive schema: %w", err)
		}
		d.db = db
		d.Repo = repo
		obslog.L().Info("archive backend: postgres")
	} else {
		d.Repo = archive.NewMemoryRepository()
		obslog.L().Info("archive backend: in-memory (ARENA_DATABASE_URL unset)")
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			d.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		d.rdb = rdb
		d.Live = archive.NewLiveStore(rdb, cfg.LiveTTL)
		obslog.L().Info("live store: redis")
	}

	d.Server = watch.NewServer(d.Repo, d.Live, d.Hub)
	return d, nil
}

func (d *Deps) Close() {
	if d.rdb != nil {
		if err := d.rdb.Close(); err != nil {
			obslog.L().Warn("redis close failed", zap.Error(err))
		}
		d.rdb = nil
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			obslog.L().Warn("postgres close failed", zap.Error(err))
		}
		d.db = nil
	}
}
