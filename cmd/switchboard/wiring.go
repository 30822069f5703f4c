package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/botarmy/switchboard/internal/config"
	"github.com/botarmy/switchboard/internal/logging"
	"github.com/botarmy/switchboard/pkg/adapters/export"
	"github.com/botarmy/switchboard/pkg/adapters/file"
	"github.com/botarmy/switchboard/pkg/adapters/memory"
	"github.com/botarmy/switchboard/pkg/adapters/redis"
	"github.com/botarmy/switchboard/pkg/content"
	"github.com/botarmy/switchboard/pkg/persistence/middleware"
	"github.com/botarmy/switchboard/pkg/ports"
)

func newLogger(cfg config.Config) *slog.Logger {
	return newLoggerTo(os.Stderr, cfg)
}

func newLoggerTo(w io.Writer, cfg config.Config) *slog.Logger {
	return logging.NewWithWriter(w, logging.ParseLevel(cfg.Log.Level), cfg.Log.JSON)
}

func loadContent(cfg config.Config) (*content.Content, error) {
	if cfg.Content.Path == "" {
		return content.Default()
	}
	return content.Load(cfg.Content.Path)
}

const lockPrefix = "switchboard:"

// storage is the configured session store plus what only the redis driver provides.
type storage struct {
	store  ports.SessionStore
	locker ports.DistributedLocker
	health func(ctx context.Context) error
	close  func() error
}

func openStorage(cfg config.Config) (*storage, error) {
	mws, err := storeMiddleware(cfg.Session)
	if err != nil {
		return nil, err
	}

	st := &storage{close: func() error { return nil }}
	var base ports.SessionStore
	switch cfg.Store.Driver {
	case config.DriverFile:
		base = file.New(cfg.Store.Path)
	case config.DriverRedis:
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Session.TTL),
		)
		base = rs
		st.locker = redis.NewLocker(rs.Client(), lockPrefix)
		st.health = rs.Ping
		st.close = rs.Close
	default:
		base = memory.NewStore()
	}

	st.store = middleware.Chain(base, mws...)
	return st, nil
}

// storeMiddleware is resolved before any store is opened, so a bad key or
// pattern leaves nothing to close.
func storeMiddleware(cfg config.SessionConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.RedactFields) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.RedactFields)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	key, err := cfg.Key()
	if err != nil {
		return nil, err
	}
	if key != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, fmt.Errorf("session encryption: %w", err)
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

func newExporter(cfg config.Config, logger *slog.Logger) ports.Exporter {
	exporters := export.Multi{export.Log{Logger: logger}}
	if cfg.Export.WebhookURL != "" {
		exporters = append(exporters, &export.Webhook{URL: cfg.Export.WebhookURL})
	}
	return exporters
}
