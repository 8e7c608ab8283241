package main

import (
	"context"
	"database/sql"
	"fmt"

	"cake-tracker/internal/config"
	"cake-tracker/internal/database"
	"cake-tracker/internal/events"
	"cake-tracker/internal/logger"
	"cake-tracker/internal/repository"

	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	l, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "cake-tracker")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}

// openRepository 优先使用 Postgres；DB 禁用或连接失败时退回内存 repo
func openRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.IncidentsRepository, func()) {
	if cfg.DBEnabled {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err == nil {
			log.Info("DB enabled for cake-tracker", zap.String("db", cfg.Database.Database))
			return repository.NewPostgresIncidentsRepository(db), func() { _ = db.Close() }
		}
		log.Warn("DB enabled but connection failed, falling back to memory repository", zap.Error(err))
	}
	return repository.NewMemoryIncidentsRepo(), func() {}
}

// openPublisher builds the configured event sinks. Sinks that fail to
// connect are skipped.
func openPublisher(cfg *config.Config, log *zap.Logger) (events.Publisher, func()) {
	var (
		pubs    events.MultiPublisher
		closers []func()
	)

	if cfg.Redis.Enabled {
		client := events.NewRedisClient(&cfg.Redis)
		pubs = append(pubs, events.NewRedisStreamPublisher(client, cfg.Redis.Stream))
		closers = append(closers, func() { _ = client.Close() })
		log.Info("Publishing incident events to Redis stream", zap.String("stream", cfg.Redis.Stream))
	}

	if cfg.MQTT.Enabled {
		client, err := events.ConnectMQTT(&cfg.MQTT)
		if err != nil {
			log.Warn("MQTT connect failed, incident events will not be published to MQTT", zap.Error(err))
		} else {
			pubs = append(pubs, events.NewMQTTPublisher(client, cfg.MQTT.Topic, cfg.MQTT.QoS))
			closers = append(closers, func() { client.Disconnect(250) })
			log.Info("Publishing incident events to MQTT", zap.String("topic", cfg.MQTT.Topic))
		}
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if len(pubs) == 0 {
		return events.NopPublisher{}, closeAll
	}
	return pubs, closeAll
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if !cfg.DBEnabled {
		return nil, fmt.Errorf("database is disabled (DB_ENABLED=false)")
	}
	return database.NewPostgresDB(ctx, &cfg.Database)
}
