package storage

import (
	"context"
	"path/filepath"

	"seatmap-scraper/config"
	"seatmap-scraper/utils"
)

// OpenSinks builds the file sinks plus every optional sink that is configured.
// An optional sink that cannot connect is skipped with an error log.
func OpenSinks(ctx context.Context, cfg *config.Config, logger *utils.Logger) *MultiSink {
	sinks := NewMultiSink(logger,
		NewJSONWriter(cfg.OutputDir, logger),
		NewCSVWriter(filepath.Join(cfg.OutputDir, "seats.csv"), logger),
	)

	if cfg.DatabaseURL != "" {
		pg, err := NewPostgresWriter(ctx, cfg.DatabaseURL, cfg.MaxRetries, logger)
		if err != nil {
			logger.Error("Cannot connect to PostgreSQL: %v", err)
		} else if err := pg.CreateTables(ctx); err != nil {
			logger.Error("Failed to create DB tables: %v", err)
			_ = pg.Close()
		} else {
			sinks.Add(pg)
		}
	}

	if cfg.RedisAddr != "" {
		rw, err := NewRedisWriter(ctx, cfg.RedisAddr, cfg.RedisTTL, logger)
		if err != nil {
			logger.Error("Cannot connect to Redis: %v", err)
		} else {
			sinks.Add(rw)
		}
	}

	if cfg.AMQPURL != "" {
		pub, err := NewAMQPPublisher(cfg.AMQPURL, logger)
		if err != nil {
			logger.Error("Cannot connect to RabbitMQ: %v", err)
		} else {
			sinks.Add(pub)
		}
	}

	logger.Info("Saving results to %d sinks", sinks.Len())
	return sinks
}
