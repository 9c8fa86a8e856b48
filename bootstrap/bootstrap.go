// Package bootstrap opens the stores and clients shared by the API server
// and the admin CLI.
package bootstrap

import (
	"errors"

	"digital-advisor/internal/application/prediction"
	"digital-advisor/internal/application/prices"
	"digital-advisor/internal/config"
	"digital-advisor/internal/infrastructure/database"
	"digital-advisor/internal/infrastructure/predictor"
	"digital-advisor/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Deps are the long-lived clients behind the app. Redis is nil when REDIS_URL is unset.
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Model      *predictor.Client
	Prediction *prediction.Service
	Prices     *prices.Service
}

// Open connects the database and optional Redis, migrates the schema and
// builds the services shared by the API and the admin CLI.
func Open(cfg *config.Config) (*Deps, error) {
	logger.Init(cfg.Env, cfg.LogLevel)

	db, err := database.Open(cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rdb = redis.NewClient(opt)
	} else {
		log.Warn().Msg("REDIS_URL not set: prediction hot cache, token revocation and traffic stats disabled")
	}

	pc := cfg.Prediction
	model := predictor.NewClient(pc.ModelServerURL, predictor.WithRateLimit(pc.ModelRateLimit))
	registry := predictor.NewRegistry(pc.ArtifactDir, pc.SeqLength, pc.PlainTickers, pc.PCATickers)

	return &Deps{
		DB:    db,
		Redis: rdb,
		Model: model,
		Prediction: &prediction.Service{
			Store:     &prediction.Store{DB: db, Redis: rdb, TTL: pc.CacheTTL},
			History:   &prediction.GormHistory{DB: db},
			Predictor: predictor.New(registry, model),
			Timeout:   pc.Timeout,
		},
		Prices: &prices.Service{DB: db},
	}, nil
}

// Close releases the database and Redis connections.
func (d *Deps) Close() error {
	var errs []error
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}
