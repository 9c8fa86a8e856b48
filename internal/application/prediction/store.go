package prediction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"digital-advisor/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the prediction cache: an optional Redis tier in front of the
// predictions table, which is authoritative.
type Store struct {
	DB    *gorm.DB
	Redis *redis.Client // nil disables the hot tier
	TTL   time.Duration
}

func cacheKey(ticker string, target time.Time) string {
	return fmt.Sprintf("prediction:%s:%d", ticker, target.Unix())
}

// Get returns the cached prediction for (ticker, target), or nil when none exists.
func (s *Store) Get(ctx context.Context, ticker string, target time.Time) (*domain.Prediction, error) {
	target = target.UTC()
	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, cacheKey(ticker, target)).Result()
		switch {
		case err == nil:
			if price, perr := strconv.ParseFloat(val, 64); perr == nil {
				return &domain.Prediction{Ticker: ticker, Timestamp: target, PredictedPrice: price}, nil
			}
		case !errors.Is(err, redis.Nil):
			log.Warn().Err(err).Str("ticker", ticker).Msg("prediction hot cache read failed")
		}
	}

	var p domain.Prediction
	err := s.DB.WithContext(ctx).
		Where("ticker = ? AND timestamp = ?", ticker, target).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.warm(ctx, &p)
	return &p, nil
}

// Save inserts p unless a row for its key already exists. It reports whether
// this call created the row; the first writer wins.
func (s *Store) Save(ctx context.Context, p *domain.Prediction) (bool, error) {
	p.Timestamp = p.Timestamp.UTC()
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}, {Name: "timestamp"}},
			DoNothing: true,
		}).
		Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.warm(ctx, p)
	return true, nil
}

// Latest returns up to limit predictions for ticker, newest target first.
func (s *Store) Latest(ctx context.Context, ticker string, limit int) ([]domain.Prediction, error) {
	out := []domain.Prediction{}
	err := s.DB.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("timestamp DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *Store) warm(ctx context.Context, p *domain.Prediction) {
	if s.Redis == nil {
		return
	}
	val := strconv.FormatFloat(p.PredictedPrice, 'g', -1, 64)
	if err := s.Redis.SetNX(ctx, cacheKey(p.Ticker, p.Timestamp), val, s.TTL).Err(); err != nil {
		log.Warn().Err(err).Str("ticker", p.Ticker).Msg("prediction hot cache write failed")
	}
}
