// Package prediction serves memoised next-minute close predictions. Each
// (ticker, target) key is computed at most once under normal operation and
// never overwritten.
package prediction

import (
	"context"
	"errors"
	"strings"
	"time"

	"digital-advisor/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// Predictor is the opaque model capability.
type Predictor interface {
	Supports(ticker string) bool
	SeqLength() int
	Predict(ctx context.Context, ticker string, features domain.FeatureSet) (float64, error)
}

type Service struct {
	Store     *Store
	History   HistorySource
	Predictor Predictor
	Timeout   time.Duration // bounds history reads and inference; zero means none
	Now       func() time.Time
}

// Result is one answered prediction request.
type Result struct {
	Ticker         string    `json:"ticker"`
	PredictedFor   time.Time `json:"predicted_for"`
	PredictedClose float64   `json:"predicted_close_value"`
	Cached         bool      `json:"cached"`
	Degraded       bool      `json:"degraded,omitempty"`
}

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// nextMinute is the whole minute after now.
func nextMinute(now time.Time) time.Time {
	return now.UTC().Truncate(time.Minute).Add(time.Minute)
}

func (s *Service) checkTicker(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", domain.InvalidArgument("Missing required query parameter: 'ticker'")
	}
	if !s.Predictor.Supports(ticker) {
		return "", domain.InvalidArgument("Company '%s' is not configured for prediction.", ticker)
	}
	return ticker, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// GetOrCompute predicts the minute after the ticker's newest data point. With
// no history the target falls back to the next whole minute and the result is
// flagged degraded.
func (s *Service) GetOrCompute(ctx context.Context, ticker string) (*Result, error) {
	ticker, err := s.checkTicker(ticker)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	latest, ok, err := s.History.LatestTimestamp(ctx, ticker)
	if err != nil {
		return nil, sourceError(err, msgHistory)
	}
	target := latest.Add(time.Minute)
	degraded := !ok
	if degraded {
		target = nextMinute(s.now())
		log.Warn().Str("ticker", ticker).Time("target", target).Msg("no historical data, using current time for prediction target")
	}

	return s.resolve(ctx, ticker, target, degraded, func(ctx context.Context) (domain.FeatureSet, error) {
		seqLength := s.Predictor.SeqLength()
		points, err := s.History.LatestPoints(ctx, ticker, RequiredPoints(seqLength))
		if err != nil {
			return nil, sourceError(err, msgHistory)
		}
		return DeriveFeatures(ticker, points, seqLength)
	})
}

// GetOrComputeFromFeatures predicts the next whole minute from caller-supplied features.
func (s *Service) GetOrComputeFromFeatures(ctx context.Context, ticker string, features domain.FeatureSet) (*Result, error) {
	ticker, err := s.checkTicker(ticker)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.resolve(ctx, ticker, nextMinute(s.now()), false, func(context.Context) (domain.FeatureSet, error) {
		return features, nil
	})
}

func (s *Service) resolve(ctx context.Context, ticker string, target time.Time, degraded bool, load func(context.Context) (domain.FeatureSet, error)) (*Result, error) {
	target = target.UTC()
	logger := log.With().Str("ticker", ticker).Time("target", target).Logger()

	cached, err := s.Store.Get(ctx, ticker, target)
	if err != nil {
		// An unreachable cache does not block prediction.
		logger.Error().Err(err).Msg("prediction cache lookup failed, regenerating")
	}
	if cached != nil {
		logger.Info().Msg("prediction cache hit")
		return &Result{Ticker: ticker, PredictedFor: target, PredictedClose: cached.PredictedPrice, Cached: true, Degraded: degraded}, nil
	}
	logger.Info().Msg("prediction cache miss")

	features, err := load(ctx)
	if err != nil {
		return nil, err
	}
	value, err := s.Predictor.Predict(ctx, ticker, features)
	if err != nil {
		return nil, sourceError(err, msgModel)
	}

	meta := datatypes.JSONMap{
		"seq_length": s.Predictor.SeqLength(),
		"degraded":   degraded,
	}
	p := &domain.Prediction{Ticker: ticker, Timestamp: target, PredictedPrice: value, Meta: meta}
	created, err := s.Store.Save(context.WithoutCancel(ctx), p)
	switch {
	case err != nil:
		logger.Error().Err(err).Msg("failed to save generated prediction")
	case !created:
		// Lost the insert race; answer with the stored value so every caller agrees.
		if winner, gerr := s.Store.Get(context.WithoutCancel(ctx), ticker, target); gerr == nil && winner != nil {
			value = winner.PredictedPrice
		}
		logger.Info().Msg("prediction already cached by a concurrent request")
	default:
		logger.Info().Float64("predicted_close", value).Msg("prediction saved")
	}

	return &Result{Ticker: ticker, PredictedFor: target, PredictedClose: value, Degraded: degraded}, nil
}

// LatestPredictions lists cached predictions for ticker, newest target first.
func (s *Service) LatestPredictions(ctx context.Context, ticker string, limit int) ([]domain.Prediction, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, domain.InvalidArgument("Missing required query parameter: 'ticker'")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.Store.Latest(ctx, ticker, limit)
}

const (
	msgHistory = "Historical data is temporarily unavailable."
	msgModel   = "Prediction model is temporarily unavailable."
)

// sourceError reports collaborator failures, deadlines included, as a
// retryable Unavailable.
func sourceError(err error, msg string) error {
	if domain.IsDomainError(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.Unavailable(err, "Prediction timed out. Please try again.")
	}
	return domain.Unavailable(err, msg)
}
