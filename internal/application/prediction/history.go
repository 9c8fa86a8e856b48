package prediction

import (
	"context"
	"errors"
	"time"

	"digital-advisor/internal/domain"

	"gorm.io/gorm"
)

// HistorySource reads the historical dataset.
type HistorySource interface {
	// LatestTimestamp returns the newest data point time; ok is false when the
	// ticker has no data.
	LatestTimestamp(ctx context.Context, ticker string) (ts time.Time, ok bool, err error)
	// LatestPoints returns up to n of the newest points, oldest first.
	LatestPoints(ctx context.Context, ticker string, n int) ([]domain.DataPoint, error)
}

// GormHistory reads the cleaned_dataset table.
type GormHistory struct {
	DB *gorm.DB
}

func (h *GormHistory) LatestTimestamp(ctx context.Context, ticker string) (time.Time, bool, error) {
	var p domain.DataPoint
	err := h.DB.WithContext(ctx).
		Select("company_prefix", "date_value").
		Where("company_prefix = ?", ticker).
		Order("date_value DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return p.Timestamp.UTC(), true, nil
}

func (h *GormHistory) LatestPoints(ctx context.Context, ticker string, n int) ([]domain.DataPoint, error) {
	points := []domain.DataPoint{}
	if err := h.DB.WithContext(ctx).
		Where("company_prefix = ?", ticker).
		Order("date_value DESC").
		Limit(n).
		Find(&points).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}
