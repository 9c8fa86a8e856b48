package prices

import (
	"context"
	"strings"

	"digital-advisor/internal/domain"

	"gorm.io/gorm"
)

// Service answers latest-close queries over the historical dataset.
type Service struct {
	DB *gorm.DB
}

type latestRow struct {
	Ticker string  `gorm:"column:company_prefix"`
	Close  float64 `gorm:"column:close_value"`
}

// LatestPrices maps each ticker to the close of its most recent data point.
// Tickers with no data are absent from the result.
func (s *Service) LatestPrices(ctx context.Context, tickers []string) (map[string]float64, error) {
	wanted := normalize(tickers)
	out := make(map[string]float64, len(wanted))
	if len(wanted) == 0 {
		return out, nil
	}

	db := s.DB.WithContext(ctx)
	latest := db.Model(&domain.DataPoint{}).
		Select("company_prefix, MAX(date_value) AS latest_date").
		Where("company_prefix IN ?", wanted).
		Group("company_prefix")

	var rows []latestRow
	if err := db.Table("cleaned_dataset AS d").
		Select("d.company_prefix, d.close_value").
		Joins("JOIN (?) AS l ON d.company_prefix = l.company_prefix AND d.date_value = l.latest_date", latest).
		Scan(&rows).Error; err != nil {
		return nil, domain.Unavailable(err, "Price data is temporarily unavailable.")
	}
	for _, r := range rows {
		out[r.Ticker] = r.Close
	}
	return out, nil
}

// LatestPrice returns the latest close for one ticker; ok is false when the
// dataset has no rows for it.
func (s *Service) LatestPrice(ctx context.Context, ticker string) (price float64, ok bool, err error) {
	m, err := s.LatestPrices(ctx, []string{ticker})
	if err != nil {
		return 0, false, err
	}
	price, ok = m[strings.ToUpper(strings.TrimSpace(ticker))]
	return price, ok, nil
}

func normalize(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
