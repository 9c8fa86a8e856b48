// Package dataset loads cleaned historical market data into the
// cleaned_dataset table from CSV exports.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"digital-advisor/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultBatchSize = 500

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Required columns; the macro columns are optional and may be empty.
// The yield column name starts with a digit in the stored schema.
const tenYearColumn = "10_year_treasury_yield"

var required = []string{"company_prefix", "date_value", "open_value", "high_value", "low_value", "close_value", "volume"}

type Importer struct {
	DB        *gorm.DB
	BatchSize int
}

// Import upserts every row of r, keyed by (ticker, timestamp). It returns the
// number of rows written.
func (im *Importer) Import(ctx context.Context, r io.Reader) (int, error) {
	points, err := ParseCSV(r)
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, nil
	}
	size := im.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}
	err = im.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_prefix"}, {Name: "date_value"}},
			UpdateAll: true,
		}).
		CreateInBatches(&points, size).Error
	if err != nil {
		return 0, err
	}
	log.Info().Int("rows", len(points)).Msg("dataset imported")
	return len(points), nil
}

// ParseCSV reads data points from a CSV with a header row naming the
// cleaned_dataset columns. Column order is free; unknown columns are ignored.
// Timestamps without a zone are taken as UTC.
func ParseCSV(r io.Reader) ([]domain.DataPoint, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.InvalidArgument("CSV is empty.")
	}
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, domain.InvalidArgument("CSV is missing column '%s'.", name)
		}
	}

	var out []domain.DataPoint
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		p, err := parseRow(rec, cols)
		if err != nil {
			return nil, domain.InvalidArgument("line %d: %v", line, err)
		}
		out = append(out, p)
	}
}

type rowParser struct {
	rec  []string
	cols map[string]int
	err  error
}

func (r *rowParser) str(name string) string {
	if i, ok := r.cols[name]; ok && i < len(r.rec) {
		return strings.TrimSpace(r.rec[i])
	}
	return ""
}

func (r *rowParser) float(name string) float64 {
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(r.str(name), 64)
	if err != nil {
		r.err = fmt.Errorf("invalid %s %q", name, r.str(name))
	}
	return v
}

// optFloat treats empty and NaN cells as missing.
func (r *rowParser) optFloat(name string) *float64 {
	s := r.str(name)
	if r.err != nil || s == "" || strings.EqualFold(s, "nan") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.err = fmt.Errorf("invalid %s %q", name, s)
		return nil
	}
	return &v
}

func parseRow(rec []string, cols map[string]int) (domain.DataPoint, error) {
	r := &rowParser{rec: rec, cols: cols}
	p := domain.DataPoint{Ticker: strings.ToUpper(r.str("company_prefix"))}
	if p.Ticker == "" {
		return p, errors.New("empty company_prefix")
	}
	ts, err := parseTime(r.str("date_value"))
	if err != nil {
		return p, err
	}
	p.Timestamp = ts

	p.Open = r.float("open_value")
	p.High = r.float("high_value")
	p.Low = r.float("low_value")
	p.Close = r.float(domain.FeatureClose)
	p.Volume = int64(r.float(domain.FeatureVolume))
	p.GDPGrowth = r.optFloat(domain.FeatureGDPGrowth)
	p.CPI = r.optFloat(domain.FeatureCPI)
	p.RetailSales = r.optFloat(domain.FeatureRetailSales)
	p.CrudeOilPrice = r.optFloat(domain.FeatureCrudeOil)
	p.InterestRate = r.optFloat(domain.FeatureInterestRate)
	p.VIX = r.optFloat(domain.FeatureVIX)
	p.TenYearTreasuryYield = r.optFloat(tenYearColumn)
	return p, r.err
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date_value %q", s)
}
