package prediction

import (
	"math"

	"digital-advisor/internal/domain"
)

// Rolling windows used by the derived features.
const (
	shortWindow      = 10
	longWindow       = 30
	lookbackMargin   = 5
	volatilityWindow = shortWindow
)

// RequiredPoints is how many raw points a derivation of seqLength needs.
func RequiredPoints(seqLength int) int {
	return seqLength + longWindow + lookbackMargin
}

// DeriveFeatures computes moving averages and volatility over oldest-first
// points, drops rows with any missing value and returns the last seqLength
// rows of every model feature.
func DeriveFeatures(ticker string, points []domain.DataPoint, seqLength int) (domain.FeatureSet, error) {
	need := RequiredPoints(seqLength)
	if len(points) < need {
		return nil, domain.InsufficientData(
			"Not enough historical data for %s. Need at least %d data points, got %d.", ticker, need, len(points))
	}

	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	ma10 := rollingMean(closes, shortWindow)
	ma30 := rollingMean(closes, longWindow)
	vol := rollingStd(closes, volatilityWindow)

	clean := make([][]float64, 0, len(points))
	for i, p := range points {
		row := []float64{
			p.Close,
			float64(p.Volume),
			ma10[i],
			ma30[i],
			vol[i],
			orNaN(p.GDPGrowth),
			orNaN(p.CPI),
			orNaN(p.RetailSales),
			orNaN(p.CrudeOilPrice),
			orNaN(p.InterestRate),
			orNaN(p.VIX),
			orNaN(p.TenYearTreasuryYield),
		}
		if hasNaN(row) {
			continue
		}
		clean = append(clean, row)
	}
	if len(clean) < seqLength {
		return nil, domain.InsufficientData(
			"Not enough clean historical data after feature engineering for %s. Need %d data points, got %d.",
			ticker, seqLength, len(clean))
	}

	window := clean[len(clean)-seqLength:]
	out := make(domain.FeatureSet, len(domain.FeatureNames))
	for j, name := range domain.FeatureNames {
		col := make([]float64, seqLength)
		for i, row := range window {
			col[i] = row[j]
		}
		out[name] = col
	}
	return out, nil
}

// rollingMean is NaN until a full window is available.
func rollingMean(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	var sum float64
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}

// rollingStd is the sample standard deviation (n-1) over each full window.
func rollingStd(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		w := xs[i-window+1 : i+1]
		var mean float64
		for _, x := range w {
			mean += x
		}
		mean /= float64(window)
		var ss float64
		for _, x := range w {
			ss += (x - mean) * (x - mean)
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func hasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
