package predictor

import (
	"fmt"

	"digital-advisor/internal/domain"
)

// Variant selects how a ticker's inputs are prepared for its model.
type Variant string

const (
	VariantScaled Variant = "scaled" // min-max scaled features
	VariantPCA    Variant = "pca"    // min-max scaled, then projected onto principal components
)

// Preprocessor turns raw features into model input and model output back
// into a close price.
type Preprocessor interface {
	PrepareInputSequence(features domain.FeatureSet) ([][]float64, error)
	InverseTransformPrediction(output []float64) (float64, error)
}

// minMaxScaler mirrors a fitted sklearn MinMaxScaler: x*scale + min per column.
type minMaxScaler struct {
	Min   []float64 `json:"min"`
	Scale []float64 `json:"scale"`
}

func (s *minMaxScaler) validate(width int) error {
	if len(s.Min) != width || len(s.Scale) != width {
		return fmt.Errorf("scaler expects %d columns, has min=%d scale=%d", width, len(s.Min), len(s.Scale))
	}
	for i, v := range s.Scale {
		if v == 0 {
			return fmt.Errorf("scaler column %d has zero scale", i)
		}
	}
	return nil
}

func (s *minMaxScaler) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = v*s.Scale[i] + s.Min[i]
	}
	return out
}

func (s *minMaxScaler) inverse(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = (v - s.Min[i]) / s.Scale[i]
	}
	return out
}

// pca mirrors a fitted sklearn PCA without whitening.
type pca struct {
	Mean       []float64   `json:"mean"`
	Components [][]float64 `json:"components"`
}

func (p *pca) validate(width int) error {
	if len(p.Mean) != width {
		return fmt.Errorf("pca mean has %d columns, want %d", len(p.Mean), width)
	}
	if len(p.Components) == 0 {
		return fmt.Errorf("pca has no components")
	}
	for i, c := range p.Components {
		if len(c) != width {
			return fmt.Errorf("pca component %d has %d columns, want %d", i, len(c), width)
		}
	}
	return nil
}

// transform projects (x - mean) onto each component.
func (p *pca) transform(row []float64) []float64 {
	out := make([]float64, len(p.Components))
	for k, comp := range p.Components {
		var sum float64
		for i, v := range row {
			sum += (v - p.Mean[i]) * comp[i]
		}
		out[k] = sum
	}
	return out
}

// inverse reconstructs y·C + mean.
func (p *pca) inverse(y []float64) []float64 {
	out := make([]float64, len(p.Mean))
	copy(out, p.Mean)
	for k, comp := range p.Components {
		for i := range out {
			out[i] += y[k] * comp[i]
		}
	}
	return out
}

const closeIdx = 0 // domain.FeatureClose is the first model column

type scaledPreprocessor struct {
	ticker    string
	seqLength int
	scaler    *minMaxScaler
}

func (p *scaledPreprocessor) PrepareInputSequence(features domain.FeatureSet) ([][]float64, error) {
	if err := features.Validate(p.seqLength); err != nil {
		return nil, err
	}
	rows := features.Matrix(p.seqLength)
	for i, row := range rows {
		rows[i] = p.scaler.transform(row)
	}
	return rows, nil
}

// InverseTransformPrediction places the scaled close in an otherwise zero row
// and undoes the scaling.
func (p *scaledPreprocessor) InverseTransformPrediction(output []float64) (float64, error) {
	if len(output) == 0 {
		return 0, fmt.Errorf("empty model output for %s", p.ticker)
	}
	row := make([]float64, len(domain.FeatureNames))
	row[closeIdx] = output[0]
	return p.scaler.inverse(row)[closeIdx], nil
}

type pcaPreprocessor struct {
	ticker    string
	seqLength int
	scaler    *minMaxScaler
	pca       *pca
}

func (p *pcaPreprocessor) PrepareInputSequence(features domain.FeatureSet) ([][]float64, error) {
	if err := features.Validate(p.seqLength); err != nil {
		return nil, err
	}
	rows := features.Matrix(p.seqLength)
	for i, row := range rows {
		rows[i] = p.pca.transform(p.scaler.transform(row))
	}
	return rows, nil
}

// InverseTransformPrediction expects one full component vector from the model.
func (p *pcaPreprocessor) InverseTransformPrediction(output []float64) (float64, error) {
	if len(output) != len(p.pca.Components) {
		return 0, fmt.Errorf("model output for %s has %d values, want %d components", p.ticker, len(output), len(p.pca.Components))
	}
	return p.scaler.inverse(p.pca.inverse(output))[closeIdx], nil
}
