// Package predictor turns a ticker's feature window into a predicted close
// using fitted preprocessing artifacts and a remote model server.
package predictor

import (
	"context"

	"digital-advisor/internal/domain"
)

// Inferer runs a prepared sequence through a ticker's model.
type Inferer interface {
	Infer(ctx context.Context, ticker string, sequence [][]float64) ([]float64, error)
}

type Predictor struct {
	Registry *Registry
	Model    Inferer
}

func New(registry *Registry, model Inferer) *Predictor {
	return &Predictor{Registry: registry, Model: model}
}

// Supports reports whether ticker is configured for prediction.
func (p *Predictor) Supports(ticker string) bool {
	_, ok := p.Registry.Variant(ticker)
	return ok
}

// SeqLength is the number of time steps each model expects.
func (p *Predictor) SeqLength() int {
	return p.Registry.SeqLength()
}

// Predict returns the model's close price for the next step, unrounded.
func (p *Predictor) Predict(ctx context.Context, ticker string, features domain.FeatureSet) (float64, error) {
	pre, err := p.Registry.Preprocessor(ticker)
	if err != nil {
		return 0, err
	}
	seq, err := pre.PrepareInputSequence(features)
	if err != nil {
		return 0, err
	}
	out, err := p.Model.Infer(ctx, ticker, seq)
	if err != nil {
		return 0, err
	}
	return pre.InverseTransformPrediction(out)
}
