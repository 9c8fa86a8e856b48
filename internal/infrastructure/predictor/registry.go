package predictor

import (
	"strings"
	"sync"

	"digital-advisor/internal/domain"

	"github.com/rs/zerolog/log"
)

// Registry lazily loads and keeps one preprocessor per ticker. Safe for
// concurrent use; a failed load is not cached so it is retried next time.
type Registry struct {
	dir       string
	seqLength int
	variants  map[string]Variant

	mu     sync.RWMutex
	loaded map[string]Preprocessor
}

// NewRegistry classifies tickers by variant. A ticker listed twice keeps the
// PCA variant.
func NewRegistry(dir string, seqLength int, scaledTickers, pcaTickers []string) *Registry {
	variants := make(map[string]Variant, len(scaledTickers)+len(pcaTickers))
	for _, t := range scaledTickers {
		variants[strings.ToUpper(t)] = VariantScaled
	}
	for _, t := range pcaTickers {
		variants[strings.ToUpper(t)] = VariantPCA
	}
	return &Registry{
		dir:       dir,
		seqLength: seqLength,
		variants:  variants,
		loaded:    make(map[string]Preprocessor),
	}
}

// Variant returns the configured variant for ticker.
func (r *Registry) Variant(ticker string) (Variant, bool) {
	v, ok := r.variants[ticker]
	return v, ok
}

func (r *Registry) SeqLength() int {
	return r.seqLength
}

// Preprocessor returns the ticker's preprocessor, loading it on first use.
func (r *Registry) Preprocessor(ticker string) (Preprocessor, error) {
	variant, ok := r.variants[ticker]
	if !ok {
		return nil, domain.InvalidArgument("Company '%s' is not configured for prediction.", ticker)
	}

	r.mu.RLock()
	p := r.loaded[ticker]
	r.mu.RUnlock()
	if p != nil {
		return p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p = r.loaded[ticker]; p != nil {
		return p, nil
	}
	p, err := LoadPreprocessor(r.dir, variant, ticker, r.seqLength)
	if err != nil {
		return nil, err
	}
	r.loaded[ticker] = p
	log.Info().Str("ticker", ticker).Str("variant", string(variant)).Msg("preprocessor loaded")
	return p, nil
}
