package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"digital-advisor/internal/domain"
)

// artifactFile is the exported state of a ticker's fitted preprocessing.
type artifactFile struct {
	Scaler *minMaxScaler `json:"scaler"`
	PCA    *pca          `json:"pca,omitempty"`
}

// ArtifactPath is <dir>/<variant>/<TICKER>.json.
func ArtifactPath(dir string, variant Variant, ticker string) string {
	return filepath.Join(dir, string(variant), ticker+".json")
}

// LoadPreprocessor reads a ticker's artifacts and builds the preprocessor for its variant.
func LoadPreprocessor(dir string, variant Variant, ticker string, seqLength int) (Preprocessor, error) {
	path := ArtifactPath(dir, variant, ticker)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFound("Scaler file not found for company '%s' at %s", ticker, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read artifacts %s: %w", path, err)
	}

	var art artifactFile
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("parse artifacts %s: %w", path, err)
	}
	width := len(domain.FeatureNames)
	if art.Scaler == nil {
		return nil, fmt.Errorf("artifacts %s: missing scaler", path)
	}
	if err := art.Scaler.validate(width); err != nil {
		return nil, fmt.Errorf("artifacts %s: %w", path, err)
	}

	switch variant {
	case VariantScaled:
		return &scaledPreprocessor{ticker: ticker, seqLength: seqLength, scaler: art.Scaler}, nil
	case VariantPCA:
		if art.PCA == nil {
			return nil, domain.NotFound("PCA object not found for company '%s' at %s", ticker, path)
		}
		if err := art.PCA.validate(width); err != nil {
			return nil, fmt.Errorf("artifacts %s: %w", path, err)
		}
		return &pcaPreprocessor{ticker: ticker, seqLength: seqLength, scaler: art.Scaler, pca: art.PCA}, nil
	}
	return nil, fmt.Errorf("unknown preprocessing variant %q", variant)
}
