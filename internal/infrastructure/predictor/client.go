package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"digital-advisor/internal/domain"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client calls a TensorFlow Serving compatible REST endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit caps outbound requests per second. Zero or negative keeps the default.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type predictRequest struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

// Infer runs one input sequence through the ticker's model and returns the
// first output row.
func (c *Client) Infer(ctx context.Context, ticker string, sequence [][]float64) ([]float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, domain.Unavailable(err, "Model server is busy. Please try again.")
	}

	body, err := json.Marshal(predictRequest{Instances: [][][]float64{sequence}})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/v1/models/%s:predict", c.baseURL, ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Str("ticker", ticker).Dur("elapsed", elapsed).Msg("model server request failed")
		return nil, domain.Unavailable(err, "Model server is unavailable. Please try again.")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.NotFound("Model not found for company '%s'.", ticker)
	case resp.StatusCode >= 300:
		log.Warn().Str("ticker", ticker).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("model server non-OK response")
		return nil, domain.Unavailable(fmt.Errorf("model server status %d", resp.StatusCode),
			"Model server is unavailable. Please try again.")
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("model server: %s", out.Error)
	}
	if len(out.Predictions) == 0 || len(out.Predictions[0]) == 0 {
		return nil, errors.New("model server returned no predictions")
	}

	log.Debug().Str("ticker", ticker).Dur("elapsed", elapsed).Msg("model server call")
	return out.Predictions[0], nil
}

// Ping reports whether the model server answers HTTP at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("model server status %d", resp.StatusCode)
	}
	return nil
}
