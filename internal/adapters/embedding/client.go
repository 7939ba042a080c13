// Package embedding provides the HTTP embedding client adapter.
// Clean Architecture: This is an adapter that implements ports.EmbeddingClient.
// It knows about the wire format of the remote embedding service but the
// domain layer doesn't.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/logging"
)

// Config configures a Client. Zero values fall back to the spec's defaults.
type Config struct {
	Endpoint    string
	Model       string
	APIKey      string
	DelayMs     int
	MaxRetries  int
	RetryBaseMs int
}

const (
	defaultDelayMs     = 100
	defaultMaxRetries  = 3
	defaultRetryBaseMs = 1000
)

// Client implements ports.EmbeddingClient against an HTTP embedding
// endpoint, with a spacing-lock rate limiter and bounded exponential
// backoff retry on 429 responses.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	model       string
	apiKey      string
	limiter     *rateLimiter
	maxRetries  int
	retryBaseMs int
}

// New creates an embedding Client. An empty APIKey is a valid
// configuration: Embed returns (nil, nil) for every call without contacting
// the endpoint. Chunks are then indexed without vectors and searches return
// an empty pack; there is no keyword-search fallback.
func New(cfg Config) *Client {
	delayMs := cfg.DelayMs
	if delayMs <= 0 {
		delayMs = defaultDelayMs
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryBaseMs := cfg.RetryBaseMs
	if retryBaseMs <= 0 {
		retryBaseMs = defaultRetryBaseMs
	}

	return &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		limiter:     newRateLimiter(time.Duration(delayMs) * time.Millisecond),
		maxRetries:  maxRetries,
		retryBaseMs: retryBaseMs,
	}
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// rateLimitedError marks a response that should be retried with backoff;
// every other error is wrapped in backoff.Permanent and fails immediately.
type rateLimitedError struct {
	err error
}

func (e *rateLimitedError) Error() string { return e.err.Error() }
func (e *rateLimitedError) Unwrap() error { return e.err }

// Embed returns the embedding vector for text. It returns (nil, nil) when
// embeddings are disabled (empty APIKey). A non-retryable failure, or a 429
// that persists after maxRetries retries, is logged and returned as a nil
// vector with an error wrapping entities.ErrEmbeddingFailed.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	operation := func() ([]float32, error) {
		if err := c.limiter.wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		vector, retryable, err := c.doEmbed(ctx, text)
		if err == nil {
			return vector, nil
		}
		if retryable {
			return nil, &rateLimitedError{err: err}
		}
		return nil, backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Duration(c.retryBaseMs) * time.Millisecond
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	vector, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.maxRetries)+1),
	)
	if err != nil {
		logging.Errorf("embedding failed after retries: %v", err)
		return nil, fmt.Errorf("%w: %v", entities.ErrEmbeddingFailed, err)
	}
	return vector, nil
}

// doEmbed performs one HTTP round trip. retryable is true when the failure
// is an HTTP 429 and should be retried with backoff.
func (c *Client) doEmbed(ctx context.Context, text string) (vector []float32, retryable bool, err error) {
	logging.Debugf("embedding request to %s with model %s", c.endpoint, c.model)

	reqBody := embedRequest{Model: c.model, Input: text}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, false, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Errorf("embedding call error: %v", err)
		return nil, false, fmt.Errorf("calling embedding endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("%w: status 429", entities.ErrEmbeddingRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("embedding endpoint returned status %d", resp.StatusCode)
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, false, fmt.Errorf("decoding response: %w", err)
	}

	logging.OKf("got embedding with %d dimensions", len(embedResp.Embedding))
	return embedResp.Embedding, false, nil
}
