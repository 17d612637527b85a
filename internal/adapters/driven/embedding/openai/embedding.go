// Package openai provides an embedding service for any OpenAI-compatible
// /embeddings endpoint (OpenAI, Azure OpenAI, Ollama, vLLM, LocalAI).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultModel          = "text-embedding-3-small"
	DefaultTimeout        = 60 * time.Second
	DefaultMaxInputs      = 256
	DefaultRequestsPerSec = 5
	DefaultCacheSize      = 256
)

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the embedding service.
type Config struct {
	// APIKey is sent as a bearer token (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// MaxInputs caps the texts sent in one request (default: 256).
	MaxInputs int

	// RequestsPerSecond paces requests (default: 5). Negative disables pacing.
	RequestsPerSecond float64

	// HTTPClient replaces the default client, mainly for tests.
	HTTPClient *http.Client
}

// ConfigFromSettings maps the embedding settings onto a Config.
func ConfigFromSettings(s domain.Settings) Config {
	return Config{
		APIKey:  s.EmbeddingAPIKey,
		BaseURL: s.EmbeddingBaseURL,
		Model:   s.EmbeddingModel,
	}
}

// APIError is a non-2xx response from the endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: status %d: %s", e.StatusCode, e.Message)
}

// EmbeddingService generates embeddings over HTTP.
// Query embeddings are cached by text; chunk batches are not.
type EmbeddingService struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	model     string
	maxInputs int
	limiter   *rate.Limiter

	mu         sync.Mutex
	dimensions int
	cache      map[string][]float32
	cacheOrder []string
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates a new embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", domain.ErrEmbeddingUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxInputs <= 0 {
		cfg.MaxInputs = DefaultMaxInputs
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSec
	}

	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond < 0 {
		limit = rate.Inf
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &EmbeddingService{
		client:     client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxInputs:  cfg.MaxInputs,
		limiter:    rate.NewLimiter(limit, 1),
		dimensions: modelDimensions[cfg.Model],
		cache:      make(map[string][]float32),
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := s.cached(text); ok {
		return v, nil
	}
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	s.remember(text, embeddings[0])
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for texts, splitting large inputs into
// several requests. Results are in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.maxInputs {
		end := min(start+s.maxInputs, len(texts))
		batch, err := s.request(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (s *EmbeddingService) request(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// Most endpoints reject empty strings.
	input := make([]string, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			t = " "
		}
		input[i] = t
	}

	jsonBody, err := json.Marshal(embeddingRequest{Model: s.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	started := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	logger.Debug("Embedded %d texts with %s in %s", len(texts), s.model, time.Since(started))

	var embedResp embeddingResponse
	decodeErr := json.Unmarshal(body, &embedResp)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if decodeErr == nil && embedResp.Error != nil {
			msg = embedResp.Error.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if embedResp.Error != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: embedResp.Error.Message}
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range embedResp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", data.Index)
		}
		v := make([]float32, len(data.Embedding))
		for i, f := range data.Embedding {
			v[i] = float32(f)
		}
		embeddings[data.Index] = v
	}
	for i, v := range embeddings {
		if v == nil {
			return nil, fmt.Errorf("openai: no embedding returned for input %d", i)
		}
	}
	s.learnDimensions(len(embeddings[0]))
	return embeddings, nil
}

func (s *EmbeddingService) learnDimensions(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimensions == 0 {
		s.dimensions = n
	}
}

func (s *EmbeddingService) cached(text string) ([]float32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache[text]
	return v, ok
}

func (s *EmbeddingService) remember(text string, v []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cache[text]; ok {
		return
	}
	if len(s.cacheOrder) >= DefaultCacheSize {
		delete(s.cache, s.cacheOrder[0])
		s.cacheOrder = s.cacheOrder[1:]
	}
	s.cache[text] = v
	s.cacheOrder = append(s.cacheOrder, text)
}

// Dimensions returns the embedding vector size, or 0 for an unknown model
// that has not answered yet.
func (s *EmbeddingService) Dimensions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the endpoint and key by embedding a short text.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.request(ctx, []string{"ping"})
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return err
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
