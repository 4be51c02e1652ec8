package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/internal/config"
)

// Generator is the local LLM collaborator. Implementations fail with
// *GenerationError so callers can recover locally (fallback text) without
// surfacing the failure.
type Generator interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
	Embed(ctx context.Context, text string) ([]float64, error)
}

// GenerationError wraps any network or model failure from the LLM.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// OllamaClient talks to a local Ollama server over its HTTP API.
type OllamaClient struct {
	baseURL        string
	model          string
	embeddingModel string
	httpClient     *http.Client
	logger         *logrus.Logger
}

func NewOllamaClient(cfg *config.OllamaConfig, logger *logrus.Logger) *OllamaClient {
	return &OllamaClient{
		baseURL:        cfg.BaseURL,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		logger:         logger,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Generate produces text for the given prompt, optionally guided by a system
// prompt. Streaming is disabled; the full response body is returned.
func (c *OllamaClient) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: false,
	}

	var result generateResponse
	if err := c.post(ctx, "/api/generate", payload, &result); err != nil {
		return "", &GenerationError{Op: "generate", Err: err}
	}

	return result.Response, nil
}

// Embed returns the embedding vector for the given text.
func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float64, error) {
	payload := embeddingRequest{
		Model:  c.embeddingModel,
		Prompt: text,
	}

	var result embeddingResponse
	if err := c.post(ctx, "/api/embeddings", payload, &result); err != nil {
		return nil, &GenerationError{Op: "embed", Err: err}
	}

	if len(result.Embedding) == 0 {
		return nil, &GenerationError{Op: "embed", Err: fmt.Errorf("empty embedding returned")}
	}

	return result.Embedding, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"path":   path,
		}).Warn("Ollama API returned non-200 status")
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
