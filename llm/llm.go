// Package llm provides a small text-completion client interface backed by
// a local Ollama server through langchaingo. Construction is expensive, so
// callers obtain shared clients through a Provider (see enginecache).
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// ErrEmptyCompletion is returned when the model produced no usable text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Client is the minimal interface used by the classifier, the moderator
// and the response generators.
type Client interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Provider hands out shared clients keyed by model identifier. Moderation
// clients prefer a safety-tuned model and may fall back to the general one.
type Provider interface {
	Generation(model string, temperature float64) (Client, error)
	Moderation(model string) (Client, error)
}

// Params are the generation parameters a client is constructed with.
// Together with the model identifier they form the cache key.
type Params struct {
	Model       string
	Temperature float64
	NumCtx      int
}

// OllamaClient wraps a langchaingo Ollama model with fixed parameters.
type OllamaClient struct {
	model  llms.Model
	params Params
}

// NewOllamaClient constructs a client for one model at one parameter set.
func NewOllamaClient(serverURL string, params Params, httpClient *http.Client) (*OllamaClient, error) {
	opts := []ollama.Option{
		ollama.WithModel(params.Model),
	}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	if params.NumCtx > 0 {
		opts = append(opts, ollama.WithRunnerNumCtx(params.NumCtx))
	}
	if httpClient != nil {
		opts = append(opts, ollama.WithHTTPClient(httpClient))
	}

	model, err := ollama.New(opts...)
	if err != nil {
		return nil, err
	}
	return &OllamaClient{model: model, params: params}, nil
}

// Invoke sends a single-prompt completion request.
func (c *OllamaClient) Invoke(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(c.params.Temperature),
	)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}

// Params returns the parameters the client was constructed with.
func (c *OllamaClient) Params() Params {
	return c.params
}
