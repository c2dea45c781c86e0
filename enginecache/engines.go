package enginecache

import (
	"net/http"

	"github.com/sage-x-project/chat-router/llm"
	"github.com/sage-x-project/chat-router/logger"
	"github.com/sage-x-project/chat-router/rag"
)

const defaultNumCtx = 2048

// Options configures the engine caches.
type Options struct {
	// OllamaURL is the model server base URL ("" uses the client default).
	OllamaURL string
	// GuardModel is the safety-tuned moderation model identifier.
	GuardModel string
	// NumCtx is the context window requested from the model runner.
	NumCtx int
	// Capacity bounds each handle kind (0 means DefaultCapacity).
	Capacity int
	// HTTPClient overrides the transport used for model traffic.
	HTTPClient *http.Client
	// QueryBuilder constructs a retrieval engine around a completion client.
	QueryBuilder func(llm.Client) (rag.QueryEngine, error)
}

// Engines owns the per-kind handle caches and implements llm.Provider.
type Engines struct {
	opts       Options
	generation *Cache[llm.Client]
	query      *Cache[rag.QueryEngine]
	log        *logger.Logger
}

// NewEngines builds the caches. Handles live until evicted by capacity
// pressure; there is no explicit teardown.
func NewEngines(opts Options, log *logger.Logger) (*Engines, error) {
	if opts.NumCtx <= 0 {
		opts.NumCtx = defaultNumCtx
	}
	e := &Engines{opts: opts, log: log.WithComponent("enginecache")}

	var err error
	e.generation, err = NewCache(opts.Capacity, func(key Key) (llm.Client, error) {
		e.log.Debugf("constructing model client model=%s temperature=%.2f", key.Model, key.Temperature)
		return llm.NewOllamaClient(opts.OllamaURL, llm.Params{
			Model:       key.Model,
			Temperature: key.Temperature,
			NumCtx:      key.NumCtx,
		}, opts.HTTPClient)
	})
	if err != nil {
		return nil, err
	}

	e.query, err = NewCache(opts.Capacity, func(key Key) (rag.QueryEngine, error) {
		client, err := e.Generation(key.Model, 0)
		if err != nil {
			return nil, err
		}
		e.log.Debugf("constructing query engine model=%s", key.Model)
		return opts.QueryBuilder(client)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Generation returns the shared completion client for a model at a
// temperature.
func (e *Engines) Generation(model string, temperature float64) (llm.Client, error) {
	return e.generation.Get(Key{Model: model, Temperature: temperature, NumCtx: e.opts.NumCtx})
}

// Moderation returns the client for the safety-tuned model, falling back
// exactly once to the general-purpose model when the guard model cannot
// be constructed.
func (e *Engines) Moderation(model string) (llm.Client, error) {
	if e.opts.GuardModel != "" {
		client, err := e.Generation(e.opts.GuardModel, 0)
		if err == nil {
			return client, nil
		}
		e.log.Warnf("moderation model %s unavailable, falling back to %s: %v", e.opts.GuardModel, model, err)
	}
	return e.Generation(model, 0)
}

// Query returns the shared retrieval engine for a model.
func (e *Engines) Query(model string) (rag.QueryEngine, error) {
	return e.query.Get(Key{Model: model, NumCtx: e.opts.NumCtx})
}
