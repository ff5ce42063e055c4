package model

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fionafan/callout/internal/config"
	calloutErrors "github.com/fionafan/callout/internal/errors"
	"github.com/fionafan/callout/internal/logger"
	"github.com/fionafan/callout/internal/model/contract"
	anthropicProvider "github.com/fionafan/callout/internal/model/providers/anthropic"
	geminiProvider "github.com/fionafan/callout/internal/model/providers/gemini"
	openaiProvider "github.com/fionafan/callout/internal/model/providers/openai"
)

// Router implements Client by resolving the request's model against the
// configured registry. Models missing from the registry are served
// through the default OpenAI-compatible gateway, so a --model override
// never needs a config edit first.
type Router struct {
	cfg       config.ModelsConfig
	providers map[string]Provider
	mu        sync.RWMutex
}

// NewRouter creates a model router from the models configuration
func NewRouter(cfg config.ModelsConfig) (*Router, error) {
	router := &Router{
		cfg:       cfg,
		providers: make(map[string]Provider),
	}

	if err := router.initProviders(); err != nil {
		return nil, err
	}

	return router, nil
}

// Complete sends a completion request to the provider serving req.Model.
// A provider failure is not retried here; it comes back classified as a
// completion failure and the caller decides what the run does with it.
func (r *Router) Complete(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	runID := logger.GetRunID(ctx)

	provider, err := r.resolveProvider(ctx, req.Model)
	if err != nil {
		return nil, err
	}

	slog.Debug("Dispatching completion request", "model", req.Model, "provider", provider.Type(), "run_id", runID)

	resp, err := provider.Generate(ctx, req)
	if err != nil {
		slog.Error("Provider request failed", "model", req.Model, "error", err, "run_id", runID)
		return nil, calloutErrors.Completion(err)
	}

	return resp, nil
}

// Health checks the health of the router and its providers
func (r *Router) Health(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, provider := range r.providers {
		if err := provider.Health(ctx); err != nil {
			slog.Warn("Provider unhealthy", "provider", name, "error", err)
			return calloutErrors.Transient(fmt.Sprintf("provider %s unhealthy", name))
		}
	}

	return nil
}

// initProviders initializes all providers from configuration
func (r *Router) initProviders() error {
	for _, entry := range r.cfg.Registry {
		provider, err := r.createProvider(entry)
		if err != nil {
			slog.Warn("Skipping provider initialization", "provider", entry.Provider, "model", entry.Name, "error", err)
			continue
		}

		r.providers[entry.Name] = provider
		slog.Debug("Provider initialized", "name", entry.Name, "type", entry.Provider)
	}

	return nil
}

// resolveProvider resolves a provider by model name, building a gateway
// provider on first use for models outside the registry.
func (r *Router) resolveProvider(ctx context.Context, model string) (Provider, error) {
	select {
	case <-ctx.Done():
		return nil, calloutErrors.Wrap(ctx.Err(), "provider resolution cancelled")
	default:
	}

	r.mu.RLock()
	provider, exists := r.providers[model]
	r.mu.RUnlock()

	if exists {
		return provider, nil
	}

	slog.Info("Model not in registry, using gateway", "model", model)

	entry := config.ModelRegistry{
		Name:     model,
		Provider: "openai",
		BaseURL:  r.cfg.BaseURL,
		APIKey:   os.Getenv("OPENAI_API_KEY"),
	}

	provider, err := r.createProvider(entry)
	if err != nil {
		return nil, calloutErrors.Wrap(err, fmt.Sprintf("no provider for model %s", model))
	}

	r.mu.Lock()
	r.providers[model] = provider
	r.mu.Unlock()

	return provider, nil
}

// createProvider creates a provider instance based on registry entry
func (r *Router) createProvider(entry config.ModelRegistry) (Provider, error) {
	switch entry.Provider {
	case "openai":
		baseURL := entry.BaseURL
		if baseURL == "" {
			baseURL = r.cfg.BaseURL
		}
		if baseURL == "" {
			baseURL = config.DefaultOpenAIBaseURL
		}

		if entry.APIKey == "" {
			return nil, calloutErrors.InvalidInput("API key required for OpenAI provider")
		}

		return &ProviderAdapter{
			provider:     openaiProvider.New(entry.APIKey, baseURL, entry.Name),
			name:         entry.Name,
			providerType: "openai",
		}, nil

	case "anthropic":
		if entry.APIKey == "" {
			return nil, calloutErrors.InvalidInput("API key required for Anthropic provider")
		}

		return &ProviderAdapter{
			provider:     anthropicProvider.New(entry.APIKey),
			name:         entry.Name,
			providerType: "anthropic",
		}, nil

	case "gemini":
		if entry.APIKey == "" {
			return nil, calloutErrors.InvalidInput("API key required for Gemini provider")
		}

		provider, err := geminiProvider.New(entry.APIKey)
		if err != nil {
			return nil, calloutErrors.WrapWithCategory(err, "failed to create Gemini provider", calloutErrors.ErrInternal)
		}

		return &ProviderAdapter{
			provider:     provider,
			name:         entry.Name,
			providerType: "gemini",
		}, nil

	default:
		return nil, calloutErrors.InvalidInput(fmt.Sprintf("unknown provider type: %s", entry.Provider))
	}
}
