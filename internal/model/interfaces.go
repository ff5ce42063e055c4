package model

import (
	"context"

	"github.com/fionafan/callout/internal/model/contract"
)

// Client is the completion surface the agent loop depends on. The
// concrete implementation is injected; nothing in the loop reaches for
// a global.
type Client interface {
	Complete(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error)
}

type Provider interface {
	Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error)
	Name() string
	Type() string
	Health(ctx context.Context) error
}
