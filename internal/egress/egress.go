// Package egress delivers finished callouts to external channels.
package egress

import "context"

// Notifier delivers a finished callout somewhere people will read it.
type Notifier interface {
	// Name returns the notifier name (e.g. "slack").
	Name() string

	// Send posts the callout text.
	Send(ctx context.Context, text string) error

	// Health checks if the notifier is able to deliver.
	Health(ctx context.Context) error
}
