package errors

import (
	"errors"
)

// Sentinel errors for different categories
var (
	// ErrInvalidInput - caller supplied something malformed (bad flag value, bad config, bad tool registration)
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - resource not found (config file, archived callout, catalog row)
	ErrNotFound = errors.New("not found")

	// ErrConflict - another process holds a resource (daily run lock); safe to retry later
	ErrConflict = errors.New("conflict")

	// ErrTransient - transient failure (network, timeout, rate limit); safe to retry
	ErrTransient = errors.New("transient error")

	// ErrCompletion - the completion service failed; fatal for the run that saw it
	ErrCompletion = errors.New("completion failed")

	// ErrConversationSealed - conversation already seeded; a run gets exactly one seed
	ErrConversationSealed = errors.New("conversation already seeded")

	// ErrUnknownToolCall - tool result arrived for a call id with no outstanding request
	ErrUnknownToolCall = errors.New("unknown tool call id")

	// ErrInternal - internal error (invariant broken, unexpected state)
	ErrInternal = errors.New("internal error")
)
