package llm

import (
	"context"
	"errors"

	"docqa/internal/prompt"
)

var (
	ErrAuthentication = errors.New("llm: authentication failed")
	ErrRateLimit      = errors.New("llm: rate limit or quota exceeded")
	ErrTransport      = errors.New("llm: request failed")
)

// Client is a minimal completion interface to allow pluggable providers.
// Implementations make exactly one attempt per call.
type Client interface {
	Complete(ctx context.Context, req prompt.Request) (string, error)
}

// Factory builds a Client bound to one session's credential.
type Factory func(credential string) (Client, error)
