package assist

import (
	"context"
	"fmt"
)

// Prompt is one single-turn request. PDF, when set, is the document the
// request is about.
type Prompt struct {
	System string
	Text   string
	PDF    []byte
}

// Provider sends a prompt to a language model and returns its text reply.
type Provider interface {
	Name() string
	Complete(ctx context.Context, p Prompt) (string, error)
}

// NewProvider builds the provider named in cfg.
func NewProvider(cfg *Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return newAnthropic(cfg), nil
	case ProviderOpenAI:
		return newOpenAI(cfg), nil
	case ProviderNone:
		return nil, ErrUnavailable
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}
