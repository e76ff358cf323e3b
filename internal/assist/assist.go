// Package assist provides the two language-model conveniences of the viewer:
// related search-term suggestion and document summarization.
package assist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/flipbook/internal/content"
	"github.com/JaimeStill/flipbook/pkg/lifecycle"
)

const (
	suggestSystem = "You help readers search inside documents. " +
		"Reply with related search terms only, one per line, without numbering or commentary."
	summarizeSystem = "You summarize documents for a reader deciding whether to open them. " +
		"Reply with a single concise paragraph."
	maxTermLength = 200
)

// System is the assistant contract consumed by the HTTP surface and search.
type System interface {
	// Available reports whether a provider is configured.
	Available() bool

	// SuggestRelatedTerms returns up to MaxRelatedTerms terms related to term,
	// never including term itself.
	SuggestRelatedTerms(ctx context.Context, term string) ([]string, error)

	// SummarizeDocument returns a text summary of a data:application/pdf URI.
	SummarizeDocument(ctx context.Context, pdfDataURI string) (string, error)

	Start(lc *lifecycle.Coordinator) error
}

type assistant struct {
	provider Provider
	cache    Cache
	model    string
	timeout  time.Duration
	logger   *slog.Logger
}

// New creates an assistant from cfg. A config without a provider yields a
// System whose calls return ErrUnavailable.
func New(cfg *Config, cache Cache, logger *slog.Logger) (System, error) {
	if cfg.Provider == ProviderNone {
		return NewWithProvider(nil, cfg, cache, logger), nil
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithProvider(provider, cfg, cache, logger), nil
}

// NewWithProvider creates an assistant over an explicit provider, which may be nil.
func NewWithProvider(provider Provider, cfg *Config, cache Cache, logger *slog.Logger) System {
	if cache == nil {
		cache = NoCache()
	}
	return &assistant{
		provider: provider,
		cache:    cache,
		model:    cfg.Model,
		timeout:  cfg.TimeoutDuration(),
		logger:   logger.With("system", "assist"),
	}
}

func (a *assistant) Available() bool {
	return a.provider != nil
}

func (a *assistant) Start(lc *lifecycle.Coordinator) error {
	if s, ok := a.cache.(interface {
		Start(*lifecycle.Coordinator) error
	}); ok {
		return s.Start(lc)
	}
	return nil
}

func (a *assistant) SuggestRelatedTerms(ctx context.Context, term string) ([]string, error) {
	term = strings.Join(strings.Fields(term), " ")
	if term == "" || len(term) > maxTermLength {
		return nil, fmt.Errorf("%w: term must be 1-%d characters", ErrInvalidInput, maxTermLength)
	}
	if !a.Available() {
		return nil, ErrUnavailable
	}

	key := cacheKey("suggest", a.provider.Name(), a.model, normalizeTerm(term))
	var cached []string
	if a.lookup(ctx, key, &cached) {
		return cached, nil
	}

	reply, err := a.complete(ctx, Prompt{
		System: suggestSystem,
		Text:   fmt.Sprintf("Suggest up to %d search terms related to %q.", MaxRelatedTerms, term),
	})
	if err != nil {
		return nil, err
	}

	terms := filterTerms(term, parseTerms(reply))
	a.store(ctx, key, terms)

	a.logger.Debug("related terms suggested", "term", term, "count", len(terms))
	return terms, nil
}

func (a *assistant) SummarizeDocument(ctx context.Context, pdfDataURI string) (string, error) {
	data, mediaType, err := content.ParseDataURI(pdfDataURI)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if mediaType != content.MediaTypePDF || !content.IsPDF(data) {
		return "", fmt.Errorf("%w: expected a pdf data uri, got %q", ErrInvalidInput, mediaType)
	}
	if !a.Available() {
		return "", ErrUnavailable
	}

	sum := sha256.Sum256(data)
	key := cacheKey("summary", a.provider.Name(), a.model, hex.EncodeToString(sum[:]))
	var cached string
	if a.lookup(ctx, key, &cached) {
		return cached, nil
	}

	reply, err := a.complete(ctx, Prompt{
		System: summarizeSystem,
		Text:   "Summarize this document.",
		PDF:    data,
	})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(reply)
	if summary == "" {
		return "", fmt.Errorf("%w: empty summary", ErrAssist)
	}
	a.store(ctx, key, summary)

	a.logger.Info("document summarized", "bytes", len(data))
	return summary, nil
}

func (a *assistant) complete(ctx context.Context, p Prompt) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	reply, err := a.provider.Complete(ctx, p)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %w", ErrAssist, err)
	}
	return reply, nil
}

// lookup and store treat the cache as best-effort.
func (a *assistant) lookup(ctx context.Context, key string, dest any) bool {
	ok, err := a.cache.Get(ctx, key, dest)
	if err != nil {
		a.logger.Warn("cache read failed", "error", err)
		return false
	}
	return ok
}

func (a *assistant) store(ctx context.Context, key string, value any) {
	if err := a.cache.Set(ctx, key, value); err != nil {
		a.logger.Warn("cache write failed", "error", err)
	}
}
