// internal/ai/generator.go
//
// Sequential provider-fallback generation.
//
// Context
// -------
// The chain is ordered cheapest-first.  Each provider failure logs a
// warning and moves on; only when every provider has failed does the
// caller see an error.  This is a retry wrapper, not a scheduler — one
// request in flight at a time, no backoff, no circuit breaker.

package ai

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/docforge/docforge/internal/metrics"
)

// ErrNoProviders marks a generator built with an empty chain, which means
// no API key was configured.
var ErrNoProviders = errors.New("ai: no providers configured")

// ErrAllProvidersFailed wraps the last provider error.
var ErrAllProvidersFailed = errors.New("ai: all providers unavailable")

// Generator walks an ordered provider chain.
type Generator struct {
	providers []Provider
}

// NewGenerator builds a chain in the given order; nil entries are skipped.
func NewGenerator(providers ...Provider) *Generator {
	g := &Generator{}
	for _, p := range providers {
		if p != nil {
			g.providers = append(g.providers, p)
		}
	}
	return g
}

// Generate returns the first successful completion and the name of the
// provider that produced it.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string) (text, provider string, err error) {
	if len(g.providers) == 0 {
		return "", "", ErrNoProviders
	}

	var lastErr error
	for i, p := range g.providers {
		if i > 0 {
			metrics.AIFallbacksTotal.Inc()
		}
		text, err := p.Complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			metrics.AIGenerationsTotal.WithLabelValues(p.Name()).Inc()
			return text, p.Name(), nil
		}
		lastErr = err
		zap.S().Warnw("ai provider failed, trying next",
			"provider", p.Name(), "err", err)

		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
	}
	return "", "", fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
}
