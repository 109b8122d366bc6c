package ratelimit

import (
	"context"
	"fmt"
	"time"

	"earthreach/internal/application/port/output"

	"golang.org/x/time/rate"
)

var _ output.LLMPort = (*Limited)(nil)

// Limited spaces calls to the wrapped LLM so at most rpm requests start per minute.
type Limited struct {
	next    output.LLMPort
	limiter *rate.Limiter
	logger  output.LoggerPort
}

// Wrap returns next unchanged when rpm is not positive.
func Wrap(next output.LLMPort, rpm int, logger output.LoggerPort) output.LLMPort {
	if rpm <= 0 {
		return next
	}
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		logger:  logger,
	}
}

func (l *Limited) Info() output.ProviderInfo {
	return l.next.Info()
}

func (l *Limited) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}
	if waited := time.Since(start); waited > 100*time.Millisecond && l.logger != nil {
		l.logger.Debug("Throttled LLM call", "waited", waited.String(), "provider", l.next.Info().String())
	}
	return l.next.Chat(ctx, req)
}
