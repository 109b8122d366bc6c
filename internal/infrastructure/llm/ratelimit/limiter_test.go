package ratelimit

import (
	"context"
	"testing"
	"time"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLLM struct {
	calls int
}

func (c *countingLLM) Chat(context.Context, output.ChatRequest) (*output.ChatResponse, error) {
	c.calls++
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant, Content: "ok"}}, nil
}

func (c *countingLLM) Info() output.ProviderInfo {
	return output.ProviderInfo{Provider: "fake", Model: "m"}
}

func TestWrap_DisabledReturnsNext(t *testing.T) {
	next := &countingLLM{}
	assert.Same(t, next, Wrap(next, 0, nil))
}

func TestLimited_SpacesCalls(t *testing.T) {
	next := &countingLLM{}
	// 1200 rpm is one call every 50ms.
	llm := Wrap(next, 1200, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := llm.Chat(context.Background(), output.ChatRequest{})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, next.calls)
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, "fake/m", llm.Info().String())
}

func TestLimited_CancelledWhileWaiting(t *testing.T) {
	next := &countingLLM{}
	llm := Wrap(next, 1, nil)

	_, err := llm.Chat(context.Background(), output.ChatRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = llm.Chat(ctx, output.ChatRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
}
