package output

import (
	"context"

	"earthreach/internal/domain/entity"
)

type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Info() ProviderInfo
}

type ChatRequest struct {
	Messages    []entity.Message
	Temperature *float32
	MaxTokens   int
}

type ChatResponse struct {
	Message entity.Message
	Usage   TokenUsage
}

type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
}

func (u TokenUsage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

type ProviderInfo struct {
	Provider string
	Model    string
}

func (p ProviderInfo) String() string {
	return p.Provider + "/" + p.Model
}
