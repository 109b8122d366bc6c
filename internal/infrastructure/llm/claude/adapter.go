package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var _ output.LLMPort = (*Adapter)(nil)

const defaultMaxTokens = 4096

type Adapter struct {
	client *anthropic.Client
	model  string
	logger output.LoggerPort
}

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
	Logger  output.LoggerPort
}

func NewAdapter(cfg Config) *Adapter {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, option.WithMaxRetries(0))

	client := anthropic.NewClient(opts...)

	return &Adapter{
		client: &client,
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

func (a *Adapter) Info() output.ProviderInfo {
	return output.ProviderInfo{Provider: "anthropic", Model: a.model}
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages:  buildMessages(req.Messages),
	}
	if system := extractSystem(req.Messages); len(system) > 0 {
		params.System = system
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*req.Temperature))
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", classifyError(err))
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	content := strings.TrimSpace(text.String())
	if content == "" {
		return nil, fmt.Errorf("anthropic: %w", entity.ErrEmptyResponse)
	}

	if a.logger != nil {
		a.logger.Debug("Message received",
			"provider", "anthropic",
			"model", a.model,
			"inputTokens", resp.Usage.InputTokens,
			"outputTokens", resp.Usage.OutputTokens,
			"stopReason", resp.StopReason)
	}

	return &output.ChatResponse{
		Message: entity.Message{Role: entity.RoleAssistant, Content: content},
		Usage: output.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

func buildMessages(messages []entity.Message) []anthropic.MessageParam {
	var result []anthropic.MessageParam
	for _, msg := range messages {
		switch msg.Role {
		case entity.RoleSystem:
			continue
		case entity.RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			var blocks []anthropic.ContentBlockParamUnion
			for _, img := range msg.Images {
				blocks = append(blocks, anthropic.NewImageBlockBase64(img.MediaType, img.Base64()))
			}
			blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			result = append(result, anthropic.NewUserMessage(blocks...))
		}
	}
	return result
}

func extractSystem(messages []entity.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, msg := range messages {
		if msg.Role == entity.RoleSystem && msg.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: msg.Content})
		}
	}
	return blocks
}

func classifyError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", entity.ErrAuthentication, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", entity.ErrRateLimited, err)
	default:
		return err
	}
}
