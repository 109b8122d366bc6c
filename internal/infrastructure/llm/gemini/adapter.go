package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

var _ output.LLMPort = (*Adapter)(nil)

// contentGenerator is the part of llms.Model the adapter needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

type Adapter struct {
	model     contentGenerator
	modelName string
	logger    output.LoggerPort
}

type Config struct {
	APIKey string
	Model  string
	Logger output.LoggerPort
}

func NewAdapter(ctx context.Context, cfg Config) (*Adapter, error) {
	client, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newAdapter(client, cfg.Model, cfg.Logger), nil
}

func newAdapter(model contentGenerator, name string, logger output.LoggerPort) *Adapter {
	return &Adapter{model: model, modelName: name, logger: logger}
}

func (a *Adapter) Info() output.ProviderInfo {
	return output.ProviderInfo{Provider: "gemini", Model: a.modelName}
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	var opts []llms.CallOption
	if req.Temperature != nil {
		opts = append(opts, llms.WithTemperature(float64(*req.Temperature)))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	resp, err := a.model.GenerateContent(ctx, convertMessages(req.Messages), opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", classifyError(err))
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return nil, fmt.Errorf("gemini: %w", entity.ErrEmptyResponse)
	}

	choice := resp.Choices[0]
	usage := output.TokenUsage{
		PromptTokens:     intFrom(choice.GenerationInfo, "input_tokens"),
		CompletionTokens: intFrom(choice.GenerationInfo, "output_tokens"),
	}

	if a.logger != nil {
		a.logger.Debug("Content generated",
			"provider", "gemini",
			"model", a.modelName,
			"stopReason", choice.StopReason,
			"promptTokens", usage.PromptTokens,
			"completionTokens", usage.CompletionTokens)
	}

	return &output.ChatResponse{
		Message: entity.Message{Role: entity.RoleAssistant, Content: strings.TrimSpace(choice.Content)},
		Usage:   usage,
	}, nil
}

// convertMessages folds system text into the first human turn.
func convertMessages(messages []entity.Message) []llms.MessageContent {
	var system []string
	var result []llms.MessageContent

	for _, msg := range messages {
		switch msg.Role {
		case entity.RoleSystem:
			system = append(system, msg.Content)
		case entity.RoleAssistant:
			result = append(result, llms.MessageContent{
				Role:  llms.ChatMessageTypeAI,
				Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
			})
		default:
			text := msg.Content
			if len(system) > 0 {
				text = strings.Join(append(system, text), "\n\n")
				system = nil
			}
			parts := []llms.ContentPart{llms.TextPart(text)}
			for _, img := range msg.Images {
				parts = append(parts, llms.BinaryPart(img.MediaType, img.Data))
			}
			result = append(result, llms.MessageContent{Role: llms.ChatMessageTypeHuman, Parts: parts})
		}
	}

	if len(system) > 0 {
		result = append(result, llms.MessageContent{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(strings.Join(system, "\n\n"))},
		})
	}
	return result
}

func intFrom(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// The googleai client does not expose typed errors, so status codes are matched in the message.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Error 401"), strings.Contains(msg, "Error 403"), strings.Contains(msg, "API_KEY_INVALID"):
		return fmt.Errorf("%w: %w", entity.ErrAuthentication, err)
	case strings.Contains(msg, "Error 429"), strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return fmt.Errorf("%w: %w", entity.ErrRateLimited, err)
	default:
		return err
	}
}
