package openaicompat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"

	"github.com/sashabaranov/go-openai"
)

var _ output.LLMPort = (*Adapter)(nil)

const (
	BaseURLGroq       = "https://api.groq.com/openai/v1"
	BaseURLOpenRouter = "https://openrouter.ai/api/v1"
)

// Adapter talks to any endpoint speaking the OpenAI chat completions protocol:
// OpenAI itself, Groq, OpenRouter and local servers.
type Adapter struct {
	client   *openai.Client
	provider string
	model    string
	// OpenAI reasoning models reject max_tokens.
	maxCompletionTokens bool
	logger              output.LoggerPort
}

type Config struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL is left at the OpenAI default when empty.
	BaseURL             string
	MaxCompletionTokens bool
	HTTPDebug           bool
	Logger              output.LoggerPort
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

// RoundTrip logs sizes only; request bodies carry base64 images.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var size int
	if req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		size = len(bodyBytes)
		req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}

	t.logger.Debug("HTTP Request",
		"method", req.Method,
		"url", req.URL.String(),
		"bodyBytes", size,
	)

	resp, err := t.base.RoundTrip(req)

	if resp != nil {
		t.logger.Debug("HTTP Response",
			"status", resp.Status,
			"statusCode", resp.StatusCode,
		)
	}

	return resp, err
}

func NewAdapter(cfg Config) *Adapter {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	if cfg.HTTPDebug && cfg.Logger != nil {
		config.HTTPClient = &http.Client{
			Transport: &loggingTransport{
				base:   http.DefaultTransport,
				logger: cfg.Logger,
			},
		}
	}

	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}

	return &Adapter{
		client:              openai.NewClientWithConfig(config),
		provider:            provider,
		model:               cfg.Model,
		maxCompletionTokens: cfg.MaxCompletionTokens,
		logger:              cfg.Logger,
	}
}

func (a *Adapter) Info() output.ProviderInfo {
	return output.ProviderInfo{Provider: a.provider, Model: a.model}
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	request := openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: convertMessages(req.Messages),
	}
	if req.Temperature != nil {
		request.Temperature = *req.Temperature
		// go-openai omits a zero temperature from the request body.
		if request.Temperature == 0 {
			request.Temperature = math.SmallestNonzeroFloat32
		}
	}
	if req.MaxTokens > 0 {
		if a.maxCompletionTokens {
			request.MaxCompletionTokens = req.MaxTokens
		} else {
			request.MaxTokens = req.MaxTokens
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("%s chat completion failed: %w", a.provider, classifyError(err))
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w: no choices in response", a.provider, entity.ErrEmptyResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("%s: %w", a.provider, entity.ErrEmptyResponse)
	}

	if a.logger != nil {
		a.logger.Debug("Chat completion received",
			"provider", a.provider,
			"model", a.model,
			"promptTokens", resp.Usage.PromptTokens,
			"completionTokens", resp.Usage.CompletionTokens,
			"finishReason", resp.Choices[0].FinishReason)
	}

	return &output.ChatResponse{
		Message: entity.Message{Role: entity.RoleAssistant, Content: content},
		Usage: output.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func convertMessages(messages []entity.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		oaiMsg := openai.ChatCompletionMessage{Role: string(msg.Role)}

		if !msg.HasImages() {
			oaiMsg.Content = msg.Content
			result = append(result, oaiMsg)
			continue
		}

		// Content and MultiContent are mutually exclusive in the client.
		oaiMsg.MultiContent = append(oaiMsg.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: msg.Content,
		})
		for _, img := range msg.Images {
			oaiMsg.MultiContent = append(oaiMsg.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    img.DataURL(),
					Detail: openai.ImageURLDetailHigh,
				},
			})
		}
		result = append(result, oaiMsg)
	}
	return result
}

func classifyError(err error) error {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", entity.ErrAuthentication, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", entity.ErrRateLimited, err)
	default:
		return err
	}
}
