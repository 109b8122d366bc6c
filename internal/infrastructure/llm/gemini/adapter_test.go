package gemini

import (
	"context"
	"errors"
	"testing"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	messages []llms.MessageContent
	options  llms.CallOptions
	resp     *llms.ContentResponse
	err      error
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.options)
	}
	return f.resp, f.err
}

func TestConvertMessages_FoldsSystemIntoUser(t *testing.T) {
	img := entity.ChartImage{Data: []byte("png"), MediaType: entity.MediaTypePNG}

	result := convertMessages([]entity.Message{
		entity.SystemMessage("You are a meteorologist."),
		entity.UserMessage("Describe the chart.", img),
	})

	require.Len(t, result, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, result[0].Role)
	require.Len(t, result[0].Parts, 2)
	assert.Equal(t, llms.TextPart("You are a meteorologist.\n\nDescribe the chart."), result[0].Parts[0])
	assert.Equal(t, llms.BinaryPart("image/png", []byte("png")), result[0].Parts[1])
}

func TestAdapter_Chat(t *testing.T) {
	fake := &fakeModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		Content:        "<final_description>Zonal flow.</final_description>",
		StopReason:     "STOP",
		GenerationInfo: map[string]any{"input_tokens": int32(1200), "output_tokens": int32(80)},
	}}}}
	a := newAdapter(fake, "gemini-2.5-flash", nil)

	temp := float32(0.5)
	resp, err := a.Chat(context.Background(), output.ChatRequest{
		Messages:    []entity.Message{entity.UserMessage("Describe.")},
		Temperature: &temp,
		MaxTokens:   1000,
	})
	require.NoError(t, err)

	assert.Equal(t, "<final_description>Zonal flow.</final_description>", resp.Message.Content)
	assert.Equal(t, 1280, resp.Usage.Total())
	assert.InDelta(t, 0.5, fake.options.Temperature, 1e-6)
	assert.Equal(t, 1000, fake.options.MaxTokens)
	assert.Equal(t, "gemini/gemini-2.5-flash", a.Info().String())
}

func TestAdapter_Chat_Errors(t *testing.T) {
	a := newAdapter(&fakeModel{resp: &llms.ContentResponse{}}, "m", nil)
	_, err := a.Chat(context.Background(), output.ChatRequest{Messages: []entity.Message{entity.UserMessage("hi")}})
	assert.ErrorIs(t, err, entity.ErrEmptyResponse)

	a = newAdapter(&fakeModel{err: errors.New("googleapi: Error 429: quota")}, "m", nil)
	_, err = a.Chat(context.Background(), output.ChatRequest{Messages: []entity.Message{entity.UserMessage("hi")}})
	assert.ErrorIs(t, err, entity.ErrRateLimited)

	a = newAdapter(&fakeModel{err: errors.New("googleapi: Error 403: denied")}, "m", nil)
	_, err = a.Chat(context.Background(), output.ChatRequest{Messages: []entity.Message{entity.UserMessage("hi")}})
	assert.ErrorIs(t, err, entity.ErrAuthentication)
}
