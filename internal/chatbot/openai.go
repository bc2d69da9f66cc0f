package chatbot

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"suitup-be/internal/utils"

	openai "github.com/sashabaranov/go-openai"
)

var ErrEmptyCompletion = errors.New("openai returned no choices")

type openAIClient struct {
	api *openai.Client
}

func newOpenAIClient(apiKey, baseURL string) *openAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	return &openAIClient{api: openai.NewClientWithConfig(cfg)}
}

func (c *openAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionMessage, error) {
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}
	return &resp.Choices[0].Message, nil
}

// stream forwards every content delta to onDelta until the provider ends
// the stream. A failing onDelta stops the stream and is tagged as the
// caller going away.
func (c *openAIClient) stream(ctx context.Context, req openai.ChatCompletionRequest, onDelta func(string) error) error {
	s, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return err
	}
	defer s.Close()

	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := onDelta(choice.Delta.Content); err != nil {
				return utils.CallerGone(err)
			}
		}
	}
}
