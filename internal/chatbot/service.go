// Package chatbot is the SuitUp shopping assistant. It proxies chat
// completions and answers catalog questions through tool calls.
package chatbot

import (
	"context"
	"strings"
	"unicode/utf8"

	"suitup-be/internal/apperr"
	"suitup-be/internal/logger"
	"suitup-be/internal/metrics"
	"suitup-be/internal/utils"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	provider = "openai"

	fallbackReply = "Sorry, I could not generate a response."
	apologyReply  = "Sorry, I'm having trouble answering right now. Please try again in a moment."

	// Messages longer than this are routed to the advanced model.
	longMessageRunes = 200
)

const systemPrompt = `You are SuitUp AI, an intelligent virtual assistant for a premium virtual try-on and e-commerce platform.

CORE CAPABILITIES:
- Virtual Try-On: users upload a photo and try clothes on virtually
- Product Recommendations: suggest clothing based on style preferences and occasion
- Shopping Assistance: product discovery, sizing and purchase decisions
- Style Advice: fashion tips and outfit coordination
- Order Support: order tracking and customer service

GUIDELINES:
- Be friendly, professional and fashion-forward
- Keep answers concise (150-300 words at most)
- Use the catalog tools for anything about brands, products, prices or stock; never invent products
- Mention the virtual try-on feature when it is relevant`

type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	AdvancedModel string
}

type Service interface {
	// Reply answers one message, running catalog tools when the model asks.
	Reply(ctx context.Context, input ChatInput) (string, error)
	// Stream forwards content fragments to onDelta as they arrive.
	Stream(ctx context.Context, input ChatInput, onDelta func(string) error) error
}

type service struct {
	cfg     Config
	client  *openAIClient
	tools   *toolRunner
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

func NewService(cfg Config, catalog Catalog, brands Brands, m *metrics.Metrics) Service {
	if cfg.APIKey == "" {
		logger.L().Warn("OpenAI API key is empty, chatbot calls will fail")
	}
	if cfg.AdvancedModel == "" {
		cfg.AdvancedModel = cfg.Model
	}

	return &service{
		cfg:     cfg,
		client:  newOpenAIClient(cfg.APIKey, cfg.BaseURL),
		tools:   &toolRunner{catalog: catalog, brands: brands},
		breaker: utils.NewBreaker(provider, logger.L()),
		metrics: m,
	}
}

// selectModel sends long or explanatory questions to the advanced model.
func (s *service) selectModel(message string) string {
	if utf8.RuneCountInString(message) > longMessageRunes {
		return s.cfg.AdvancedModel
	}
	lower := strings.ToLower(message)
	for _, kw := range []string{"explain", "how", "why"} {
		if strings.Contains(lower, kw) {
			return s.cfg.AdvancedModel
		}
	}
	return s.cfg.Model
}

// buildMessages keeps only user and assistant turns from the client
// history, so callers cannot inject their own system prompt.
func buildMessages(input ChatInput) []openai.ChatCompletionMessage {
	history := make([]openai.ChatCompletionMessage, 0, len(input.ConversationHistory))
	for _, m := range input.ConversationHistory {
		if (m.Role != RoleUser && m.Role != RoleAssistant) || strings.TrimSpace(m.Content) == "" {
			continue
		}
		history = append(history, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, openai.ChatCompletionMessage{Role: RoleUser, Content: strings.TrimSpace(input.Message)})
	return messages
}

func validate(input ChatInput) error {
	if strings.TrimSpace(input.Message) == "" {
		return apperr.Invalid("No message provided.")
	}
	return nil
}

// call runs one completion inside the breaker. Only provider outcomes are
// recorded; a request whose context ended is tagged as the caller going away.
func (s *service) call(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionMessage, error) {
	msg, err := utils.ExecuteWithBreaker(s.breaker, func() (*openai.ChatCompletionMessage, error) {
		msg, err := s.client.complete(ctx, req)
		if err != nil && ctx.Err() != nil {
			return nil, utils.CallerGone(err)
		}
		return msg, err
	})
	if !utils.IsCallerGone(err) {
		s.metrics.UpstreamCall(provider, err)
	}
	return msg, err
}

// cancelled prefers the context's own error once it has ended.
func cancelled(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *service) Reply(ctx context.Context, input ChatInput) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Chatbot.Reply"),
	)

	if err := validate(input); err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    buildMessages(input),
		Tools:       toolSpecs,
		ToolChoice:  "auto",
		MaxTokens:   400,
		Temperature: 0.7,
	}

	first, err := s.call(ctx, req)
	if utils.IsCallerGone(err) {
		log.Info("chat request cancelled by client")
		return "", cancelled(ctx, err)
	}
	if err != nil {
		log.Error("openai completion failed", zap.Error(err))
		return "", apperr.Wrap(apperr.KindUpstreamFailure, apologyReply, err)
	}

	if len(first.ToolCalls) == 0 {
		return replyText(first), nil
	}

	// Second round trip: the assistant's tool request followed by one
	// tool message per call.
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: RoleAssistant, Content: first.Content, ToolCalls: first.ToolCalls})
	for _, call := range first.ToolCalls {
		log.Info("running chatbot tool",
			zap.String("tool", call.Function.Name),
			zap.String("arguments", utils.Truncate(call.Function.Arguments, 200)),
		)
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:       RoleTool,
			ToolCallID: call.ID,
			Content:    s.tools.run(ctx, call),
		})
	}
	req.Tools = nil
	req.ToolChoice = nil

	second, err := s.call(ctx, req)
	if utils.IsCallerGone(err) {
		log.Info("chat request cancelled by client")
		return "", cancelled(ctx, err)
	}
	if err != nil {
		log.Error("openai follow-up completion failed", zap.Error(err))
		return "", apperr.Wrap(apperr.KindUpstreamFailure, apologyReply, err)
	}
	return replyText(second), nil
}

func replyText(m *openai.ChatCompletionMessage) string {
	if strings.TrimSpace(m.Content) == "" {
		return fallbackReply
	}
	return m.Content
}

func (s *service) Stream(ctx context.Context, input ChatInput, onDelta func(string) error) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Chatbot.Stream"),
	)

	if err := validate(input); err != nil {
		return err
	}

	model := s.selectModel(input.Message)
	req := openai.ChatCompletionRequest{
		Model:            model,
		Messages:         buildMessages(input),
		MaxTokens:        400,
		Temperature:      0.8,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
	}

	_, err := utils.ExecuteWithBreaker(s.breaker, func() (struct{}, error) {
		err := s.client.stream(ctx, req, onDelta)
		if err != nil && !utils.IsCallerGone(err) && ctx.Err() != nil {
			err = utils.CallerGone(err)
		}
		return struct{}{}, err
	})
	if utils.IsCallerGone(err) {
		log.Info("chat stream ended by client", zap.String("model", model), zap.Error(err))
		return err
	}
	s.metrics.UpstreamCall(provider, err)
	if err != nil {
		log.Error("openai stream failed", zap.String("model", model), zap.Error(err))
		return apperr.Wrap(apperr.KindUpstreamFailure, apologyReply, err)
	}
	return nil
}
