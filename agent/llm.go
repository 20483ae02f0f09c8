package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// ChatMessage is one turn sent to the model.
type ChatMessage struct {
	Role    string
	Content string
}

func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: "system", Content: content}
}

func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// ChatModel is the language-model client. A nil schema requests free text;
// otherwise the model is asked for JSON conforming to schema.
type ChatModel interface {
	Invoke(ctx context.Context, messages []ChatMessage, schema *OutputSchema) (string, error)
}

// OpenAIChat talks to any OpenAI-compatible chat completions endpoint.
type OpenAIChat struct {
	client      openai.Client
	model       string
	temperature float64
	logger      *zap.Logger
}

func NewOpenAIChat(cfg *RunConfig, logger *zap.Logger, opts ...option.RequestOption) *OpenAIChat {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := []option.RequestOption{
		option.WithBaseURL(cfg.ModelEndpoint),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.RequestTimeout > 0 {
		base = append(base, option.WithRequestTimeout(cfg.RequestTimeout))
	}
	return &OpenAIChat{
		client:      openai.NewClient(append(base, opts...)...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

func (c *OpenAIChat) Invoke(ctx context.Context, messages []ChatMessage, schema *OutputSchema) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
		Temperature: openai.Float(c.temperature),
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "user":
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			return "", fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	if schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schema.Name,
					Schema: schema.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	c.logger.Debug("Calling LLM",
		zap.String("model", c.model),
		zap.Int("messages", len(messages)),
		zap.Bool("structured", schema != nil),
	)

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
