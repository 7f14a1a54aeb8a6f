package ai

import (
	"context"
	"errors"

	"github.com/eternalmoments/backend/internal/config"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Message is one turn of a chat prompt.
type Message struct {
	Role    string // system | user | assistant
	Content string
}

// OpenAIClient generates persona replies via chat completions.
type OpenAIClient struct {
	client openai.Client
	model  string
}

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(cfg.OpenAI.APIKey)),
		model:  cfg.OpenAI.Model,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
