package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/askbase/ai"
	"github.com/poiesic/askbase/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Completer implements ai.Completer using OpenAI-compatible chat APIs.
type Completer struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.Completer = (*Completer)(nil)

func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	token := config.Token
	if token == "" {
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(token),
		openai.WithModel(config.CompletionModel),
	)
	if err != nil {
		return nil, err
	}

	return &Completer{
		client: client,
		logger: slog.Default().With("component", "openai-completer"),
	}, nil
}

// NewCompleter creates a model-backed completer from the configuration.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// Complete generates an answer from the system prompt, prior session turns,
// and the user prompt.
func (c *Completer) Complete(ctx context.Context, systemPrompt string, history []core.Turn, userPrompt string, maxTokens int) (string, error) {
	content := make([]llms.MessageContent, 0, len(history)+2)
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeSystem,
		Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
	})

	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == core.TurnRoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(turn.Text)},
		})
	}

	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(userPrompt)},
	})

	response, err := c.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.2), llms.WithMaxTokens(maxTokens))
	if err != nil {
		c.logger.Error("completion call failed", "err", err)
		return "", err
	}

	if len(response.Choices) == 0 {
		c.logger.Warn("completion returned no choices")
		return "", nil
	}

	return response.Choices[0].Content, nil
}
