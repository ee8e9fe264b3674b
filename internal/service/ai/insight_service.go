// Package ai wraps the upstream LLM used to generate therapeutic insight text.
package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/inneratlas/backend/internal/config"
)

// Insight is the generated therapeutic text returned to the caller. Citations
// stay empty unless the upstream model supplies sources.
type Insight struct {
	Text      string   `json:"text"`
	Citations []string `json:"citations"`
}

// Service encapsulates the insight-generation chain. Failures surface as a
// generic upstream error; no retry is built into this layer.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the chat model and compiles the prompt chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile insight chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// GenerateInsight runs one prompt pair through the chain.
func (s *Service) GenerateInsight(ctx context.Context, systemPrompt, userPrompt string) (*Insight, error) {
	input := map[string]any{
		"system": systemPrompt,
		"query":  userPrompt,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run insight chain: %w", err)
	}

	log.Printf("[ai] generated insight length=%d", len(response.Content))
	return &Insight{Text: response.Content, Citations: []string{}}, nil
}
