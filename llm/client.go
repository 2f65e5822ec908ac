// Package llm adapts vendor chat APIs to the agent's conversation model. Each
// provider lives in its own file and translates conversation messages and
// tool definitions to the vendor format and the reply back.
package llm

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m4xw311/picode/conversation"
	"github.com/m4xw311/picode/errors"
	"github.com/m4xw311/picode/tools"
)

// Client is the interface for interacting with a Large Language Model. The
// returned message has the assistant role and may carry tool calls.
type Client interface {
	Chat(ctx context.Context, messages []conversation.Message, availableTools []tools.Tool) (*conversation.Message, error)
}

// Settings selects and configures a provider.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

var defaultModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-sonnet-4-20250514",
	"gemini":    "gemini-1.5-flash",
	"bedrock":   "anthropic.claude-3-5-sonnet-20240620-v1:0",
	"ollama":    "llama3.1",
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// New creates the client for s.Provider.
func New(ctx context.Context, s Settings, logger *slog.Logger) (Client, error) {
	provider := strings.ToLower(s.Provider)
	if provider == "" {
		provider = "openai"
	}
	if s.Model == "" {
		s.Model = DefaultModel(provider)
	}
	switch provider {
	case "openai":
		return NewOpenAIClient(s.APIKey, s.BaseURL, s.Model)
	case "anthropic":
		return NewAnthropicClient(s.APIKey, s.BaseURL, s.Model)
	case "gemini":
		return NewGeminiClient(ctx, s.APIKey, s.Model)
	case "bedrock":
		return NewBedrockClient(ctx, s.Model, logger)
	case "ollama":
		return NewOllamaClient(s.BaseURL, s.Model)
	default:
		return nil, errors.New("unknown llm provider '%s'", s.Provider)
	}
}

func assistantMessage(content string, calls []conversation.ToolCall) *conversation.Message {
	return &conversation.Message{
		Role:      conversation.RoleAssistant,
		Content:   content,
		ToolCalls: calls,
	}
}

// rawArgs returns the arguments as a JSON object literal, never empty.
func rawArgs(args string) string {
	if strings.TrimSpace(args) == "" {
		return "{}"
	}
	return args
}

// toolNames maps every tool call id in the history to the tool it invoked.
// Providers that address tool results by function name need it.
func toolNames(messages []conversation.Message) map[string]string {
	names := make(map[string]string)
	for _, m := range messages {
		for _, tc := range m.ToolCalls {
			names[tc.ID] = tc.Name
		}
	}
	return names
}

// schemaRequired extracts the "required" list from a JSON schema object.
func schemaRequired(schema map[string]any) []string {
	var out []string
	switch req := schema["required"].(type) {
	case []string:
		out = append(out, req...)
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func schemaProperties(schema map[string]any) map[string]any {
	if props, ok := schema["properties"].(map[string]any); ok {
		return props
	}
	return map[string]any{}
}
