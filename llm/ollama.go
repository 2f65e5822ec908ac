package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/m4xw311/picode/conversation"
	"github.com/m4xw311/picode/errors"
	"github.com/m4xw311/picode/tools"
	"github.com/ollama/ollama/api"
)

// DefaultOllamaURL is the address of a local ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaClient talks to an ollama server with its native chat API.
type OllamaClient struct {
	client *api.Client
	model  string
}

func NewOllamaClient(baseURL, modelName string) (*OllamaClient, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ollama URL '%s'", baseURL)
	}
	return &OllamaClient{client: api.NewClient(parsed, http.DefaultClient), model: modelName}, nil
}

// Chat sends a non-streaming chat request.
func (o *OllamaClient) Chat(ctx context.Context, messages []conversation.Message, availableTools []tools.Tool) (*conversation.Message, error) {
	ollamaTools, err := convertToolsToOllama(availableTools)
	if err != nil {
		return nil, err
	}
	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: convertMessagesToOllama(messages),
		Tools:    ollamaTools,
		Stream:   &stream,
	}

	var final api.Message
	err = o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		final.Content += resp.Message.Content
		final.ToolCalls = append(final.ToolCalls, resp.Message.ToolCalls...)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send message to ollama")
	}
	return processOllamaResponse(final)
}

func convertMessagesToOllama(messages []conversation.Message) []api.Message {
	out := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		m := api.Message{Role: string(msg.Role), Content: msg.Content}
		for _, tc := range msg.ToolCalls {
			var args map[string]any
			if err := json.Unmarshal([]byte(rawArgs(tc.Arguments)), &args); err != nil {
				args = map[string]any{}
			}
			m.ToolCalls = append(m.ToolCalls, api.ToolCall{
				Function: api.ToolCallFunction{Name: tc.Name, Arguments: args},
			})
		}
		out = append(out, m)
	}
	return out
}

func convertToolsToOllama(ts []tools.Tool) (api.Tools, error) {
	var out api.Tools
	for _, t := range ts {
		data, err := json.Marshal(t.Parameters())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode schema for %s", t.Name())
		}
		var params api.ToolFunctionParameters
		if err := json.Unmarshal(data, &params); err != nil {
			return nil, errors.Wrapf(err, "schema for %s is not usable by ollama", t.Name())
		}
		out = append(out, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  params,
			},
		})
	}
	return out, nil
}

// processOllamaResponse converts the reply. Ollama does not assign ids to tool
// calls, so one is generated for each.
func processOllamaResponse(msg api.Message) (*conversation.Message, error) {
	var calls []conversation.ToolCall
	for _, tc := range msg.ToolCalls {
		args, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode arguments for %s", tc.Function.Name)
		}
		calls = append(calls, conversation.ToolCall{
			ID:        "call_" + uuid.NewString(),
			Name:      tc.Function.Name,
			Arguments: rawArgs(string(args)),
		})
	}
	return assistantMessage(msg.Content, calls), nil
}
