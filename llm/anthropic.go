package llm

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m4xw311/picode/conversation"
	"github.com/m4xw311/picode/errors"
	"github.com/m4xw311/picode/tools"
)

const anthropicMaxTokens = 4096

// AnthropicClient is a client for the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicClient(apiKey, baseURL, modelName string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key not set")
	}
	options := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(options...)
	return &AnthropicClient{client: &client, model: modelName}, nil
}

// Chat sends a chat request to the Anthropic API. The system prompt travels
// separately from the messages.
func (a *AnthropicClient) Chat(ctx context.Context, messages []conversation.Message, availableTools []tools.Tool) (*conversation.Message, error) {
	anthropicMessages, systemPrompt := convertMessagesToAnthropic(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		Messages:  anthropicMessages,
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	for _, toolParam := range convertToolsToAnthropic(availableTools) {
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{OfTool: &toolParam})
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send message to Anthropic")
	}
	return processAnthropicResponse(resp), nil
}

// convertMessagesToAnthropic converts the history. Consecutive tool results are
// grouped into a single user turn, as the API requires all results for one
// assistant turn to arrive together.
func convertMessagesToAnthropic(messages []conversation.Message) ([]anthropic.MessageParam, string) {
	var out []anthropic.MessageParam
	var systemPrompt string
	var pendingResults []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(pendingResults) > 0 {
			out = append(out, anthropic.MessageParam{Role: anthropic.MessageParamRoleUser, Content: pendingResults})
			pendingResults = nil
		}
	}

	for _, msg := range messages {
		if msg.Role != conversation.RoleTool {
			flush()
		}
		switch msg.Role {
		case conversation.RoleSystem:
			systemPrompt = msg.Content
		case conversation.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case conversation.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfText: &anthropic.TextBlockParam{Text: msg.Content}})
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    tc.ID,
						Name:  tc.Name,
						Input: json.RawMessage(rawArgs(tc.Arguments)),
					},
				})
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.MessageParam{Role: anthropic.MessageParamRoleAssistant, Content: blocks})
			}
		case conversation.RoleTool:
			pendingResults = append(pendingResults, anthropic.ContentBlockParamUnion{
				OfToolResult: &anthropic.ToolResultBlockParam{
					ToolUseID: msg.ToolCallID,
					Content: []anthropic.ToolResultBlockParamContentUnion{{
						OfText: &anthropic.TextBlockParam{Text: msg.Content},
					}},
				},
			})
		}
	}
	flush()
	return out, systemPrompt
}

func convertToolsToAnthropic(ts []tools.Tool) []anthropic.ToolParam {
	var out []anthropic.ToolParam
	for _, t := range ts {
		schema := t.Parameters()
		out = append(out, anthropic.ToolParam{
			Name:        t.Name(),
			Description: anthropic.String(t.Description()),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schemaProperties(schema),
				Required:   schemaRequired(schema),
			},
		})
	}
	return out
}

func processAnthropicResponse(resp *anthropic.Message) *conversation.Message {
	var text string
	var calls []conversation.ToolCall
	for _, content := range resp.Content {
		switch c := content.AsAny().(type) {
		case anthropic.TextBlock:
			text += c.Text
		case anthropic.ToolUseBlock:
			calls = append(calls, conversation.ToolCall{
				ID:        c.ID,
				Name:      c.Name,
				Arguments: rawArgs(string(c.Input)),
			})
		}
	}
	return assistantMessage(text, calls)
}
