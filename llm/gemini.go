package llm

import (
	"context"
	"encoding/json"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/m4xw311/picode/conversation"
	"github.com/m4xw311/picode/errors"
	"github.com/m4xw311/picode/tools"
	"google.golang.org/api/option"
)

// GeminiClient is a client for the Google Gemini API.
type GeminiClient struct {
	model *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create genai client")
	}
	return &GeminiClient{model: client.GenerativeModel(modelName)}, nil
}

// Chat sends the history to Gemini. The last converted turn is the prompt and
// everything before it becomes the chat history.
func (g *GeminiClient) Chat(ctx context.Context, messages []conversation.Message, availableTools []tools.Tool) (*conversation.Message, error) {
	history, systemPrompt := convertMessagesToGemini(messages)
	if len(history) == 0 {
		return nil, errors.New("nothing to send to Gemini")
	}

	g.model.Tools = convertToolsToGemini(availableTools)
	g.model.SystemInstruction = nil
	if systemPrompt != "" {
		g.model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	last := history[len(history)-1]
	chatSession := g.model.StartChat()
	chatSession.History = history[:len(history)-1]
	resp, err := chatSession.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send message to Gemini")
	}
	return processGeminiResponse(resp)
}

// convertMessagesToGemini converts the history. Gemini addresses function
// results by name, not id, and wants all results for one model turn in a
// single user turn.
func convertMessagesToGemini(messages []conversation.Message) ([]*genai.Content, string) {
	names := toolNames(messages)
	var out []*genai.Content
	var systemPrompt string

	for _, msg := range messages {
		switch msg.Role {
		case conversation.RoleSystem:
			systemPrompt = msg.Content
		case conversation.RoleUser:
			out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		case conversation.RoleAssistant:
			var parts []genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				var args map[string]any
				if err := json.Unmarshal([]byte(rawArgs(tc.Arguments)), &args); err != nil {
					args = map[string]any{}
				}
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: args})
			}
			if len(parts) > 0 {
				out = append(out, &genai.Content{Role: "model", Parts: parts})
			}
		case conversation.RoleTool:
			part := genai.FunctionResponse{
				Name:     names[msg.ToolCallID],
				Response: map[string]any{"result": msg.Content},
			}
			if n := len(out); n > 0 && out[n-1].Role == "user" && isFunctionResponse(out[n-1]) {
				out[n-1].Parts = append(out[n-1].Parts, part)
				continue
			}
			out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{part}})
		}
	}
	return out, systemPrompt
}

func isFunctionResponse(c *genai.Content) bool {
	if len(c.Parts) == 0 {
		return false
	}
	_, ok := c.Parts[0].(genai.FunctionResponse)
	return ok
}

func convertToolsToGemini(ts []tools.Tool) []*genai.Tool {
	if len(ts) == 0 {
		return nil
	}
	var decls []*genai.FunctionDeclaration
	for _, t := range ts {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  geminiSchema(t.Parameters()),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

var geminiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// geminiSchema converts a JSON schema object to genai's typed schema.
func geminiSchema(schema map[string]any) *genai.Schema {
	s := &genai.Schema{Type: genai.TypeObject}
	if t, ok := schema["type"].(string); ok {
		if gt, ok := geminiTypes[t]; ok {
			s.Type = gt
		}
	}
	if d, ok := schema["description"].(string); ok {
		s.Description = d
	}
	if enum, ok := schema["enum"].([]any); ok {
		for _, e := range enum {
			if v, ok := e.(string); ok {
				s.Enum = append(s.Enum, v)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		s.Items = geminiSchema(items)
	}
	if s.Type == genai.TypeObject {
		props := schemaProperties(schema)
		if len(props) > 0 {
			s.Properties = make(map[string]*genai.Schema, len(props))
			for name, p := range props {
				if pm, ok := p.(map[string]any); ok {
					s.Properties[name] = geminiSchema(pm)
				}
			}
		}
		s.Required = schemaRequired(schema)
	}
	return s
}

// processGeminiResponse converts the first candidate. Gemini does not assign
// ids to function calls, so one is generated for each.
func processGeminiResponse(resp *genai.GenerateContentResponse) (*conversation.Message, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("received an empty response from Gemini")
	}

	var text string
	var calls []conversation.ToolCall
	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			text += string(v)
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to encode arguments for %s", v.Name)
			}
			calls = append(calls, conversation.ToolCall{
				ID:        "call_" + uuid.NewString(),
				Name:      v.Name,
				Arguments: rawArgs(string(args)),
			})
		default:
			return nil, errors.New("unsupported part type in Gemini response: %T", v)
		}
	}
	return assistantMessage(text, calls), nil
}
