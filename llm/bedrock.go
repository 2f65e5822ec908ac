package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/m4xw311/picode/conversation"
	"github.com/m4xw311/picode/errors"
	"github.com/m4xw311/picode/logging"
	"github.com/m4xw311/picode/tools"
	"github.com/tidwall/gjson"
)

const bedrockAnthropicVersion = "bedrock-2023-05-31"

// BedrockClient is a client for Anthropic models on AWS Bedrock.
type BedrockClient struct {
	client  *bedrockruntime.Client
	modelID string
	region  string
}

// NewBedrockClient uses the default AWS credential chain. BEDROCK_ENDPOINT_URL
// overrides the service endpoint.
func NewBedrockClient(ctx context.Context, modelID string, logger *slog.Logger) (*BedrockClient, error) {
	logger = logging.OrDefault(logger)
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load AWS config")
	}

	region := cfg.Region
	for _, env := range []string{"AWS_DEFAULT_REGION", "AWS_REGION"} {
		if region == "" {
			region = os.Getenv(env)
		}
	}
	if region == "" {
		region = "us-east-1"
	}
	cfg.Region = region

	var opts []func(*bedrockruntime.Options)
	if endpoint := os.Getenv("BEDROCK_ENDPOINT_URL"); endpoint != "" {
		opts = append(opts, func(o *bedrockruntime.Options) { o.BaseEndpoint = aws.String(endpoint) })
	}
	logger.Debug("bedrock client configured", "region", region, "model", modelID)

	return &BedrockClient{
		client:  bedrockruntime.NewFromConfig(cfg, opts...),
		modelID: modelID,
		region:  region,
	}, nil
}

// Chat sends the history as an Anthropic messages body through InvokeModel.
func (b *BedrockClient) Chat(ctx context.Context, messages []conversation.Message, availableTools []tools.Tool) (*conversation.Message, error) {
	body, err := createBedrockRequest(messages, availableTools)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create Bedrock request")
	}

	resp, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to invoke Bedrock model")
	}
	return processBedrockResponse(resp.Body)
}

func textBlock(text string) map[string]any {
	return map[string]any{"type": "text", "text": text}
}

// convertMessagesToBedrock mirrors the Anthropic conversion on plain maps.
func convertMessagesToBedrock(messages []conversation.Message) ([]map[string]any, string) {
	var out []map[string]any
	var systemPrompt string
	var pendingResults []map[string]any

	flush := func() {
		if len(pendingResults) > 0 {
			out = append(out, map[string]any{"role": "user", "content": pendingResults})
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
			out = append(out, map[string]any{"role": "user", "content": []map[string]any{textBlock(msg.Content)}})
		case conversation.RoleAssistant:
			var blocks []map[string]any
			if msg.Content != "" {
				blocks = append(blocks, textBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, map[string]any{
					"type":  "tool_use",
					"id":    tc.ID,
					"name":  tc.Name,
					"input": json.RawMessage(rawArgs(tc.Arguments)),
				})
			}
			if len(blocks) > 0 {
				out = append(out, map[string]any{"role": "assistant", "content": blocks})
			}
		case conversation.RoleTool:
			pendingResults = append(pendingResults, map[string]any{
				"type":        "tool_result",
				"tool_use_id": msg.ToolCallID,
				"content":     msg.Content,
			})
		}
	}
	flush()
	return out, systemPrompt
}

func createBedrockRequest(messages []conversation.Message, availableTools []tools.Tool) ([]byte, error) {
	converted, systemPrompt := convertMessagesToBedrock(messages)
	request := map[string]any{
		"anthropic_version": bedrockAnthropicVersion,
		"max_tokens":        anthropicMaxTokens,
		"messages":          converted,
	}
	if systemPrompt != "" {
		request["system"] = systemPrompt
	}
	if len(availableTools) > 0 {
		var defs []map[string]any
		for _, t := range availableTools {
			defs = append(defs, map[string]any{
				"name":         t.Name(),
				"description":  t.Description(),
				"input_schema": t.Parameters(),
			})
		}
		request["tools"] = defs
	}
	return json.Marshal(request)
}

func processBedrockResponse(body []byte) (*conversation.Message, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid JSON in Bedrock response")
	}
	resp := gjson.ParseBytes(body)
	if e := resp.Get("error"); e.Exists() {
		return nil, errors.New("Bedrock API error: %s", e.String())
	}

	var text string
	var calls []conversation.ToolCall
	for i, item := range resp.Get("content").Array() {
		switch item.Get("type").String() {
		case "text":
			text += item.Get("text").String()
		case "tool_use":
			name := item.Get("name").String()
			id := item.Get("id").String()
			if id == "" {
				id = fmt.Sprintf("call_%d_%s", i, name)
			}
			args := "{}"
			if input := item.Get("input"); input.Exists() {
				args = input.Raw
			}
			calls = append(calls, conversation.ToolCall{ID: id, Name: name, Arguments: args})
		}
	}
	return assistantMessage(text, calls), nil
}
