package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/m4xw311/picode/conversation"
	"github.com/m4xw311/picode/llm"
	"github.com/m4xw311/picode/logging"
	"github.com/m4xw311/picode/tools"
)

const (
	// MaxToolRounds bounds the model calls made for one user message.
	MaxToolRounds = 10

	// NoResponse stands in for an empty final reply.
	NoResponse = "(no response)"
)

// StoppedReply is returned when the model keeps requesting tools past the cap.
var StoppedReply = fmt.Sprintf("Stopped after %d tool rounds.", MaxToolRounds)

// ProcessCallbacks lets a front end observe a run. Callbacks are invoked on
// the goroutine executing Run; nil callbacks are skipped.
type ProcessCallbacks struct {
	OnToolCall   func(call conversation.ToolCall)
	OnToolResult func(call conversation.ToolCall, result string)
}

// Loop drives the model/tool exchange for one user message at a time.
type Loop struct {
	client    llm.Client
	registry  *tools.Registry
	logger    *slog.Logger
	callbacks ProcessCallbacks
}

func New(client llm.Client, registry *tools.Registry, logger *slog.Logger) *Loop {
	if registry == nil {
		registry = tools.NewRegistry(logger)
	}
	return &Loop{client: client, registry: registry, logger: logging.OrDefault(logger)}
}

// WithCallbacks returns a copy of l reporting to cb.
func (l *Loop) WithCallbacks(cb ProcessCallbacks) *Loop {
	c := *l
	c.callbacks = cb
	return &c
}

// Process appends the user's text to conv and runs the exchange.
func (l *Loop) Process(ctx context.Context, conv *conversation.Conversation, userText string) string {
	conv.AddUser(userText)
	return l.Run(ctx, conv)
}

// Run asks the model for the next turn of conv until it answers without tool
// calls or MaxToolRounds calls have been made. Every produced message,
// including the final reply, is appended to conv. Transport errors end the
// run with an "Error: ..." reply instead of failing.
func (l *Loop) Run(ctx context.Context, conv *conversation.Conversation) string {
	available := l.registry.Tools()

	for round := 1; round <= MaxToolRounds; round++ {
		reply, err := l.client.Chat(ctx, conv.Messages(), available)
		if err != nil {
			l.logger.Error("LLM chat failed", "round", round, "error", err)
			text := "Error: " + err.Error()
			conv.AddAssistant(text)
			return text
		}

		if len(reply.ToolCalls) == 0 {
			text := reply.Content
			if text == "" {
				text = NoResponse
			}
			conv.AddAssistant(text)
			l.logger.Debug("final reply", "round", round, "chars", len(text))
			return text
		}

		calls := make([]conversation.ToolCall, len(reply.ToolCalls))
		for i, call := range reply.ToolCalls {
			if call.ID == "" {
				call.ID = "call_" + uuid.NewString()
			}
			calls[i] = call
		}
		conv.AddAssistantToolCalls(reply.Content, calls)

		for _, call := range calls {
			l.logger.Info("tool call", "round", round, "tool", call.Name, "id", call.ID)
			if l.callbacks.OnToolCall != nil {
				l.callbacks.OnToolCall(call)
			}

			result := l.registry.Execute(ctx, call.Name, call.Arguments)

			l.logger.Info("tool result", "tool", call.Name, "id", call.ID, "chars", len(result))
			if l.callbacks.OnToolResult != nil {
				l.callbacks.OnToolResult(call, result)
			}
			if err := conv.AddToolResult(call.ID, result); err != nil {
				l.logger.Error("could not record tool result", "tool", call.Name, "error", err)
			}
		}
	}

	l.logger.Warn("tool round cap reached", "rounds", MaxToolRounds)
	conv.AddAssistant(StoppedReply)
	return StoppedReply
}
