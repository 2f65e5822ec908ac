// Package conversation holds the ordered message history exchanged with the
// model during one session. Messages are appended, never edited.
package conversation

import (
	"time"

	"github.com/m4xw311/picode/errors"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model request to invoke a tool. Arguments is raw JSON text as
// produced by the model; ID is echoed back unchanged in the tool result.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// HasToolCalls reports whether an assistant message asks for tool execution.
func (m Message) HasToolCalls() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

// Conversation is the message history. The first message is always the system
// prompt. It is not safe for concurrent use; background work operates on a
// Fork that the owner later merges back.
type Conversation struct {
	messages []Message
	issued   map[string]struct{}
	now      func() time.Time
}

// New starts a conversation with the given system prompt.
func New(systemPrompt string) *Conversation {
	c := &Conversation{
		issued: make(map[string]struct{}),
		now:    time.Now,
	}
	c.messages = append(c.messages, Message{Role: RoleSystem, Content: systemPrompt, Timestamp: c.now()})
	return c
}

// SetClock replaces the timestamp source.
func (c *Conversation) SetClock(now func() time.Time) { c.now = now }

func (c *Conversation) AddUser(text string) {
	c.messages = append(c.messages, Message{Role: RoleUser, Content: text, Timestamp: c.now()})
}

func (c *Conversation) AddAssistant(text string) {
	c.messages = append(c.messages, Message{Role: RoleAssistant, Content: text, Timestamp: c.now()})
}

// AddAssistantToolCalls records an assistant turn that requests tools. The
// content may be empty.
func (c *Conversation) AddAssistantToolCalls(text string, calls []ToolCall) {
	copied := make([]ToolCall, len(calls))
	copy(copied, calls)
	for _, call := range copied {
		c.issued[call.ID] = struct{}{}
	}
	c.messages = append(c.messages, Message{Role: RoleAssistant, Content: text, ToolCalls: copied, Timestamp: c.now()})
}

// AddToolResult records the output of the tool call with the given id.
func (c *Conversation) AddToolResult(id, content string) error {
	if id == "" {
		return errors.New("tool result without a tool call id")
	}
	if _, ok := c.issued[id]; !ok {
		return errors.New("tool result for unknown tool call id %q", id)
	}
	c.messages = append(c.messages, Message{Role: RoleTool, Content: content, ToolCallID: id, Timestamp: c.now()})
	return nil
}

// Messages returns a read-only snapshot of the history. Later appends do not
// affect the returned slice.
func (c *Conversation) Messages() []Message {
	return c.messages[:len(c.messages):len(c.messages)]
}

func (c *Conversation) Len() int { return len(c.messages) }

// Last returns the most recent message.
func (c *Conversation) Last() Message { return c.messages[len(c.messages)-1] }

// Fork returns an independent copy that can be appended to on another
// goroutine.
func (c *Conversation) Fork() *Conversation {
	f := &Conversation{
		messages: make([]Message, len(c.messages)),
		issued:   make(map[string]struct{}, len(c.issued)),
		now:      c.now,
	}
	copy(f.messages, c.messages)
	for id := range c.issued {
		f.issued[id] = struct{}{}
	}
	return f
}

// Merge appends the messages fork gained since it was taken from c. The fork
// must not have been taken from a shorter history than c currently holds.
func (c *Conversation) Merge(fork *Conversation) error {
	base := len(c.messages)
	if fork.Len() < base {
		return errors.New("fork has %d messages, conversation has %d", fork.Len(), base)
	}
	for _, m := range fork.messages[base:] {
		for _, call := range m.ToolCalls {
			c.issued[call.ID] = struct{}{}
		}
		c.messages = append(c.messages, m)
	}
	return nil
}
