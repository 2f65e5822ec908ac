package llm

import (
	"context"
	"sync"

	"github.com/m4xw311/picode/conversation"
	"github.com/m4xw311/picode/errors"
	"github.com/m4xw311/picode/tools"
)

// MockClient replays scripted replies and records every request. Once the
// script is exhausted it repeats the last reply.
type MockClient struct {
	mu      sync.Mutex
	replies []MockReply
	calls   [][]conversation.Message
}

// MockReply is one scripted response: either a message or an error.
type MockReply struct {
	Message *conversation.Message
	Err     error
}

func NewMockClient(replies ...MockReply) *MockClient {
	return &MockClient{replies: replies}
}

// Text is a scripted plain assistant reply.
func Text(content string) MockReply {
	return MockReply{Message: assistantMessage(content, nil)}
}

// Calls is a scripted assistant reply requesting tools.
func Calls(calls ...conversation.ToolCall) MockReply {
	return MockReply{Message: assistantMessage("", calls)}
}

func Fail(err error) MockReply {
	return MockReply{Err: err}
}

func (m *MockClient) Chat(ctx context.Context, messages []conversation.Message, availableTools []tools.Tool) (*conversation.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]conversation.Message, len(messages))
	copy(snapshot, messages)
	m.calls = append(m.calls, snapshot)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.replies) == 0 {
		return nil, errors.New("mock client has no scripted replies")
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	msg := *reply.Message
	return &msg, nil
}

// Requests returns the message histories received so far.
func (m *MockClient) Requests() [][]conversation.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]conversation.Message, len(m.calls))
	copy(out, m.calls)
	return out
}
