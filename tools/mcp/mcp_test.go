package mcp

import (
	"context"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	pages   []*mcpsdk.ListToolsResult
	calls   []*mcpsdk.CallToolParams
	result  *mcpsdk.CallToolResult
	closed  bool
	cursors []string
}

func (f *fakeSession) ListTools(_ context.Context, p *mcpsdk.ListToolsParams) (*mcpsdk.ListToolsResult, error) {
	f.cursors = append(f.cursors, p.Cursor)
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeSession) CallTool(_ context.Context, p *mcpsdk.CallToolParams) (*mcpsdk.CallToolResult, error) {
	f.calls = append(f.calls, p)
	return f.result, nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func TestDiscoverFollowsCursor(t *testing.T) {
	fake := &fakeSession{pages: []*mcpsdk.ListToolsResult{
		{Tools: []*mcpsdk.Tool{{Name: "search", Description: "find things"}}, NextCursor: "p2"},
		{Tools: []*mcpsdk.Tool{{Name: "fetch"}}},
	}}
	c := &Client{Name: "web", conn: fake}

	require.NoError(t, c.discover(context.Background()))
	assert.Equal(t, []string{"", "p2"}, fake.cursors)
	require.Len(t, c.Tools(), 2)
	assert.Equal(t, "web__search", c.Tools()[0].Name())
	assert.Equal(t, "find things", c.Tools()[0].Description())
	assert.Equal(t, "object", c.Tools()[1].Parameters()["type"])
}

func TestToolExecute(t *testing.T) {
	fake := &fakeSession{result: &mcpsdk.CallToolResult{Content: []mcpsdk.Content{
		&mcpsdk.TextContent{Text: "hello "},
		&mcpsdk.TextContent{Text: "world"},
	}}}
	c := &Client{Name: "web", conn: fake}
	tool := &Tool{serverName: "web", toolName: "search", client: c}

	out, err := tool.Execute(context.Background(), `{"q":"go"}`)
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "search", fake.calls[0].Name)
	assert.Equal(t, map[string]any{"q": "go"}, fake.calls[0].Arguments)

	fake.result = &mcpsdk.CallToolResult{IsError: true, Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "rate limited"}}}
	_, err = tool.Execute(context.Background(), `{}`)
	assert.ErrorContains(t, err, "rate limited")

	_, err = tool.Execute(context.Background(), `{`)
	assert.Error(t, err)
}

func TestStopAllSkipsNil(t *testing.T) {
	fake := &fakeSession{}
	StopAll([]*Client{nil, {Name: "x", conn: fake}})
	assert.True(t, fake.closed)
}

func TestSchemaMap(t *testing.T) {
	assert.Equal(t, "object", schemaMap(nil)["type"])
	m := schemaMap(map[string]any{"properties": map[string]any{"q": map[string]any{"type": "string"}}})
	assert.Equal(t, "object", m["type"])
	assert.Contains(t, m, "properties")
}
