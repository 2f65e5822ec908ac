package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStartsWithSystemPrompt(t *testing.T) {
	c := New("be brief")
	require.Equal(t, 1, c.Len())
	assert.Equal(t, RoleSystem, c.Messages()[0].Role)
	assert.Equal(t, "be brief", c.Messages()[0].Content)
}

func TestToolResultRequiresIssuedID(t *testing.T) {
	c := New("sys")
	c.AddUser("list files")

	assert.Error(t, c.AddToolResult("", "x"))
	assert.Error(t, c.AddToolResult("c1", "x"))

	c.AddAssistantToolCalls("", []ToolCall{{ID: "c1", Name: "list_files", Arguments: `{"path":"."}`}})
	require.NoError(t, c.AddToolResult("c1", "[FILE] a.txt"))

	last := c.Last()
	assert.Equal(t, RoleTool, last.Role)
	assert.Equal(t, "c1", last.ToolCallID)
	assert.True(t, c.Messages()[2].HasToolCalls())
}

func TestMessagesSnapshotIsStable(t *testing.T) {
	c := New("sys")
	snap := c.Messages()
	c.AddUser("hi")
	assert.Len(t, snap, 1)
	assert.Equal(t, 2, c.Len())
}

func TestForkAndMerge(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)
	c := New("sys")
	c.SetClock(func() time.Time { return fixed })
	c.AddUser("hi")

	f := c.Fork()
	f.AddAssistantToolCalls("", []ToolCall{{ID: "c9", Name: "read_file"}})
	require.NoError(t, f.AddToolResult("c9", "body"))
	f.AddAssistant("done")
	assert.Equal(t, 2, c.Len(), "fork must not touch the parent")

	require.NoError(t, c.Merge(f))
	require.Equal(t, 5, c.Len())
	assert.Equal(t, "done", c.Last().Content)
	assert.Equal(t, fixed, c.Last().Timestamp)

	// Ids issued inside the fork are known to the parent after merging.
	c.AddAssistantToolCalls("", nil)
	assert.NoError(t, c.AddToolResult("c9", "again"))
}

func TestMergeRejectsStaleFork(t *testing.T) {
	c := New("sys")
	f := c.Fork()
	c.AddUser("a")
	c.AddUser("b")
	assert.Error(t, c.Merge(f))
}
