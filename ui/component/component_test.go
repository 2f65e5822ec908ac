package component

import (
	"strings"
	"testing"
	"time"

	"github.com/m4xw311/picode/conversation"
	"github.com/m4xw311/picode/ui/layout"
	"github.com/m4xw311/picode/ui/screen"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "hello", 10, []string{"hello"}},
		{"word break", "hello big world", 9, []string{"hello big", "world"}},
		{"space at limit", "abcde fgh", 5, []string{"abcde", "fgh"}},
		{"hard break", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"newlines", "a\n\nb", 10, []string{"a", "", "b"}},
		{"tabs", "a\tb", 10, []string{"a    b"}},
		{"control stripped", "a\x1b[31mb", 10, []string{"a[31mb"}},
		{"empty", "", 5, []string{""}},
		{"wide", "日本語です", 4, []string{"日本", "語で", "す"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Wrap(tc.text, tc.width))
		})
	}
}

func TestWrapProperties(t *testing.T) {
	texts := []string{
		"The quick brown fox jumps over the lazy dog near the riverbank at dawn.",
		"supercalifragilisticexpialidocious is long",
		"short",
		"a b c d e f g h i j k l m n o p",
	}
	for _, text := range texts {
		for width := 1; width <= 30; width++ {
			lines := Wrap(text, width)
			for _, l := range lines {
				assert.LessOrEqual(t, runewidth.StringWidth(l), width, "width %d line %q", width, l)
			}
			// Only break spaces are lost.
			joined := strings.ReplaceAll(strings.Join(lines, ""), " ", "")
			assert.Equal(t, strings.ReplaceAll(text, " ", ""), joined, "width %d", width)
		}
	}
}

func msg(role conversation.Role, content string) conversation.Message {
	return conversation.Message{Role: role, Content: content}
}

func TestMessageListRendersPrefixesAndSeparators(t *testing.T) {
	buf := screen.NewBuffer(12, 30)
	list := NewMessageList()
	msgs := []conversation.Message{
		msg(conversation.RoleSystem, "hidden"),
		msg(conversation.RoleUser, "hi"),
		{Role: conversation.RoleAssistant, ToolCalls: []conversation.ToolCall{{ID: "c1", Name: "list_files"}}},
		{Role: conversation.RoleTool, Content: "[FILE] a", ToolCallID: "c1"},
		msg(conversation.RoleAssistant, "hello back"),
	}
	list.Render(buf, msgs)

	start := layout.MessageStartRow
	assert.Equal(t, "> hi", strings.TrimRight(buf.Text(start), " "))
	assert.Equal(t, "", strings.TrimRight(buf.Text(start+1), " "))
	assert.Equal(t, "  [tool] list_files", strings.TrimRight(buf.Text(start+2), " "))
	assert.Equal(t, "", strings.TrimRight(buf.Text(start+3), " "))
	assert.Equal(t, "< hello back", strings.TrimRight(buf.Text(start+4), " "))
	assert.Equal(t, 5, list.Total())
}

func TestMessageListTimestamp(t *testing.T) {
	buf := screen.NewBuffer(8, 20)
	list := NewMessageList()
	m := msg(conversation.RoleUser, "hey")
	m.Timestamp = time.Date(2024, 5, 6, 9, 7, 0, 0, time.Local)
	list.Render(buf, []conversation.Message{m})
	assert.Equal(t, "> hey          09:07", buf.Text(layout.MessageStartRow))

	narrow := screen.NewBuffer(8, 8)
	list.Render(narrow, []conversation.Message{m})
	assert.Equal(t, "> hey   ", narrow.Text(layout.MessageStartRow))
}

func manyMessages(n int) []conversation.Message {
	var msgs []conversation.Message
	for i := 0; i < n; i++ {
		msgs = append(msgs, msg(conversation.RoleUser, "line"))
	}
	return msgs
}

func TestMessageListScrollClamp(t *testing.T) {
	buf := screen.NewBuffer(10, 20) // four message rows
	list := NewMessageList()
	msgs := manyMessages(5) // nine display lines with separators

	list.Render(buf, msgs)
	assert.Equal(t, 5, list.Offset(), "pinned to bottom")
	assert.Equal(t, "100%", strings.TrimSpace(buf.Text(layout.MessageEndRow(10))[10:]))

	list.ScrollUp(100)
	list.Render(buf, msgs)
	assert.Equal(t, 0, list.Offset())
	assert.Contains(t, buf.Text(layout.MessageEndRow(10)), "44%")

	list.ScrollDown(2)
	list.Render(buf, msgs)
	assert.Equal(t, 2, list.Offset())

	list.ScrollDown(100)
	list.Render(buf, msgs)
	assert.Equal(t, 5, list.Offset())

	// Fewer lines than rows: offset stays at zero and no indicator is shown.
	list.ScrollUp(3)
	list.Render(buf, manyMessages(1))
	assert.Equal(t, 0, list.Offset())
	assert.NotContains(t, buf.Text(layout.MessageEndRow(10)), "%")
}

func TestMessageListNewContentFollowsWhenPinned(t *testing.T) {
	buf := screen.NewBuffer(10, 20)
	list := NewMessageList()
	list.Render(buf, manyMessages(5))
	list.ScrollUp(1)
	list.Render(buf, manyMessages(6))
	assert.Equal(t, 4, list.Offset(), "scrolled view stays put")

	list.ScrollToBottom()
	list.Render(buf, manyMessages(6))
	assert.Equal(t, 7, list.Offset())
}

func TestMessageListTinyScreen(t *testing.T) {
	buf := screen.NewBuffer(4, 10)
	list := NewMessageList()
	assert.NotPanics(t, func() {
		list.Render(buf, manyMessages(3))
		list.ScrollUp(1)
		list.ScrollDown(1)
	})
}

func TestScrollPercent(t *testing.T) {
	assert.Equal(t, 100, ScrollPercent(0, 10, 0))
	assert.Equal(t, 50, ScrollPercent(0, 5, 10))
	assert.Equal(t, 100, ScrollPercent(8, 5, 10))
	assert.Equal(t, 33, ScrollPercent(0, 1, 3))
}

func TestInputWindowKeepsCursorVisible(t *testing.T) {
	buf := screen.NewBuffer(6, 10) // eight columns after the prompt
	in := &Input{}

	text := []rune("abcdefghijklmnop")
	col := in.Render(buf, text, len(text))
	row := layout.InputTextRow(6)
	assert.Equal(t, "> jklmnop", strings.TrimRight(buf.Text(row), " "))
	assert.Equal(t, 9, col)

	col = in.Render(buf, text, 0)
	assert.Equal(t, "> abcdefgh", buf.Text(row))
	assert.Equal(t, 2, col)

	col = in.Render(buf, []rune("hi"), 1)
	assert.Equal(t, 3, col)
	assert.Equal(t, "----------", buf.Text(layout.InputSeparatorRow(6)))
}

func TestWindowStart(t *testing.T) {
	text := []rune("0123456789")
	assert.Equal(t, 0, WindowStart(text, 4, 8))
	assert.Equal(t, 3, WindowStart(text, 10, 8))
	assert.Equal(t, 5, WindowStart(text, 5, 1))
}

func TestHeaderAndStatus(t *testing.T) {
	buf := screen.NewBuffer(8, 20)
	h := &Header{Title: "title", Subtitle: "sub"}
	h.Render(buf)
	assert.Equal(t, "       title        ", buf.Text(layout.TitleRow))
	assert.Equal(t, "        sub         ", buf.Text(layout.SubtitleRow))
	assert.Equal(t, strings.Repeat("=", 20), buf.Text(layout.HeaderRuleRow))

	s := NewStatusBar()
	s.SetText("Thinking...")
	s.Render(buf)
	require.Equal(t, "Thinking...", s.Text())
	assert.Equal(t, " Thinking...        ", buf.Text(layout.StatusRow(8)))
	assert.True(t, buf.Cell(layout.StatusRow(8), 19).Style.Reverse)
}
