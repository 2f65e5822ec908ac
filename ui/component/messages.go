package component

import (
	"fmt"
	"math"

	"github.com/m4xw311/picode/conversation"
	"github.com/m4xw311/picode/ui/layout"
	"github.com/m4xw311/picode/ui/screen"
	"github.com/mattn/go-runewidth"
)

const (
	userPrefix      = "> "
	assistantPrefix = "< "
	continuation    = "  "
	timeFormat      = "15:04"
)

var (
	userStyle      = screen.DefaultStyle().WithFG(screen.Blue)
	assistantStyle = screen.DefaultStyle().WithFG(screen.Yellow)
	toolStyle      = screen.DefaultStyle().WithDim(true)
	timeStyle      = screen.DefaultStyle().WithDim(true)
	indicatorStyle = screen.DefaultStyle().WithFG(screen.Cyan)
)

// line is one wrapped display row of the message band.
type line struct {
	prefix string
	text   string
	style  screen.Style
	stamp  string
}

// MessageList draws the conversation into the message band and keeps the
// scroll position. The offset counts wrapped display lines from the top and is
// clamped on every render; a pinned list follows the newest line.
type MessageList struct {
	offset    int
	pinned    bool
	lastTotal int
	lastRows  int
}

func NewMessageList() *MessageList {
	return &MessageList{pinned: true}
}

// ScrollUp moves the view n lines towards older messages.
func (m *MessageList) ScrollUp(n int) {
	if m.pinned {
		m.offset = max(0, m.lastTotal-m.lastRows)
		m.pinned = false
	}
	m.offset = max(0, m.offset-n)
}

// ScrollDown moves the view n lines towards newer messages. Reaching the end
// pins the list to the bottom again.
func (m *MessageList) ScrollDown(n int) {
	if m.pinned {
		return
	}
	m.offset += n
	if m.offset >= m.lastTotal-m.lastRows {
		m.pinned = true
	}
}

// ScrollToBottom pins the view to the newest line.
func (m *MessageList) ScrollToBottom() { m.pinned = true }

// Offset returns the first visible line as of the last render.
func (m *MessageList) Offset() int { return m.offset }

// Total returns the number of display lines as of the last render.
func (m *MessageList) Total() int { return m.lastTotal }

// lines flattens the displayable messages into wrapped rows. Consecutive
// messages are separated by a blank row when the band has room for more than
// one row.
func (m *MessageList) lines(msgs []conversation.Message, cols, rows int) []line {
	width := cols - runewidth.StringWidth(userPrefix)
	var out []line
	first := true
	for _, msg := range msgs {
		block := messageLines(msg, width)
		if len(block) == 0 {
			continue
		}
		if !first && rows > 1 {
			out = append(out, line{})
		}
		first = false
		if !msg.Timestamp.IsZero() {
			stamp := msg.Timestamp.Format(timeFormat)
			if runewidth.StringWidth(block[0].prefix+block[0].text)+1+len(stamp) <= cols {
				block[0].stamp = stamp
			}
		}
		out = append(out, block...)
	}
	return out
}

func messageLines(msg conversation.Message, width int) []line {
	var prefix string
	var style screen.Style
	switch msg.Role {
	case conversation.RoleUser:
		prefix, style = userPrefix, userStyle
	case conversation.RoleAssistant:
		prefix, style = assistantPrefix, assistantStyle
	default:
		return nil
	}

	var out []line
	if msg.Content != "" {
		for i, text := range Wrap(msg.Content, width) {
			p := continuation
			if i == 0 {
				p = prefix
			}
			out = append(out, line{prefix: p, text: text, style: style})
		}
	}
	for _, call := range msg.ToolCalls {
		out = append(out, line{prefix: continuation, text: "[tool] " + call.Name, style: toolStyle})
	}
	return out
}

// Render draws msgs into the message band of buf.
func (m *MessageList) Render(buf *screen.Buffer, msgs []conversation.Message) {
	height, cols := buf.Size()
	rows := layout.MessageRows(height)
	band := layout.MessageBand(height)
	for _, r := range band {
		buf.ClearRow(r)
	}

	all := m.lines(msgs, cols, rows)
	total := len(all)
	m.lastTotal, m.lastRows = total, rows

	maxOffset := max(0, total-rows)
	if m.pinned {
		m.offset = maxOffset
	}
	m.offset = min(max(m.offset, 0), maxOffset)

	for i, r := range band {
		idx := m.offset + i
		if idx >= total {
			break
		}
		l := all[idx]
		col := buf.Put(r, 0, l.prefix, l.style.WithBold(true))
		buf.Put(r, col, l.text, l.style)
		if l.stamp != "" {
			buf.Put(r, cols-len(l.stamp), l.stamp, timeStyle)
		}
	}

	if total > rows && rows > 0 {
		ind := fmt.Sprintf("%d%%", ScrollPercent(m.offset, rows, total))
		buf.Put(band[len(band)-1], max(0, cols-len(ind)), ind, indicatorStyle)
	}
}

// ScrollPercent is how far through the content the bottom of the view is.
func ScrollPercent(offset, visible, total int) int {
	if total <= 0 {
		return 100
	}
	pct := math.Round(100 * float64(min(offset+visible, total)) / float64(total))
	return int(min(max(pct, 0), 100))
}
