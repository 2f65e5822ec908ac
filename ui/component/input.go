package component

import (
	"github.com/m4xw311/picode/ui/layout"
	"github.com/m4xw311/picode/ui/screen"
	"github.com/mattn/go-runewidth"
)

// Prompt precedes the input line.
const Prompt = "> "

var (
	promptStyle    = screen.DefaultStyle().WithFG(screen.Green).WithBold(true)
	separatorStyle = screen.DefaultStyle().WithDim(true)
)

// Input draws the separator rule and the single-line editor.
type Input struct{}

// Render draws text with the cursor at rune index cursor and returns the
// screen column of the cursor. When the text is wider than the line, the
// visible window is shifted so the cursor stays on screen.
func (in *Input) Render(buf *screen.Buffer, text []rune, cursor int) int {
	height, cols := buf.Size()
	sepRow, row := layout.InputSeparatorRow(height), layout.InputTextRow(height)
	buf.ClearRow(sepRow)
	buf.ClearRow(row)
	buf.Fill(sepRow, '-', separatorStyle)

	promptWidth := runewidth.StringWidth(Prompt)
	buf.Put(row, 0, Prompt, promptStyle)

	cursor = min(max(cursor, 0), len(text))
	start := WindowStart(text, cursor, cols-promptWidth)
	buf.Put(row, promptWidth, string(text[start:]), screen.DefaultStyle())
	return min(promptWidth+runewidth.StringWidth(string(text[start:cursor])), max(cols-1, 0))
}

// WindowStart returns the first rune shown when avail columns are available
// and the cursor sits before rune index cursor. One column is kept free for the
// cursor itself.
func WindowStart(text []rune, cursor, avail int) int {
	if avail <= 1 {
		return cursor
	}
	start := 0
	for start < cursor && runewidth.StringWidth(string(text[start:cursor])) > avail-1 {
		start++
	}
	return start
}
