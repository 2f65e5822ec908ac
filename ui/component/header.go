package component

import (
	"github.com/m4xw311/picode/ui/layout"
	"github.com/m4xw311/picode/ui/screen"
	"github.com/mattn/go-runewidth"
)

// Header draws a centred title, a subtitle and a full-width rule.
type Header struct {
	Title    string
	Subtitle string
}

var (
	titleStyle    = screen.DefaultStyle().WithFG(screen.Green).WithBold(true)
	subtitleStyle = screen.DefaultStyle().WithFG(screen.Cyan)
	ruleStyle     = screen.DefaultStyle().WithFG(screen.Green)
)

func (h *Header) Render(buf *screen.Buffer) {
	_, cols := buf.Size()
	for _, r := range layout.HeaderBand() {
		buf.ClearRow(r)
	}
	buf.Put(layout.TitleRow, centre(h.Title, cols), h.Title, titleStyle)
	buf.Put(layout.SubtitleRow, centre(h.Subtitle, cols), h.Subtitle, subtitleStyle)
	buf.Fill(layout.HeaderRuleRow, '=', ruleStyle)
}

func centre(s string, cols int) int {
	return max(0, (cols-runewidth.StringWidth(s))/2)
}
