package component

import (
	"strings"

	"github.com/m4xw311/picode/ui/layout"
	"github.com/m4xw311/picode/ui/screen"
)

// DefaultStatus lists the key bindings.
const DefaultStatus = "↑↓ scroll | PgUp/Dn page | ESC=quit | Enter=send"

var statusStyle = screen.DefaultStyle().WithReverse(true)

// StatusBar is a single inverse-video row whose text can change between
// frames.
type StatusBar struct {
	text string
}

func NewStatusBar() *StatusBar { return &StatusBar{text: DefaultStatus} }

func (s *StatusBar) SetText(text string) { s.text = text }

func (s *StatusBar) Text() string { return s.text }

func (s *StatusBar) Render(buf *screen.Buffer) {
	height, cols := buf.Size()
	row := layout.StatusRow(height)
	buf.ClearRow(row)
	buf.Put(row, 0, strings.Repeat(" ", cols), statusStyle)
	buf.Put(row, 1, s.text, statusStyle)
}
