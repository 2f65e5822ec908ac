package screen

import (
	"strconv"
	"strings"
)

// Color is one of the 16 basic terminal colours, or the terminal default.
type Color int

const (
	ColorDefault Color = iota - 1
	Black
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	BrightBlack
	BrightRed
	BrightGreen
	BrightYellow
	BrightBlue
	BrightMagenta
	BrightCyan
	BrightWhite
)

// Style is the visual attribute set of a cell.
type Style struct {
	FG      Color
	BG      Color
	Bold    bool
	Dim     bool
	Reverse bool
}

// DefaultStyle uses the terminal's own colours.
func DefaultStyle() Style {
	return Style{FG: ColorDefault, BG: ColorDefault}
}

func (s Style) WithFG(c Color) Style {
	s.FG = c
	return s
}

func (s Style) WithBold(b bool) Style {
	s.Bold = b
	return s
}

func (s Style) WithDim(d bool) Style {
	s.Dim = d
	return s
}

func (s Style) WithReverse(r bool) Style {
	s.Reverse = r
	return s
}

// SGR returns the escape sequence selecting s from a reset state.
func (s Style) SGR() string {
	parts := []string{"0"}
	if s.Bold {
		parts = append(parts, "1")
	}
	if s.Dim {
		parts = append(parts, "2")
	}
	if s.Reverse {
		parts = append(parts, "7")
	}
	parts = append(parts, colorCode(s.FG, 30, 90, 39))
	parts = append(parts, colorCode(s.BG, 40, 100, 49))
	return CSI + strings.Join(parts, ";") + "m"
}

func colorCode(c Color, base, brightBase, def int) string {
	switch {
	case c < Black || c > BrightWhite:
		return strconv.Itoa(def)
	case c < BrightBlack:
		return strconv.Itoa(base + int(c))
	default:
		return strconv.Itoa(brightBase + int(c-BrightBlack))
	}
}
