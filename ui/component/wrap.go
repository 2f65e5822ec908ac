package component

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const tabWidth = 4

// sanitize expands tabs and drops control characters other than newlines.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\t':
			b.WriteString(strings.Repeat(" ", tabWidth))
		case r == '\n':
			b.WriteRune(r)
		case r < ' ' || r == 0x7f:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Wrap breaks text into lines no wider than width display columns. Embedded
// newlines start a new line. A long line breaks at the last space that fits,
// which is consumed, or mid-word when there is none.
func Wrap(text string, width int) []string {
	width = max(width, 1)
	var out []string
	for _, para := range strings.Split(sanitize(text), "\n") {
		out = append(out, wrapParagraph([]rune(para), width)...)
	}
	return out
}

func wrapParagraph(runes []rune, width int) []string {
	var out []string
	for runewidth.StringWidth(string(runes)) > width {
		w, cut, lastSpace := 0, 0, -1
		for i, r := range runes {
			rw := runewidth.RuneWidth(r)
			if w+rw > width {
				break
			}
			w += rw
			cut = i + 1
			if r == ' ' {
				lastSpace = i
			}
		}
		if cut < len(runes) && runes[cut] == ' ' {
			lastSpace = cut
		}
		switch {
		case lastSpace > 0:
			out = append(out, string(runes[:lastSpace]))
			runes = runes[lastSpace+1:]
		case cut == 0:
			out = append(out, string(runes[:1]))
			runes = runes[1:]
		default:
			out = append(out, string(runes[:cut]))
			runes = runes[cut:]
		}
	}
	if len(runes) > 0 || len(out) == 0 {
		out = append(out, string(runes))
	}
	return out
}
