// Package input turns raw terminal bytes into Actions. It understands the
// control keys, CSI and SS3 cursor sequences, SGR mouse wheel reports and
// UTF-8 text, and owns the line being edited.
package input

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m4xw311/picode/errors"
)

// EscapeTimeout is how long the decoder waits for the rest of an escape
// sequence. A lone ESC is recognised when nothing follows within it.
const EscapeTimeout = 50 * time.Millisecond

const (
	// PageAmount is the scroll distance of PgUp/PgDn.
	PageAmount = 5
	// WheelAmount is the scroll distance of one mouse wheel notch.
	WheelAmount = 2

	maxParams = 32
)

// ErrTimeout is returned by a ByteSource when no byte arrived in time.
var ErrTimeout = errors.Sentinel("input: read timed out")

// ByteSource yields terminal input one byte at a time. ReadByte waits at most
// timeout and returns ErrTimeout when nothing arrived, or io.EOF when input
// has ended.
type ByteSource interface {
	ReadByte(timeout time.Duration) (byte, error)
}

const (
	keyCtrlA     = 1
	keyCtrlC     = 3
	keyCtrlE     = 5
	keyCtrlH     = 8
	keyLF        = 10
	keyCR        = 13
	keyCtrlU     = 21
	keyEscape    = 27
	keyBackspace = 127
)

// Decoder maps bytes to Actions. It holds the input line so that Enter can
// submit and clear it.
type Decoder struct {
	line LineBuffer
	hold bool
}

func NewDecoder() *Decoder { return &Decoder{} }

// Line returns the input line the decoder submits from.
func (d *Decoder) Line() *LineBuffer { return &d.line }

// HoldSubmits makes Enter a no-op that keeps the line, while a previous
// submission is still being answered.
func (d *Decoder) HoldSubmits(hold bool) { d.hold = hold }

func (d *Decoder) Holding() bool { return d.hold }

// Decode returns the Action for first byte b, reading any further bytes of a
// multi-byte sequence from src. It never fails: anything it does not
// recognise, including truncated sequences, becomes Continue.
func (d *Decoder) Decode(b byte, src ByteSource) Action {
	switch {
	case b == keyCtrlC:
		return act(Quit)
	case b == keyCR || b == keyLF:
		return d.enter()
	case b == keyBackspace || b == keyCtrlH:
		return act(Backspace)
	case b == keyCtrlU:
		return act(ClearLine)
	case b == keyCtrlA:
		return act(CursorHome)
	case b == keyCtrlE:
		return act(CursorEnd)
	case b == keyEscape:
		return d.escape(src)
	case b >= 0x80:
		return decodeUTF8(b, src)
	case b >= ' ':
		return Action{Kind: InsertChar, Char: rune(b)}
	default:
		return act(Continue)
	}
}

func (d *Decoder) enter() Action {
	if d.hold || d.line.Len() == 0 {
		return act(Continue)
	}
	return Action{Kind: Submit, Text: d.line.Take()}
}

func (d *Decoder) escape(src ByteSource) Action {
	next, err := src.ReadByte(EscapeTimeout)
	if err != nil {
		return act(Quit)
	}
	switch next {
	case keyEscape:
		// A second ESC inside the timeout is a repeated press.
		return act(Quit)
	case '[':
		return csi(src)
	case 'O':
		final, err := src.ReadByte(EscapeTimeout)
		if err != nil {
			return act(Continue)
		}
		return cursorKey(final)
	default:
		// Alt+key and other two-byte sequences are not bound.
		return act(Continue)
	}
}

// cursorKey maps the final byte of an arrow/home/end sequence.
func cursorKey(final byte) Action {
	switch final {
	case 'A':
		return scroll(ScrollUp, 1, false)
	case 'B':
		return scroll(ScrollDown, 1, false)
	case 'C':
		return act(CursorRight)
	case 'D':
		return act(CursorLeft)
	case 'H':
		return act(CursorHome)
	case 'F':
		return act(CursorEnd)
	default:
		return act(Continue)
	}
}

func isFinal(b byte) bool { return b >= 64 && b <= 126 }

// csi decodes the bytes after ESC [. Parameter bytes are consumed until a
// final byte; only the first maxParams are kept.
func csi(src ByteSource) Action {
	first, err := src.ReadByte(EscapeTimeout)
	if err != nil {
		return act(Continue)
	}
	if first == '<' {
		return mouse(src)
	}

	var params []byte
	b := first
	for !isFinal(b) {
		if len(params) < maxParams {
			params = append(params, b)
		}
		b, err = src.ReadByte(EscapeTimeout)
		if err != nil {
			return act(Continue)
		}
	}

	if b != '~' {
		return cursorKey(b)
	}
	switch string(params) {
	case "5":
		return scroll(ScrollUp, PageAmount, false)
	case "6":
		return scroll(ScrollDown, PageAmount, false)
	case "1", "7":
		return act(CursorHome)
	case "4", "8":
		return act(CursorEnd)
	default:
		return act(Continue)
	}
}

// mouse decodes an SGR report "button;col;row" terminated by M (press) or m
// (release). Only wheel presses produce actions.
func mouse(src ByteSource) Action {
	var params []byte
	for {
		b, err := src.ReadByte(EscapeTimeout)
		if err != nil {
			return act(Continue)
		}
		if isFinal(b) {
			if b != 'M' && b != 'm' {
				return act(Continue)
			}
			break
		}
		if len(params) < maxParams {
			params = append(params, b)
		}
	}

	fields := strings.Split(string(params), ";")
	if len(fields) != 3 {
		return act(Continue)
	}
	var nums [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return act(Continue)
		}
		nums[i] = n
	}

	switch nums[0] &^ 0x20 {
	case 64:
		return scroll(ScrollUp, WheelAmount, true)
	case 65:
		return scroll(ScrollDown, WheelAmount, true)
	default:
		return act(Continue)
	}
}

// decodeUTF8 assembles a multi-byte rune starting with lead.
func decodeUTF8(lead byte, src ByteSource) Action {
	var n int
	switch {
	case lead&0xE0 == 0xC0:
		n = 2
	case lead&0xF0 == 0xE0:
		n = 3
	case lead&0xF8 == 0xF0:
		n = 4
	default:
		return act(Continue)
	}
	buf := []byte{lead}
	for len(buf) < n {
		b, err := src.ReadByte(EscapeTimeout)
		if err != nil || b&0xC0 != 0x80 {
			return act(Continue)
		}
		buf = append(buf, b)
	}
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size <= 1 {
		return act(Continue)
	}
	return Action{Kind: InsertChar, Char: r}
}
