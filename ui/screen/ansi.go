package screen

import "fmt"

// ANSI escape sequences.
const (
	CSI             = "\x1b["
	ClearScreen     = "\x1b[2J"
	CursorHome      = "\x1b[H"
	CursorHide      = "\x1b[?25l"
	CursorShow      = "\x1b[?25h"
	Reset           = "\x1b[0m"
	AltScreen       = "\x1b[?1049h"
	MainScreen      = "\x1b[?1049l"
	MouseEnable     = "\x1b[?1000h\x1b[?1006h"
	MouseDisable    = "\x1b[?1006l\x1b[?1000l"
	SyncUpdateBegin = "\x1b[?2026h"
	SyncUpdateEnd   = "\x1b[?2026l"
)

// CursorTo moves the cursor to a 0-indexed row and column.
func CursorTo(row, col int) string {
	return fmt.Sprintf("\x1b[%d;%dH", row+1, col+1)
}
