// Package screen is an off-screen grid of styled cells that can be flushed to
// a terminal in full or row by row.
package screen

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Cell is one terminal column. A wide rune occupies its cell and the one to
// its right, which is marked as a continuation.
type Cell struct {
	Rune  rune
	Style Style
	cont  bool
}

func blank() Cell { return Cell{Rune: ' ', Style: DefaultStyle()} }

// Buffer is a fixed rows x cols grid.
type Buffer struct {
	rows, cols int
	cells      [][]Cell
}

func NewBuffer(rows, cols int) *Buffer {
	rows, cols = max(rows, 0), max(cols, 0)
	b := &Buffer{rows: rows, cols: cols, cells: make([][]Cell, rows)}
	for r := range b.cells {
		b.cells[r] = make([]Cell, cols)
	}
	b.Clear()
	return b
}

func (b *Buffer) Size() (rows, cols int) { return b.rows, b.cols }

// Clear resets every cell to a blank.
func (b *Buffer) Clear() {
	for r := range b.cells {
		b.ClearRow(r)
	}
}

// ClearRow blanks one row; out-of-range rows are ignored.
func (b *Buffer) ClearRow(row int) {
	if row < 0 || row >= b.rows {
		return
	}
	for c := range b.cells[row] {
		b.cells[row][c] = blank()
	}
}

func (b *Buffer) set(row, col int, r rune, style Style) {
	line := b.cells[row]
	// Overwriting half of a wide rune blanks the other half.
	if line[col].cont && col > 0 {
		line[col-1] = blank()
	}
	if col+1 < b.cols && line[col+1].cont {
		line[col+1] = blank()
	}
	line[col] = Cell{Rune: r, Style: style}
}

// Put writes text starting at (row, col) and returns the column after the
// last written cell. Text is clipped at the right edge, never wrapped; rows
// outside the buffer are ignored. Control and zero-width runes are skipped.
func (b *Buffer) Put(row, col int, text string, style Style) int {
	if row < 0 || row >= b.rows || col < 0 {
		return col
	}
	for _, r := range text {
		if r < ' ' || r == 0x7f {
			continue
		}
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > b.cols {
			break
		}
		b.set(row, col, r, style)
		if w == 2 {
			b.set(row, col+1, ' ', style)
			b.cells[row][col+1].cont = true
		}
		col += w
	}
	return col
}

// Fill sets every cell of a row to r.
func (b *Buffer) Fill(row int, r rune, style Style) {
	if row < 0 || row >= b.rows {
		return
	}
	b.Put(row, 0, strings.Repeat(string(r), b.cols/max(runewidth.RuneWidth(r), 1)), style)
}

// Cell returns the cell at (row, col), or a blank when out of range.
func (b *Buffer) Cell(row, col int) Cell {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return blank()
	}
	return b.cells[row][col]
}

// Text returns a row's characters without styling, padded to the full width.
func (b *Buffer) Text(row int) string {
	if row < 0 || row >= b.rows {
		return ""
	}
	var sb strings.Builder
	for _, c := range b.cells[row] {
		if !c.cont {
			sb.WriteRune(c.Rune)
		}
	}
	return sb.String()
}

// Row renders one row with SGR sequences. The row always covers exactly cols
// columns and ends with a reset.
func (b *Buffer) Row(row int) string {
	if row < 0 || row >= b.rows {
		return ""
	}
	var sb strings.Builder
	var current Style
	first := true
	for _, c := range b.cells[row] {
		if c.cont {
			continue
		}
		if first || c.Style != current {
			sb.WriteString(c.Style.SGR())
			current = c.Style
			first = false
		}
		sb.WriteRune(c.Rune)
	}
	sb.WriteString(Reset)
	return sb.String()
}

// Frame renders every row.
func (b *Buffer) Frame() []string {
	out := make([]string, b.rows)
	for r := range out {
		out[r] = b.Row(r)
	}
	return out
}

// Flush writes the given rows to w, or every row when rows is nil, inside a
// synchronized update, then moves the visible cursor to (cursorRow, cursorCol).
func (b *Buffer) Flush(w io.Writer, rows []int, cursorRow, cursorCol int) error {
	var sb strings.Builder
	sb.WriteString(SyncUpdateBegin)
	sb.WriteString(CursorHide)
	if rows == nil {
		for r, line := range b.Frame() {
			sb.WriteString(CursorTo(r, 0))
			sb.WriteString(line)
		}
	} else {
		for _, r := range rows {
			if r < 0 || r >= b.rows {
				continue
			}
			sb.WriteString(CursorTo(r, 0))
			sb.WriteString(b.Row(r))
		}
	}
	sb.WriteString(CursorTo(cursorRow, cursorCol))
	sb.WriteString(CursorShow)
	sb.WriteString(SyncUpdateEnd)
	_, err := io.WriteString(w, sb.String())
	return err
}
