// Package layout computes the fixed row bands of the screen from its height.
// Every component and render path takes its row numbers from here.
//
//	row 0..2        header (title, subtitle, rule)
//	row 3..h-4      messages
//	row h-3         input separator
//	row h-2         input line
//	row h-1         status bar
package layout

const (
	HeaderRows = 3
	InputRows  = 2
	StatusRows = 1
)

// Header rows, top down.
const (
	TitleRow = iota
	SubtitleRow
	HeaderRuleRow
)

// MessageStartRow is the first row of the message band.
const MessageStartRow = HeaderRows

// HeaderBand lists the rows of the header in order.
func HeaderBand() []int {
	rows := make([]int, HeaderRows)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// MessageRows is the height of the message band, never negative.
func MessageRows(height int) int {
	return max(0, height-HeaderRows-InputRows-StatusRows)
}

// MessageEndRow is the last row of the message band. It is below
// MessageStartRow when the band is empty.
func MessageEndRow(height int) int {
	return height - InputRows - StatusRows - 1
}

func InputSeparatorRow(height int) int { return height - StatusRows - InputRows }

func InputTextRow(height int) int { return height - StatusRows - 1 }

func StatusRow(height int) int { return height - 1 }

// MessageBand lists the rows of the message band in order.
func MessageBand(height int) []int {
	rows := make([]int, 0, MessageRows(height))
	for r := MessageStartRow; r <= MessageEndRow(height); r++ {
		rows = append(rows, r)
	}
	return rows
}
