package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBands(t *testing.T) {
	tests := []struct {
		height                              int
		rows, end, separator, input, status int
	}{
		{24, 18, 20, 21, 22, 23},
		{7, 1, 3, 4, 5, 6},
		{6, 0, 2, 3, 4, 5},
		{3, 0, -1, 0, 1, 2},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.rows, MessageRows(tc.height), "rows h=%d", tc.height)
		assert.Equal(t, tc.end, MessageEndRow(tc.height), "end h=%d", tc.height)
		assert.Equal(t, tc.separator, InputSeparatorRow(tc.height), "sep h=%d", tc.height)
		assert.Equal(t, tc.input, InputTextRow(tc.height), "input h=%d", tc.height)
		assert.Equal(t, tc.status, StatusRow(tc.height), "status h=%d", tc.height)
		assert.Len(t, MessageBand(tc.height), tc.rows)
	}
}

func TestBandsTileTheScreen(t *testing.T) {
	for h := 6; h < 60; h++ {
		assert.Equal(t, MessageEndRow(h)+1, InputSeparatorRow(h))
		assert.Equal(t, HeaderRows+MessageRows(h)+InputRows+StatusRows, h)
	}
}

func TestHeaderRows(t *testing.T) {
	assert.Equal(t, []int{TitleRow, SubtitleRow, HeaderRuleRow}, HeaderBand())
	assert.Equal(t, MessageStartRow, HeaderRuleRow+1)
}
