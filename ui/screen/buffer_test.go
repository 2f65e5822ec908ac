package screen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutClipsAtWidth(t *testing.T) {
	b := NewBuffer(2, 5)
	next := b.Put(0, 2, "hello", DefaultStyle())
	assert.Equal(t, 5, next)
	assert.Equal(t, "  hel", b.Text(0))
	assert.Equal(t, "     ", b.Text(1))
}

func TestPutIgnoresOutOfRangeRows(t *testing.T) {
	b := NewBuffer(1, 4)
	assert.NotPanics(t, func() {
		b.Put(-1, 0, "x", DefaultStyle())
		b.Put(1, 0, "x", DefaultStyle())
		b.Put(0, -3, "x", DefaultStyle())
		b.Fill(7, '=', DefaultStyle())
		b.ClearRow(9)
	})
	assert.Equal(t, "    ", b.Text(0))
	assert.Equal(t, "", b.Text(3))
	assert.Equal(t, "", b.Row(3))
}

func TestWideRunes(t *testing.T) {
	b := NewBuffer(1, 5)
	next := b.Put(0, 0, "日本語", DefaultStyle())
	assert.Equal(t, 4, next, "third wide rune does not fit")
	assert.Equal(t, "日本 ", b.Text(0))

	// Overwriting the second half of a wide rune blanks the first half.
	b.Put(0, 1, "x", DefaultStyle())
	assert.Equal(t, " x本 ", b.Text(0))
}

func TestPutSkipsControlRunes(t *testing.T) {
	b := NewBuffer(1, 6)
	b.Put(0, 0, "a\tb\x1bc", DefaultStyle())
	assert.Equal(t, "abc   ", b.Text(0))
}

func TestFill(t *testing.T) {
	b := NewBuffer(1, 4)
	b.Fill(0, '=', DefaultStyle())
	assert.Equal(t, "====", b.Text(0))
}

func TestFrameRowsArePadded(t *testing.T) {
	b := NewBuffer(3, 6)
	b.Put(1, 0, "hi", DefaultStyle().WithFG(Blue))

	frame := b.Frame()
	require.Len(t, frame, 3)
	for i := range frame {
		assert.True(t, strings.HasSuffix(frame[i], Reset))
	}
	assert.Contains(t, frame[1], "\x1b[0;34;49mhi")
	assert.Contains(t, frame[1], "\x1b[0;39;49m    ")
}

func TestStyleSGR(t *testing.T) {
	assert.Equal(t, "\x1b[0;39;49m", DefaultStyle().SGR())
	assert.Equal(t, "\x1b[0;1;7;92;49m", DefaultStyle().WithBold(true).WithReverse(true).WithFG(BrightGreen).SGR())
	assert.Equal(t, "\x1b[0;2;33;49m", DefaultStyle().WithDim(true).WithFG(Yellow).SGR())
}

func TestFlushPartialRows(t *testing.T) {
	b := NewBuffer(4, 3)
	b.Put(2, 0, "abc", DefaultStyle())

	var out bytes.Buffer
	require.NoError(t, b.Flush(&out, []int{2, 99}, 3, 1))
	s := out.String()

	assert.True(t, strings.HasPrefix(s, SyncUpdateBegin))
	assert.Contains(t, s, CursorTo(2, 0)+b.Row(2))
	assert.NotContains(t, s, CursorTo(0, 0))
	assert.True(t, strings.HasSuffix(s, CursorTo(3, 1)+CursorShow+SyncUpdateEnd))

	out.Reset()
	require.NoError(t, b.Flush(&out, nil, 0, 0))
	for r, line := range b.Frame() {
		assert.Contains(t, out.String(), CursorTo(r, 0)+line)
	}
}

func TestCursorToIsOneIndexed(t *testing.T) {
	assert.Equal(t, "\x1b[1;1H", CursorTo(0, 0))
	assert.Equal(t, "\x1b[5;10H", CursorTo(4, 9))
}
