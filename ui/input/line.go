package input

// LineBuffer is the editable input line: runes plus a cursor index in
// [0, len].
type LineBuffer struct {
	runes  []rune
	cursor int
}

func (l *LineBuffer) Runes() []rune { return l.runes }

func (l *LineBuffer) String() string { return string(l.runes) }

func (l *LineBuffer) Cursor() int { return l.cursor }

func (l *LineBuffer) Len() int { return len(l.runes) }

// Insert adds r before the cursor and advances it.
func (l *LineBuffer) Insert(r rune) {
	l.runes = append(l.runes, 0)
	copy(l.runes[l.cursor+1:], l.runes[l.cursor:])
	l.runes[l.cursor] = r
	l.cursor++
}

// Backspace deletes the rune before the cursor.
func (l *LineBuffer) Backspace() {
	if l.cursor == 0 {
		return
	}
	l.runes = append(l.runes[:l.cursor-1], l.runes[l.cursor:]...)
	l.cursor--
}

func (l *LineBuffer) Left() {
	if l.cursor > 0 {
		l.cursor--
	}
}

func (l *LineBuffer) Right() {
	if l.cursor < len(l.runes) {
		l.cursor++
	}
}

func (l *LineBuffer) Home() { l.cursor = 0 }

func (l *LineBuffer) End() { l.cursor = len(l.runes) }

func (l *LineBuffer) Clear() {
	l.runes = l.runes[:0]
	l.cursor = 0
}

// Take returns the content and clears the buffer.
func (l *LineBuffer) Take() string {
	s := string(l.runes)
	l.Clear()
	return s
}
