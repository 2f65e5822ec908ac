package input

// Kind enumerates every Action variant. The set is closed; front ends
// dispatch on it with a table covering all kinds.
type Kind int

const (
	Continue Kind = iota
	Quit
	Submit
	ScrollUp
	ScrollDown
	CursorLeft
	CursorRight
	CursorHome
	CursorEnd
	Backspace
	ClearLine
	InsertChar

	numKinds
)

var kindNames = [...]string{
	Continue:    "Continue",
	Quit:        "Quit",
	Submit:      "Submit",
	ScrollUp:    "ScrollUp",
	ScrollDown:  "ScrollDown",
	CursorLeft:  "CursorLeft",
	CursorRight: "CursorRight",
	CursorHome:  "CursorHome",
	CursorEnd:   "CursorEnd",
	Backspace:   "Backspace",
	ClearLine:   "ClearLine",
	InsertChar:  "InsertChar",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "Kind(?)"
	}
	return kindNames[k]
}

// Kinds lists every Action kind.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Action is the outcome of decoding one key press or mouse report. Text is
// set for Submit, Amount for scrolls, Char for InsertChar. Mouse marks scrolls
// that came from the wheel.
type Action struct {
	Kind   Kind
	Text   string
	Amount int
	Char   rune
	Mouse  bool
}

func act(k Kind) Action { return Action{Kind: k} }

func scroll(k Kind, n int, mouse bool) Action {
	return Action{Kind: k, Amount: n, Mouse: mouse}
}
