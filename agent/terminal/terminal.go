package terminal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/m4xw311/picode/agent"
	"github.com/m4xw311/picode/conversation"
	"github.com/m4xw311/picode/errors"
	"github.com/m4xw311/picode/logging"
	"github.com/m4xw311/picode/ui/component"
	"github.com/m4xw311/picode/ui/input"
	"github.com/m4xw311/picode/ui/layout"
	"github.com/m4xw311/picode/ui/screen"
	"golang.org/x/time/rate"
)

const (
	// BusyTick is the read timeout while an agent run is outstanding; the
	// spinner advances once per tick.
	BusyTick = 100 * time.Millisecond
	// IdleTick is the read timeout otherwise; the size is re-checked per tick.
	IdleTick = 250 * time.Millisecond

	// WheelInterval is the minimum spacing of mouse wheel scrolls.
	WheelInterval = 16 * time.Millisecond

	ThinkingStatus = "Thinking..."
	Subtitle       = "Enter message below (ESC to quit)"
	EchoBanner     = "No API key. Running in echo mode. Set OPENAI_API_KEY or use --api-key to enable the agent."
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Device is the terminal the UI runs on.
type Device interface {
	input.ByteSource
	io.Writer
	// Size returns the height and width in cells.
	Size() (rows, cols int, err error)
	// Resized reports whether the size changed since the last call.
	Resized() bool
}

type handler func(t *Terminal, ctx context.Context, a input.Action)

var handlers = map[input.Kind]handler{
	input.Continue:    func(*Terminal, context.Context, input.Action) {},
	input.Quit:        (*Terminal).onQuit,
	input.Submit:      (*Terminal).onSubmit,
	input.ScrollUp:    (*Terminal).onScroll,
	input.ScrollDown:  (*Terminal).onScroll,
	input.CursorLeft:  (*Terminal).onEdit,
	input.CursorRight: (*Terminal).onEdit,
	input.CursorHome:  (*Terminal).onEdit,
	input.CursorEnd:   (*Terminal).onEdit,
	input.Backspace:   (*Terminal).onEdit,
	input.ClearLine:   (*Terminal).onEdit,
	input.InsertChar:  (*Terminal).onEdit,
}

// result is what a background run hands back.
type result struct {
	fork  *conversation.Conversation
	reply string
}

// Terminal is the interactive session. It is not safe for concurrent use; Run
// owns it until it returns.
type Terminal struct {
	dev    Device
	loop   *agent.Loop
	conv   *conversation.Conversation
	logger *slog.Logger

	decoder  *input.Decoder
	header   component.Header
	messages *component.MessageList
	editor   component.Input
	status   *component.StatusBar
	buf      *screen.Buffer
	cursor   int

	wheel      *rate.Limiter
	pending    chan result
	cancelTask context.CancelFunc
	frame      int
	lastSpin   time.Time
	quit       bool
}

// New creates a terminal session on dev. A nil loop selects echo mode, which
// opens with an explanatory banner.
func New(dev Device, loop *agent.Loop, conv *conversation.Conversation, logger *slog.Logger) *Terminal {
	if conv == nil {
		conv = conversation.New("")
	}
	t := &Terminal{
		dev:      dev,
		loop:     loop,
		conv:     conv,
		logger:   logging.OrDefault(logger),
		decoder:  input.NewDecoder(),
		messages: component.NewMessageList(),
		status:   component.NewStatusBar(),
		wheel:    rate.NewLimiter(rate.Every(WheelInterval), 1),
	}
	t.header = component.Header{
		Title:    fmt.Sprintf("=== picode - AI Code Assistant (%s) ===", t.Mode()),
		Subtitle: Subtitle,
	}
	if loop == nil {
		conv.AddAssistant(EchoBanner)
	}
	return t
}

// Mode names the session kind shown in the header.
func (t *Terminal) Mode() string {
	if t.loop == nil {
		return "Echo"
	}
	return "LLM"
}

// Conversation returns the session history. It must not be used while Run is
// executing.
func (t *Terminal) Conversation() *conversation.Conversation { return t.conv }

// Run draws the screen and processes input until Quit, end of input or ctx
// is done. An outstanding agent run is cancelled and abandoned on return.
func (t *Terminal) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer t.abandon()

	if err := t.resize(); err != nil {
		return err
	}
	t.renderFull()
	t.logger.Info("terminal session started", "mode", t.Mode())

	for !t.quit && ctx.Err() == nil {
		t.poll()
		if t.dev.Resized() {
			t.refit()
		}

		b, err := t.dev.ReadByte(t.tick())
		switch {
		case err == nil:
			t.dispatch(ctx, t.decoder.Decode(b, t.dev))
		case errors.Is(err, input.ErrTimeout):
			if !t.busy() {
				t.checkSize()
			}
		case errors.Is(err, io.EOF):
			t.logger.Info("input closed")
			return nil
		default:
			return errors.Wrapf(err, "failed to read input")
		}
		if t.busy() && time.Since(t.lastSpin) >= BusyTick {
			t.spin()
		}
	}
	t.logger.Info("terminal session ended")
	return nil
}

// tick is the read timeout. While busy it ends when the next spinner frame
// is due, so steady input cannot stall the animation.
func (t *Terminal) tick() time.Duration {
	if t.busy() {
		return max(BusyTick-time.Since(t.lastSpin), time.Millisecond)
	}
	return IdleTick
}

func (t *Terminal) busy() bool { return t.pending != nil }

func (t *Terminal) dispatch(ctx context.Context, a input.Action) {
	h, ok := handlers[a.Kind]
	if !ok {
		t.logger.Warn("no handler for action", "kind", a.Kind)
		return
	}
	h(t, ctx, a)
}

func (t *Terminal) onQuit(context.Context, input.Action) { t.quit = true }

func (t *Terminal) onEdit(_ context.Context, a input.Action) {
	line := t.decoder.Line()
	switch a.Kind {
	case input.CursorLeft:
		line.Left()
	case input.CursorRight:
		line.Right()
	case input.CursorHome:
		line.Home()
	case input.CursorEnd:
		line.End()
	case input.Backspace:
		line.Backspace()
	case input.ClearLine:
		line.Clear()
	case input.InsertChar:
		line.Insert(a.Char)
	}
	t.renderInput()
}

func (t *Terminal) onScroll(_ context.Context, a input.Action) {
	if a.Mouse && !t.wheel.Allow() {
		return
	}
	n := max(a.Amount, 1)
	if a.Kind == input.ScrollUp {
		t.messages.ScrollUp(n)
	} else {
		t.messages.ScrollDown(n)
	}
	t.renderMessages()
}

func (t *Terminal) onSubmit(ctx context.Context, a input.Action) {
	if t.loop == nil {
		t.conv.AddUser(a.Text)
		t.conv.AddAssistant(a.Text)
		t.messages.ScrollToBottom()
		t.renderFull()
		return
	}
	if t.busy() {
		return
	}

	t.conv.AddUser(a.Text)
	t.messages.ScrollToBottom()
	t.decoder.HoldSubmits(true)
	t.frame = 0
	t.lastSpin = time.Now()
	t.status.SetText(spinnerFrames[0] + " " + ThinkingStatus)
	t.start(ctx)
	t.renderFull()
}

// start runs the agent on a fork of the conversation.
func (t *Terminal) start(ctx context.Context) {
	fork := t.conv.Fork()
	taskCtx, cancel := context.WithCancel(ctx)
	done := make(chan result, 1)
	loop := t.loop
	logger := t.logger

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("agent run panicked", "panic", r)
				text := fmt.Sprintf("Error: %v", r)
				fork.AddAssistant(text)
				done <- result{fork: fork, reply: text}
			}
		}()
		reply := loop.Run(taskCtx, fork)
		done <- result{fork: fork, reply: reply}
	}()

	t.pending = done
	t.cancelTask = cancel
	t.logger.Debug("agent run started", "messages", fork.Len())
}

// poll collects a finished run without blocking.
func (t *Terminal) poll() {
	if t.pending == nil {
		return
	}
	select {
	case res := <-t.pending:
		t.finish(res)
	default:
	}
}

func (t *Terminal) finish(res result) {
	t.pending = nil
	t.cancelTask()
	t.cancelTask = nil

	if err := t.conv.Merge(res.fork); err != nil {
		t.logger.Error("failed to merge agent run", "error", err)
		t.conv.AddAssistant("Error: " + err.Error())
	}
	t.logger.Debug("agent run finished", "chars", len(res.reply))

	t.decoder.HoldSubmits(false)
	t.status.SetText(component.DefaultStatus)
	t.messages.ScrollToBottom()
	t.renderFull()
}

func (t *Terminal) abandon() {
	if t.cancelTask != nil {
		t.cancelTask()
		t.logger.Info("abandoning outstanding agent run")
	}
}

func (t *Terminal) spin() {
	t.frame = (t.frame + 1) % len(spinnerFrames)
	t.lastSpin = time.Now()
	t.status.SetText(spinnerFrames[t.frame] + " " + ThinkingStatus)
	t.renderStatus()
}

// resize allocates a buffer matching the device.
func (t *Terminal) resize() error {
	rows, cols, err := t.dev.Size()
	if err != nil {
		return err
	}
	t.buf = screen.NewBuffer(max(rows, 1), max(cols, 1))
	return nil
}

// checkSize redraws when the device size no longer matches the buffer.
func (t *Terminal) checkSize() {
	rows, cols, err := t.dev.Size()
	if err != nil {
		t.logger.Debug("size check failed", "error", err)
		return
	}
	if r, c := t.buf.Size(); r != max(rows, 1) || c != max(cols, 1) {
		t.refit()
	}
}

func (t *Terminal) refit() {
	if err := t.resize(); err != nil {
		t.logger.Warn("resize failed", "error", err)
		return
	}
	t.logger.Debug("terminal resized")
	t.renderFull()
}

func (t *Terminal) renderFull() {
	t.buf.Clear()
	t.header.Render(t.buf)
	t.messages.Render(t.buf, t.conv.Messages())
	t.drawInput()
	t.status.Render(t.buf)
	t.flush(nil)
}

func (t *Terminal) renderInput() {
	t.drawInput()
	height, _ := t.buf.Size()
	t.flush([]int{layout.InputTextRow(height)})
}

func (t *Terminal) renderStatus() {
	t.status.Render(t.buf)
	height, _ := t.buf.Size()
	t.flush([]int{layout.StatusRow(height)})
}

func (t *Terminal) renderMessages() {
	t.messages.Render(t.buf, t.conv.Messages())
	height, _ := t.buf.Size()
	t.flush(layout.MessageBand(height))
}

func (t *Terminal) drawInput() {
	line := t.decoder.Line()
	t.cursor = t.editor.Render(t.buf, line.Runes(), line.Cursor())
}

// flush writes rows (all when nil) and parks the cursor on the input line.
func (t *Terminal) flush(rows []int) {
	height, _ := t.buf.Size()
	if err := t.buf.Flush(t.dev, rows, layout.InputTextRow(height), t.cursor); err != nil {
		t.logger.Warn("failed to write to terminal", "error", err)
	}
}
