// Package tty puts the controlling terminal into the mode the UI needs: raw
// input, the alternate screen, SGR mouse reporting and a hidden cursor. Every
// mode switched on by Open is switched off again by Close, in reverse order.
package tty

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/m4xw311/picode/errors"
	"github.com/m4xw311/picode/logging"
	"github.com/m4xw311/picode/ui/input"
	"github.com/m4xw311/picode/ui/screen"
	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// mode is one terminal feature with its enable and disable sequences.
type mode struct {
	name    string
	enable  string
	disable string
}

var modes = []mode{
	{name: "alt screen", enable: screen.AltScreen, disable: screen.MainScreen},
	{name: "mouse", enable: screen.MouseEnable, disable: screen.MouseDisable},
	{name: "cursor", enable: screen.CursorHide, disable: screen.CursorShow},
}

// EnterSequence switches every mode on.
func EnterSequence() string {
	var sb strings.Builder
	for _, m := range modes {
		sb.WriteString(m.enable)
	}
	sb.WriteString(screen.ClearScreen)
	return sb.String()
}

// ExitSequence switches every mode off, last enabled first.
func ExitSequence() string {
	var sb strings.Builder
	sb.WriteString(screen.Reset)
	for i := len(modes) - 1; i >= 0; i-- {
		sb.WriteString(modes[i].disable)
	}
	return sb.String()
}

// Device is an open terminal. It is an input.ByteSource and an io.Writer.
type Device struct {
	in      *os.File
	out     *os.File
	state   *term.State
	reader  cancelreader.CancelReader
	source  *input.ReaderSource
	resized atomic.Bool
	stop    func()
	logger  *slog.Logger
}

// Open switches stdin to raw mode and the screen to the UI modes. A failure
// leaves the terminal as it was.
func Open(logger *slog.Logger) (*Device, error) {
	logger = logging.OrDefault(logger)
	in, out := os.Stdin, os.Stdout
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to enter raw mode")
	}

	reader, err := cancelreader.NewReader(in)
	if err != nil {
		_ = term.Restore(fd, state)
		return nil, errors.Wrapf(err, "failed to create input reader")
	}

	if _, err := io.WriteString(out, EnterSequence()); err != nil {
		reader.Close()
		_ = term.Restore(fd, state)
		return nil, errors.Wrapf(err, "failed to set up screen")
	}

	d := &Device{
		in:     in,
		out:    out,
		state:  state,
		reader: reader,
		source: input.NewReaderSource(reader),
		logger: logger,
	}
	d.stop = watchResize(func() { d.resized.Store(true) })
	logger.Debug("terminal opened", "fd", fd)
	return d, nil
}

func (d *Device) ReadByte(timeout time.Duration) (byte, error) {
	return d.source.ReadByte(timeout)
}

func (d *Device) Write(p []byte) (int, error) { return d.out.Write(p) }

// Size returns the terminal height and width.
func (d *Device) Size() (rows, cols int, err error) {
	cols, rows, err = term.GetSize(int(d.out.Fd()))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "failed to get terminal size")
	}
	return rows, cols, nil
}

// Resized reports whether the window changed size since the last call.
func (d *Device) Resized() bool { return d.resized.Swap(false) }

// Close restores the terminal. Failures are logged; Close always returns nil
// so shutdown proceeds.
func (d *Device) Close() error {
	d.stop()
	if _, err := io.WriteString(d.out, ExitSequence()); err != nil {
		d.logger.Warn("failed to reset screen", "error", err)
	}
	if err := term.Restore(int(d.in.Fd()), d.state); err != nil {
		d.logger.Warn("failed to restore terminal mode", "error", err)
	}
	d.reader.Cancel()
	select {
	case <-d.source.Done():
	case <-time.After(100 * time.Millisecond):
		d.logger.Debug("input pump still blocked after cancel")
	}
	if err := d.reader.Close(); err != nil {
		d.logger.Warn("failed to close input reader", "error", err)
	}
	return nil
}
