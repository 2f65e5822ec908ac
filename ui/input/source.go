package input

import (
	"io"
	"sync"
	"time"
)

// ReaderSource adapts an io.Reader to a ByteSource. A goroutine pumps bytes
// into a channel so reads can time out; it exits when the reader fails, which
// for a terminal happens when the reader is cancelled on shutdown.
type ReaderSource struct {
	ch   chan byte
	mu   sync.Mutex
	err  error
	done chan struct{}
}

func NewReaderSource(r io.Reader) *ReaderSource {
	s := &ReaderSource{ch: make(chan byte, 256), done: make(chan struct{})}
	go s.pump(r)
	return s
}

func (s *ReaderSource) pump(r io.Reader) {
	defer close(s.done)
	defer close(s.ch)
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			s.ch <- b
		}
		if err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			return
		}
	}
}

// ReadByte waits up to timeout for the next byte; a non-positive timeout waits
// indefinitely. After the reader has failed and buffered bytes are drained it
// returns io.EOF.
func (s *ReaderSource) ReadByte(timeout time.Duration) (byte, error) {
	if timeout <= 0 {
		b, ok := <-s.ch
		if !ok {
			return 0, io.EOF
		}
		return b, nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case b, ok := <-s.ch:
		if !ok {
			return 0, io.EOF
		}
		return b, nil
	case <-timer.C:
		return 0, ErrTimeout
	}
}

// Err returns the error that stopped the pump, if it has stopped.
func (s *ReaderSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed once the pump goroutine has exited.
func (s *ReaderSource) Done() <-chan struct{} { return s.done }
