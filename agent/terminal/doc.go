// Package terminal is the full-screen interactive front end.
//
// A Terminal owns the screen and all UI state and runs on a single goroutine.
// Each iteration reads at most one byte from the Device, decodes it into an
// input.Action and dispatches it through a table keyed by input.Kind:
//
//   - editing keys change the input line and repaint only the input row
//   - scrolling repaints only the message band; wheel scrolls are throttled
//   - Submit appends to the conversation and, with an agent, starts a
//     background run while the status row shows a spinner
//   - Quit cancels outstanding work and returns from Run
//
// Without an agent.Loop the terminal runs in echo mode and every submission is
// answered with its own text.
//
// # Background runs
//
// At most one agent run is outstanding. It works on a fork of the
// conversation and reports on a buffered channel; the primary goroutine polls
// the channel between reads, merges the fork and redraws the whole frame. Enter
// is held by the decoder until then, so the typed line is kept.
//
// # Usage
//
//	dev, err := tty.Open(logger)
//	if err != nil {
//	    // handle error
//	}
//	defer dev.Close()
//
//	t := terminal.New(dev, loop, conversation.New(prompt), logger)
//	err = t.Run(ctx)
package terminal
