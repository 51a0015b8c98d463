package cli

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// Outcome carries a background request's result or error back to the
// command that issued it.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Dispatch runs fn on a background goroutine and returns a channel that
// delivers exactly one outcome. The worker touches no shared state beyond
// the channel send, so the foreground loop stays the only writer of
// terminal output.
func Dispatch[T any](fn func() (T, error)) <-chan Outcome[T] {
	ch := make(chan Outcome[T], 1)
	go func() {
		value, err := fn()
		ch <- Outcome[T]{Value: value, Err: err}
	}()
	return ch
}

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Await blocks on the outcome channel, animating a spinner on stderr while
// the request is in flight. The spinner is skipped when stderr is not a
// terminal.
func Await[T any](message string, ch <-chan Outcome[T]) (T, error) {
	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case outcome := <-ch:
			if interactive {
				fmt.Fprintf(os.Stderr, "\r%*s\r", len(message)+2, "")
			}
			return outcome.Value, outcome.Err
		case <-ticker.C:
			if interactive {
				fmt.Fprintf(os.Stderr, "\r%s %s", spinnerFrames[frame%len(spinnerFrames)], message)
				frame++
			}
		}
	}
}

// Run is the common dispatch-and-await path used by the commands.
func Run[T any](message string, fn func() (T, error)) (T, error) {
	return Await(message, Dispatch(fn))
}
