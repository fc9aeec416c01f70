package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Spinner shows progress on stderr while a lookup waits on the network
type Spinner struct {
	out     io.Writer
	tty     bool
	chars   []string
	message string
	active  bool
	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
}

// NewSpinner creates a spinner writing to stderr
func NewSpinner(message string) *Spinner {
	return newSpinner(os.Stderr, isTerminal() && os.Getenv("NO_COLOR") == "", message)
}

func newSpinner(out io.Writer, tty bool, message string) *Spinner {
	return &Spinner{
		out:     out,
		tty:     tty,
		chars:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message: message,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins spinning. Off a terminal it prints the message once.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	if !s.tty {
		fmt.Fprintf(s.out, "%s...\n", s.message)
		close(s.stopped)
		return
	}

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.done:
				// Clear the spinner line
				fmt.Fprintf(s.out, "\r\033[K")
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.out, "\r%s %s", s.chars[i], s.message)
				s.mu.Unlock()
				i = (i + 1) % len(s.chars)
			}
		}
	}()
}

// Stop stops the spinner and optionally shows a final message
func (s *Spinner) Stop(finalMessage string) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	close(s.done)
	<-s.stopped

	if finalMessage != "" {
		if s.tty {
			fmt.Fprintf(s.out, "\r\033[K%s\n", finalMessage)
		} else {
			fmt.Fprintln(s.out, finalMessage)
		}
	}
}

// Writer returns a writer for messages printed while the spinner runs.
// On a terminal each write first clears the spinner line, so a message
// never shares a line with a frame.
func (s *Spinner) Writer() io.Writer {
	return spinnerWriter{s}
}

type spinnerWriter struct {
	s *Spinner
}

func (w spinnerWriter) Write(p []byte) (int, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	if w.s.tty && w.s.active {
		if _, err := io.WriteString(w.s.out, "\r\033[K"); err != nil {
			return 0, err
		}
	}
	return w.s.out.Write(p)
}

// isTerminal checks if stderr is a terminal
func isTerminal() bool {
	fileInfo, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShowSpinner runs fn with a spinner when enabled, and just runs fn otherwise.
// fn receives the writer to print progress messages to: the spinner's
// Writer while it spins, stderr otherwise. Failures are left to the caller
// to report.
func ShowSpinner(message string, enabled bool, fn func(out io.Writer) error) error {
	if !enabled {
		return fn(os.Stderr)
	}

	spinner := NewSpinner(message)
	spinner.Start()
	err := fn(spinner.Writer())
	spinner.Stop("")
	return err
}
