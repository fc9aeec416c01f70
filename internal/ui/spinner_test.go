package ui

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpinnerNonTerminalPrintsOnce(t *testing.T) {
	var out bytes.Buffer
	s := newSpinner(&out, false, "Searching SRA")

	s.Start()
	s.Start()
	s.Stop("done")
	s.Stop("again")

	assert.Equal(t, "Searching SRA...\ndone\n", out.String())
}

func TestSpinnerTerminalAnimatesAndClears(t *testing.T) {
	var out bytes.Buffer
	s := newSpinner(&out, true, "Searching SRA")

	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Stop("")

	got := out.String()
	assert.Contains(t, got, "Searching SRA")
	assert.True(t, strings.HasSuffix(got, "\r\033[K"), "spinner line should be cleared, got %q", got)
}

func TestShowSpinnerDisabledRunsFn(t *testing.T) {
	boom := errors.New("boom")
	called := false

	err := ShowSpinner("x", false, func(out io.Writer) error {
		called = true
		assert.NotNil(t, out)
		return boom
	})

	assert.True(t, called)
	assert.ErrorIs(t, err, boom)
}

func TestSpinnerWriterClearsFrame(t *testing.T) {
	var out bytes.Buffer
	s := newSpinner(&out, true, "Searching SRA")

	s.Start()
	time.Sleep(150 * time.Millisecond)
	fmt.Fprintln(s.Writer(), "Nothing was found for 'x'")
	s.Stop("")

	got := out.String()
	assert.Contains(t, got, "Searching SRA\r\033[KNothing was found for 'x'\n")
}

func TestSpinnerWriterPlainOffTerminal(t *testing.T) {
	var out bytes.Buffer
	s := newSpinner(&out, false, "Searching SRA")

	s.Start()
	fmt.Fprintln(s.Writer(), "Nothing was found for 'x'")
	s.Stop("")

	assert.Equal(t, "Searching SRA...\nNothing was found for 'x'\n", out.String())
}
