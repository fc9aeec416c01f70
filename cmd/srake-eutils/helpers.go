package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nishad/srake-eutils/internal/paths"
	"github.com/nishad/srake-eutils/internal/store"
)

// Color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Check if output is to terminal
func isTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Apply color if terminal output and color enabled
func colorize(color, text string) string {
	if !noColor && isTerminal() && os.Getenv("NO_COLOR") == "" {
		return color + text + colorReset
	}
	return text
}

// Print error message in user-friendly format
func printError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s\n", colorize(colorRed, "✗"), msg)
}

// Print success message to stderr so stdout stays pipeable
func printSuccess(format string, args ...interface{}) {
	if !quiet {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(os.Stderr, "%s %s\n", colorize(colorGreen, "✓"), msg)
	}
}

// Print warning message
func printWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s\n", colorize(colorYellow, "⚠"), msg)
}

// Print debug message
func printDebug(format string, args ...interface{}) {
	if debug {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(os.Stderr, "%s %s\n", colorize(colorGray, "[DEBUG]"), msg)
	}
}

// Helper function to read accessions from file or stdin
func readAccessionsFromReader(r io.Reader) ([]string, error) {
	accessions := make([]string, 0)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			accessions = append(accessions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return accessions, nil
}

// Helper function to read accessions from file, "-" meaning stdin
func readAccessionFile(path string) ([]string, error) {
	if path == "-" {
		return readAccessionsFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return readAccessionsFromReader(file)
}

// openStore opens the run cache at the configured path, creating the
// default data directory on first use
func openStore() (*store.Store, error) {
	if cfg.Store.Path == paths.GetStorePath() {
		if err := paths.EnsureDirectories(); err != nil {
			return nil, err
		}
	}
	return store.Open(cfg.Store.Path)
}

// openOutput returns stdout, or the named file created for writing
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
