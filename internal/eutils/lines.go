package eutils

import (
	"bufio"
	"io"
	"iter"
)

// DefaultChunkSize is the number of bytes requested from a response body
// per read.
const DefaultChunkSize = 32768

// LineReader turns a response body into a single-pass sequence of lines.
// Only the unterminated remainder of the last chunk is buffered between
// reads. The body is closed exactly once: when the stream is exhausted, on
// a read error, or by an explicit Close.
//
//	for lines.Next() {
//	    fmt.Println(lines.Text())
//	}
//	if err := lines.Err(); err != nil {
//	    ...
//	}
type LineReader struct {
	body   io.ReadCloser
	reader *bufio.Reader
	line   string
	err    error
	done   bool
	closed bool
}

// NewLineReader wraps body. A chunkSize <= 0 selects DefaultChunkSize.
func NewLineReader(body io.ReadCloser, chunkSize int) *LineReader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &LineReader{
		body:   body,
		reader: bufio.NewReaderSize(body, chunkSize),
	}
}

// Next advances to the next line. It returns false once the stream is
// exhausted, a read fails, or the reader was closed.
func (r *LineReader) Next() bool {
	if r.done {
		return false
	}

	line, err := r.reader.ReadString('\n')
	if err == nil {
		r.line = line[:len(line)-1]
		return true
	}

	r.done = true
	if err != io.EOF {
		r.err = err
		r.line = ""
		r.Close()
		return false
	}
	if closeErr := r.Close(); closeErr != nil {
		r.err = closeErr
	}

	// Final line without a terminating newline
	if line != "" {
		r.line = line
		return true
	}
	r.line = ""
	return false
}

// Text returns the current line without its newline.
func (r *LineReader) Text() string {
	return r.line
}

// Err returns the first non-EOF error encountered.
func (r *LineReader) Err() error {
	return r.err
}

// Close releases the body. Lines not yet read are discarded. It is safe to
// call more than once.
func (r *LineReader) Close() error {
	r.done = true
	if r.closed {
		return nil
	}
	r.closed = true
	return r.body.Close()
}

// All returns the remaining lines as a range-over-func sequence. The body
// is closed when the loop ends, including on early break.
func (r *LineReader) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		defer r.Close()
		for r.Next() {
			if !yield(r.Text()) {
				return
			}
		}
	}
}
