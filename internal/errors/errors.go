// Package errors provides error handling utilities for srake-eutils.
// Lookups against eutils degrade to absent or empty results; the kinds
// below let callers tell a transport failure from a response that simply
// did not contain what was asked for.
package errors

import (
	stderrors "errors"
	"log"
	"runtime"
	"strings"
)

// Op represents an operation name for error context.
type Op string

// Error represents an application error with context.
type Error struct {
	Op   Op     // Operation that failed
	Kind Kind   // Category of error
	Err  error  // Underlying error
	Msg  string // Additional context message
}

// Kind represents the category of error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNetwork
	KindParse
	KindMalformed
	KindNoMatch
	KindDatabase
	KindConfig
	KindIO
	KindValidation
)

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindMalformed:
		return "malformed response"
	case KindNoMatch:
		return "no match"
	case KindDatabase:
		return "database"
	case KindConfig:
		return "config"
	case KindIO:
		return "io"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(string(e.Op))
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
		if e.Err != nil {
			b.WriteString(": ")
		}
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error with the given arguments.
// Arguments can be: Op, Kind, error, string (message).
func E(args ...interface{}) *Error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case error:
			e.Err = a
		case string:
			e.Msg = a
		}
	}
	return e
}

// Wrap wraps an error with an operation name for context.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapMsg wraps an error with an operation name and message.
func WrapMsg(op Op, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Msg: msg, Err: err}
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// GetKind returns the kind of the first *Error in err's chain that carries
// one, or KindUnknown.
func GetKind(err error) Kind {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return KindUnknown
		}
		if e.Kind != KindUnknown {
			return e.Kind
		}
		err = e.Err
	}
	return KindUnknown
}

// SkipCounter tracks how many times operations have been skipped.
// Use this to provide visibility into silent error patterns.
type SkipCounter struct {
	Op         string
	Count      int
	LastErr    error
	LastDetail string
}

// NewSkipCounter creates a new skip counter for the given operation.
func NewSkipCounter(op string) *SkipCounter {
	return &SkipCounter{Op: op}
}

// Skip records a skipped operation due to an error.
func (s *SkipCounter) Skip(err error, detail string) {
	s.Count++
	s.LastErr = err
	s.LastDetail = detail
}

// Report logs a summary if any operations were skipped.
func (s *SkipCounter) Report() {
	if s.Count > 0 {
		log.Printf("Warning: %s skipped %d items (last error: %v, detail: %s)",
			s.Op, s.Count, s.LastErr, s.LastDetail)
	}
}

// LogAndContinue logs an error with the caller's file and line.
//
// Example:
//
//	if err != nil {
//	    errors.LogAndContinue("writing run", err)
//	    continue
//	}
func LogAndContinue(operation string, err error) {
	_, file, line, ok := runtime.Caller(1)
	if ok {
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		log.Printf("Warning [%s:%d]: %s failed: %v", file, line, operation, err)
	} else {
		log.Printf("Warning: %s failed: %v", operation, err)
	}
}

// IgnoreError explicitly ignores an error with a reason.
//
// Example:
//
//	errors.IgnoreError(body.Close(), "closing abandoned fetch body")
func IgnoreError(err error, reason string) {
	if err != nil {
		log.Printf("Debug: ignoring error (%s): %v", reason, err)
	}
}
