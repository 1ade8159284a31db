// Package errors provides structured error types for the parley client.
// These errors record which operation failed and what category of failure it was,
// so the session controllers can turn them into transcript lines.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindIO
	KindNetwork
	KindConfig
	KindBackend
	KindMalformed
	KindBusy
	KindSessionUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindIO:
		return "I/O error"
	case KindNetwork:
		return "network error"
	case KindConfig:
		return "configuration error"
	case KindBackend:
		return "backend error"
	case KindMalformed:
		return "malformed response"
	case KindBusy:
		return "busy"
	case KindSessionUnavailable:
		return "no active session"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for parley.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Session errors

// SessionNotFound reports that the backend has no session with the given id.
// cause may be nil.
func SessionNotFound(op Op, id string, cause error) error {
	if cause == nil {
		return E(op, KindNotFound, fmt.Sprintf("session %s not found", id))
	}
	return E(op, KindNotFound, fmt.Sprintf("session %s not found", id), cause)
}

// SessionCreateFailed wraps a failed create call. The kind of the cause is kept
// so callers can still tell a network failure from a backend rejection.
func SessionCreateFailed(err error) error {
	return E(Op("session.Create"), GetKind(err), "failed to create chat session", err)
}

func SessionLoadFailed(id string, err error) error {
	return E(Op("session.Load"), GetKind(err), fmt.Sprintf("failed to load session %s", id), err)
}

// NoActiveSession is returned by a send that could not obtain a session at all.
func NoActiveSession(err error) error {
	return E(Op("session.Send"), KindSessionUnavailable, "no active chat session and a new one could not be started", err)
}

// Busy is returned when another send, create or load is already in flight.
func Busy(op Op) error {
	return E(op, KindBusy, "another request is already in progress")
}

// Gateway errors

func MalformedResponse(op Op, reason string) error {
	return E(op, KindMalformed, reason)
}

func NetworkUnreachable(op Op, err error) error {
	return E(op, KindNetwork, "no response from server", err)
}

func BackendRejected(op Op, status int, err error) error {
	return E(op, KindBackend, fmt.Sprintf("server returned status %d", status), err)
}

func InvalidRequest(reason string) error {
	return E(Op("session.Send"), KindInvalid, reason)
}

// Config errors
func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindInvalid, reason)
}
