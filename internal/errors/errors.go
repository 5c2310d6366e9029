package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal condition so the top-level command can decide how
// to present it and which exit code to use.
type Kind int

const (
	// Config means bad or incomplete configuration (missing netmask,
	// unknown interface, ...).
	Config Kind = iota
	// Conflict means a path that should be a managed symlink holds real
	// data. The user has to resolve it manually.
	Conflict
	// MediaLayout means a boot medium does not match any known layout or
	// is missing required files.
	MediaLayout
	// IO means a file this tool must read or write is inaccessible.
	IO
	// ExternalTool means a required binary is missing or an external
	// command exited non-zero.
	ExternalTool
	// AmbiguousEnv means the host network does not allow auto-selecting a
	// unique interface.
	AmbiguousEnv
)

// Error is the single error type carried up to the command layer. Code is
// the process exit code to use; 0 means unset and defaults to 1.
type Error struct {
	Op   string
	Kind Kind
	Code int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("operation %q failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with an operation name and a kind.
func E(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Ef is E with a formatted message instead of a wrapped error.
func Ef(op string, kind Kind, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// WithCode wraps err and pins the process exit code, typically the return
// code of a failed external command.
func WithCode(op string, kind Kind, code int, err error) error {
	return &Error{Op: op, Kind: kind, Code: code, Err: err}
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ExitCode translates err into a process exit code: 0 for nil, the carried
// code when one was set, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) && e.Code != 0 {
		return e.Code
	}
	return 1
}
