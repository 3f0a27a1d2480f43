package apperror

import (
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrValidation     = crerr.New("validation failed")
	ErrConflict       = crerr.New("conflict")
	ErrNotFound       = crerr.New("resource not found")
	ErrPersistence    = crerr.New("persistence failure")
	ErrInitialization = crerr.New("database initialization failed")
	ErrNotInitialized = crerr.New("database not initialized")
)

// kindError tags cause with one of the sentinels above while keeping the
// cause's message; both stay reachable through errors.Is and errors.As.
type kindError struct {
	cause error
	kind  error
}

func (e *kindError) Error() string { return e.cause.Error() }

func (e *kindError) Unwrap() []error { return []error{e.cause, e.kind} }

func mark(cause, kind error) error {
	return &kindError{cause: cause, kind: kind}
}

// Validation reports input rejected before any write. The message is also
// attached as a hint so it can be shown to the user as-is.
func Validation(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return crerr.WithHint(mark(crerr.Newf("validation failed: %s", msg), ErrValidation), capitalize(msg))
}

// Conflict marks err as a uniqueness violation, keeping its message as the hint.
func Conflict(err error) error {
	if err == nil {
		return nil
	}
	return crerr.WithHint(mark(err, ErrConflict), capitalize(err.Error()))
}

func NotFound(entity, id string) error {
	return mark(crerr.Newf("%s with id %s not found", entity, id), ErrNotFound)
}

// Persistence wraps a storage-layer failure for operation op.
func Persistence(err error, op string) error {
	if err == nil {
		return nil
	}
	return mark(crerr.Wrapf(err, "%s", op), ErrPersistence)
}

func Initialization(err error) error {
	return mark(crerr.Wrap(err, "initialize persistence"), ErrInitialization)
}

func NotInitialized() error {
	return mark(crerr.New("database not initialized, call Initialize first"), ErrNotInitialized)
}

// UserMessage returns the hint attached to err, or fallback when there is none.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	hint := strings.TrimSpace(crerr.FlattenHints(err))
	if hint == "" {
		return fallback
	}
	return hint
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
