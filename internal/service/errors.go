// server/internal/service/errors.go
package service

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Failure kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate")
	ErrConflict     = errors.New("conflict with current state")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

// GenericFailureMessage is all a user ever sees of an infrastructure error.
const GenericFailureMessage = "Something went wrong. Please try again."

// Failure is an expected, user-facing failure. Reason is safe to display.
type Failure struct {
	Kind   error
	Reason string
}

func (f *Failure) Error() string { return f.Reason }

func (f *Failure) Unwrap() error { return f.Kind }

func fail(kind error, format string, args ...interface{}) error {
	return &Failure{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// internal logs err with the operation name and hides it behind a generic failure.
func internal(log zerolog.Logger, op string, err error) error {
	log.Error().Err(err).Str("op", op).Msg("operation failed")
	return &Failure{Kind: ErrInternal, Reason: GenericFailureMessage}
}

// Reason extracts the displayable message of err.
func Reason(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return GenericFailureMessage
}
