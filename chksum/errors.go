package chksum

import (
	"context"
	"errors"
)

// IOError reports a failure to open, read or enumerate a source. Err keeps
// the originating system error reachable through errors.Is and errors.As.
type IOError struct {
	Err error
}

func (e IOError) Error() string {
	return e.Err.Error()
}

func (e IOError) Unwrap() error {
	return e.Err
}

// wrapIOError returns ctx's own error when the failure came from a
// cancellation check, and an IOError otherwise.
func wrapIOError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return ctxErr
	}

	var ioErr IOError
	if errors.As(err, &ioErr) {
		return err
	}

	return IOError{Err: err}
}
