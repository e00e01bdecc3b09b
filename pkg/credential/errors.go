package credential

import "errors"

// ErrRejected matches any *Error with errors.Is.
var ErrRejected = errors.New("credential: rejected")

// Error wraps a failed Result so it can travel through error returns.
type Error struct {
	Result Result
}

func (e *Error) Error() string { return e.Result.Message }

func (e *Error) Is(target error) bool { return target == ErrRejected }
