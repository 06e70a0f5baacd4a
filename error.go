package mblink

import (
	"errors"
)

// engine error taxonomy. ErrDeadlineElapsed is the only condition the retry
// loop produces on its own; everything else passes through from the
// provider untouched so callers can tell a dead link from a slow one.
var (
	// ErrDeadlineElapsed 所有重试次数均超时
	ErrDeadlineElapsed = errors.New("mblink: timeout: deadline has elapsed")
	// ErrUnknownRequest the request kind matched neither engine dispatch
	// path. This is a programming error, not a wire condition.
	ErrUnknownRequest = errors.New("mblink: request out of engine dispatch range")
	// ErrNotBoolResult the engine produced a word-shaped result for a
	// bool-shaped operation.
	ErrNotBoolResult = errors.New("mblink: result is not bool")
	// ErrNotWordResult the engine produced a bool-shaped result for a
	// word-shaped operation.
	ErrNotWordResult = errors.New("mblink: result is not u16")
)
