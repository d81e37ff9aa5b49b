package entropy

import "errors"

var (
	// ErrRange is returned when a start/end pair does not delimit a non-empty
	// window of the buffer.
	ErrRange = errors.New("invalid sample range")
	// ErrInvalidLength is returned by the expected entropy model for n <= 0.
	ErrInvalidLength = errors.New("sample length must be positive")
)
