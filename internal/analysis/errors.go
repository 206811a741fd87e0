package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBatch is returned when AnalyzeBatch receives no samples.
	ErrEmptyBatch = errors.New("empty batch")
	// ErrInvalidReading marks a reading that escaped normalization with a negative or infinite value.
	ErrInvalidReading = errors.New("invalid reading")
)

// SampleError aborts a batch. Index is the position in the batch, Row the source row if known.
type SampleError struct {
	Index int
	Row   int
	Err   error
}

func (e *SampleError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("sample %d (row %d): %v", e.Index, e.Row, e.Err)
	}
	return fmt.Sprintf("sample %d: %v", e.Index, e.Err)
}

func (e *SampleError) Unwrap() error { return e.Err }
