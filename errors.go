package offerdoc

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions a generation run cannot recover from.
var (
	ErrNoBaseDocument = errors.New("offerdoc: base document is empty")
	ErrBaseUnreadable = errors.New("offerdoc: base document cannot be parsed")
)

// StageError wraps a failure inside one named stage of the generation
// pipeline. Stages degrade rather than abort, so a StageError normally
// surfaces through the run log instead of a return value.
type StageError struct {
	Stage string // pipeline stage, e.g. "financing", "charts"
	Err   error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("offerdoc: stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("offerdoc: stage %s failed", e.Stage)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func newStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
