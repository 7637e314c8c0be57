package xlread

import (
	"errors"
	"fmt"
)

// Stage names a pipeline stage.
type Stage string

const (
	StageDecode    Stage = "decode"
	StageParse     Stage = "parse"
	StageNormalize Stage = "normalize"
)

// Sentinels matched by errors.Is against a StageError of the same stage.
var (
	ErrDecode    = errors.New("decode failed")
	ErrParse     = errors.New("parse failed")
	ErrNormalize = errors.New("normalize failed")
)

// ErrPayloadTooLarge indicates a payload over the configured size limit.
var ErrPayloadTooLarge = errors.New("payload too large")

// StageError represents a failure in one pipeline stage.
type StageError struct {
	Stage Stage
	Sheet string // set for normalize failures
	Err   error
}

func (e *StageError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("%s failed in sheet %q: %v", e.Stage, e.Sheet, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches the stage sentinel.
func (e *StageError) Is(target error) bool {
	switch target {
	case ErrDecode:
		return e.Stage == StageDecode
	case ErrParse:
		return e.Stage == StageParse
	case ErrNormalize:
		return e.Stage == StageNormalize
	}
	return false
}

func newStageError(stage Stage, sheet string, err error) *StageError {
	return &StageError{
		Stage: stage,
		Sheet: sheet,
		Err:   err,
	}
}

// Failure is the uniform error delivered by a Completion.
// Message is its only observable field; the cause stays reachable through Unwrap.
type Failure struct {
	Message string `json:"message"`
	cause   error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.cause
}

func newFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Message: err.Error(), cause: err}
}
