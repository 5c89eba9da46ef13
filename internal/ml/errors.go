package ml

import (
	"errors"
	"fmt"
)

var (
	ErrDataLoad  = errors.New("data load error")
	ErrInference = errors.New("inference error")
)

// DataLoadError reports a missing, empty or malformed training source.
// Line is 1-based and zero when the failure is not tied to a line.
type DataLoadError struct {
	Path string
	Line int
	Err  error
}

func (e *DataLoadError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s: %s:%d: %v", ErrDataLoad, e.Path, e.Line, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %v", ErrDataLoad, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s: %v", ErrDataLoad, e.Err)
	}
}

func (e *DataLoadError) Unwrap() error { return e.Err }

func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }

// InferenceError is returned when a prediction is requested without a ready model.
type InferenceError struct {
	Reason string
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInference, e.Reason)
}

func (e *InferenceError) Is(target error) bool { return target == ErrInference }
