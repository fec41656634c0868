package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindInvalidImage           Kind = "InvalidImage"
	KindReadOnlyDirectory      Kind = "ReadOnlyDirectory"
	KindDetectionFailed        Kind = "DetectionFailed"
	KindFilterCreationFailed   Kind = "FilterCreationFailed"
	KindFilterProcessingFailed Kind = "FilterProcessingFailed"
	KindImageConversionFailed  Kind = "ImageConversionFailed"
	KindFileWriteFailed        Kind = "FileWriteFailed"
	KindTimedOut               Kind = "TimedOut"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidImage           = &Error{Kind: KindInvalidImage}
	ErrReadOnlyDirectory      = &Error{Kind: KindReadOnlyDirectory}
	ErrDetectionFailed        = &Error{Kind: KindDetectionFailed}
	ErrFilterCreationFailed   = &Error{Kind: KindFilterCreationFailed}
	ErrFilterProcessingFailed = &Error{Kind: KindFilterProcessingFailed}
	ErrImageConversionFailed  = &Error{Kind: KindImageConversionFailed}
	ErrFileWriteFailed        = &Error{Kind: KindFileWriteFailed}
	ErrTimedOut               = &Error{Kind: KindTimedOut}
)

var reasons = map[Kind]string{
	KindInvalidImage:           "the file could not be read as an image",
	KindReadOnlyDirectory:      "the folder containing the image is not writable",
	KindDetectionFailed:        "text recognition failed",
	KindFilterCreationFailed:   "the redaction filter could not be created",
	KindFilterProcessingFailed: "the redaction filter failed",
	KindImageConversionFailed:  "the redacted image could not be converted",
	KindFileWriteFailed:        "the redacted image could not be saved",
	KindTimedOut:               "redaction took too long",
}

// Error is a typed pipeline failure carrying the image path and cause.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// Reason returns a human-readable description of the failure kind.
func (e *Error) Reason() string {
	if r, ok := reasons[e.Kind]; ok {
		return r
	}
	return string(e.Kind)
}

func (e *Error) Error() string {
	msg := e.Reason()
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of a pipeline error, or "" for other errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
