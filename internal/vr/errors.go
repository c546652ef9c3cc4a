package vr

import (
	"errors"
	"fmt"
)

// ErrLoading is returned by the async load calls while a request is still
// in flight. It is the only transient load error: the caller keeps the
// request pending and polls again next frame.
var ErrLoading = errors.New("render model load in flight")

// LoadErrorCode classifies a failed render-model or texture load.
type LoadErrorCode int

const (
	LoadErrNone LoadErrorCode = iota
	LoadErrLoading
	LoadErrNotSupported
	LoadErrInvalidArg
	LoadErrInvalidModel
	LoadErrNoShapes
	LoadErrMultipleShapes
	LoadErrTooManyVertices
	LoadErrNotEnoughNormals
	LoadErrNotEnoughTexCoords
	LoadErrInvalidTexture
	LoadErrUnknown
)

func (c LoadErrorCode) String() string {
	switch c {
	case LoadErrNone:
		return "none"
	case LoadErrLoading:
		return "loading"
	case LoadErrNotSupported:
		return "not supported"
	case LoadErrInvalidArg:
		return "invalid argument"
	case LoadErrInvalidModel:
		return "invalid model"
	case LoadErrNoShapes:
		return "no shapes"
	case LoadErrMultipleShapes:
		return "multiple shapes"
	case LoadErrTooManyVertices:
		return "too many vertices"
	case LoadErrNotEnoughNormals:
		return "not enough normals"
	case LoadErrNotEnoughTexCoords:
		return "not enough texture coordinates"
	case LoadErrInvalidTexture:
		return "invalid texture"
	default:
		return "unknown"
	}
}

// Transient reports whether the load should be polled again rather than
// failed.
func (c LoadErrorCode) Transient() bool {
	return c == LoadErrLoading
}

// Silent reports whether the failure is marked without being logged.
// Models without texture coordinates are common on base stations and are
// expected to be undrawable; everything else is logged once.
func (c LoadErrorCode) Silent() bool {
	return c == LoadErrNotEnoughTexCoords
}

// LoadError is a classified, fatal load failure for a named model.
type LoadError struct {
	Code LoadErrorCode
	Name string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("render model %q: %s", e.Name, e.Code)
}

// CodeOf extracts the classification code from a load error. Unrecognized
// errors classify as LoadErrUnknown, which is fatal and logged.
func CodeOf(err error) LoadErrorCode {
	if err == nil {
		return LoadErrNone
	}
	if errors.Is(err, ErrLoading) {
		return LoadErrLoading
	}
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return LoadErrUnknown
}
