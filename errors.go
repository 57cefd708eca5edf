package rpminspect

import (
	"errors"
	"strings"
)

// Error is the rpminspect error domain type.
//
// Errors coming from rpminspect components should be able to be inspected as
// ([errors.As]) an *Error at some point in the error chain.
//
// Components should create an Error at the system boundary (reading a
// config file, opening an RPM header, extracting a payload, spawning a
// subprocess) and intermediate layers should not wrap in another Error
// except to add additional [ErrorKind] information: use [fmt.Errorf] with a
// "%w" verb in preference to creating a containing Error.
type Error struct {
	Inner   error
	Kind    ErrorKind
	Message string
	Op      string
}

var (
	_ error                       = (*Error)(nil)
	_ interface{ Is(error) bool } = (*Error)(nil)
	_ interface{ Unwrap() error } = (*Error)(nil)
)

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	b.WriteString("[")
	switch e.Kind {
	case ErrConfig, ErrAcquisition, ErrInspection, ErrFramework:
		b.WriteString(string(e.Kind))
	default:
		b.WriteString("???")
	}
	b.WriteString("]: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	}
	if e.Message != "" && e.Inner != nil {
		b.WriteString(": ")
	}
	if e.Op == "" && e.Message == "" {
		b.Reset()
	}
	if e.Inner != nil {
		b.WriteString(e.Inner.Error())
	}
	return b.String()
}

// Is enables [errors.Is].
//
// It compares the error kind. Callers should compare against a declared
// [ErrorKind] over a specific error.
func (e *Error) Is(kind error) bool {
	return errors.Is(e.Kind, kind)
}

// Unwrap enables [errors.Unwrap].
func (e *Error) Unwrap() error {
	return e.Inner
}

// ErrorKind represents classes of errors to be checked against.
//
// These map onto the error taxonomy: ErrConfig and ErrAcquisition abort a
// run; ErrInspection is recorded as a Diagnostic result and lets the
// offending inspection continue; ErrFramework means an invariant was
// violated and always aborts.
type ErrorKind string

// Defined error kinds.
var (
	ErrConfig      = ErrorKind("config")      // bad or missing configuration/profile
	ErrAcquisition = ErrorKind("acquisition")  // could not fetch/open/extract a build
	ErrInspection  = ErrorKind("inspection")   // an inspection's tool or input misbehaved
	ErrFramework   = ErrorKind("framework bug") // invariant violation
)

// Error implements error.
func (e ErrorKind) Error() string {
	return string(e)
}
