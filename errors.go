package main

import (
	"errors"
	"fmt"
)

// Parse error kinds.
var (
	ErrUnexpectedEOF  = errors.New("unexpected EOF")
	ErrUnexpectedChar = errors.New("unexpected character")
	ErrUndefined      = errors.New("undefined variable")
	ErrInvalidName    = errors.New("invalid name")
	ErrNumericLiteral = errors.New("invalid numeric literal")
)

// Evaluation error kinds.
var (
	ErrStackUnderflow = errors.New("stack underflow")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrInvalidBoolean = errors.New("invalid boolean")
	ErrDivideByZero   = errors.New("division by zero")
	ErrUnbound        = errors.New("unbound variable")
	ErrDepthLimit     = errors.New("depth limit exceeded")
	ErrInterrupted    = errors.New("interrupted")
	ErrOutput         = errors.New("output error")
)

var parseKinds = []error{ErrUnexpectedEOF, ErrUnexpectedChar, ErrUndefined, ErrInvalidName, ErrNumericLiteral}

// Error is a failure attributed to a source position. Every error returned by
// Parse or VM.Eval is an *Error; Kind is one of the Err* values above.
type Error struct {
	Pos
	Kind    error
	Message string

	cause error
}

func (err *Error) Error() string { return fmt.Sprintf("%v: %v", err.Pos, err.Message) }

// Is matches the error's kind, so errors.Is(err, ErrTypeMismatch) works.
func (err *Error) Is(target error) bool { return target == err.Kind }

// Unwrap returns any underlying cause, like a context cancellation.
func (err *Error) Unwrap() error { return err.cause }

func errorf(pos Pos, kind error, mess string, args ...interface{}) *Error {
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	return &Error{Pos: pos, Kind: kind, Message: mess}
}

func (err *Error) withCause(cause error) *Error {
	err.cause = cause
	return err
}

// IsParseError reports whether err came from parsing.
func IsParseError(err error) bool {
	var perr *Error
	if !errors.As(err, &perr) {
		return false
	}
	for _, kind := range parseKinds {
		if perr.Kind == kind {
			return true
		}
	}
	return false
}

// IsEvalError reports whether err came from evaluation.
func IsEvalError(err error) bool {
	var eerr *Error
	return errors.As(err, &eerr) && !IsParseError(err)
}
