package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// PlatformError is implemented by every error created by this package.
// Use errors.As with a PlatformError variable to inspect code and context.
type PlatformError interface {
	error

	// Code returns the error classification.
	Code() ErrorCode

	// Message returns the human readable message without the cause.
	Message() string

	// Context returns additional key/value details, never nil.
	Context() map[string]interface{}

	// Unwrap returns the underlying cause, if any.
	Unwrap() error
}

type platformError struct {
	code    ErrorCode
	message string
	context map[string]interface{}
	cause   error
}

// New creates a PlatformError with the given code and message.
//
//nolint:ireturn // callers match on the PlatformError interface.
func New(code ErrorCode, message string) PlatformError {
	return &platformError{code: code, message: message, context: map[string]interface{}{}}
}

// Newf creates a PlatformError with a formatted message.
//
//nolint:ireturn // callers match on the PlatformError interface.
func Newf(code ErrorCode, format string, args ...interface{}) PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps cause with a code and message. A nil cause returns nil.
func Wrap(cause error, code ErrorCode, message string) error {
	if cause == nil {
		return nil
	}
	return &platformError{code: code, message: message, context: map[string]interface{}{}, cause: cause}
}

// WrapWithContext wraps cause with a code, message and context details.
// A nil cause returns nil.
func WrapWithContext(cause error, code ErrorCode, message string, ctx map[string]interface{}) error {
	if cause == nil {
		return nil
	}
	copied := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		copied[k] = v
	}
	return &platformError{code: code, message: message, context: copied, cause: cause}
}

func (e *platformError) Error() string {
	var b strings.Builder
	b.WriteString(e.message)
	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.context[k])
		}
		b.WriteString(")")
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *platformError) Code() ErrorCode                 { return e.code }
func (e *platformError) Message() string                 { return e.message }
func (e *platformError) Context() map[string]interface{} { return e.context }
func (e *platformError) Unwrap() error                   { return e.cause }

// GetCode returns the code of the outermost PlatformError in err's chain,
// or CodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var pe PlatformError
	if stderrors.As(err, &pe) {
		return pe.Code()
	}
	return CodeUnknown
}

// HasCode reports whether any PlatformError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var pe PlatformError
		if !stderrors.As(err, &pe) {
			return false
		}
		if pe.Code() == code {
			return true
		}
		err = pe.Unwrap()
	}
	return false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// Join returns an error that wraps the given errors.
func Join(errs ...error) error { return stderrors.Join(errs...) }
