package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type ErrorTag string

const (
	SyntaxErrorTag    ErrorTag = "SyntaxError"
	ReferenceErrorTag ErrorTag = "ReferenceError"
	TypeErrorTag      ErrorTag = "TypeError"
	RangeErrorTag     ErrorTag = "RangeError"

	// InternalErrorTag marks paths the interpreter does not implement.
	InternalErrorTag ErrorTag = "InternalError"
)

type Exception interface {
	error
	Exception() any
}

// Error is the structured replacement of a fatal halt. It travels up the
// evaluator as a plain Go error and is surfaced as a Throw completion.
type Error struct {
	Tag   ErrorTag
	Err   error
	Extra map[string]any
}

var _ Exception = (*Error)(nil)

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Tag)
	}

	var b strings.Builder
	b.WriteString(string(e.Tag))
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Exception() any {
	tags := []any{e.Tag}
	for err := errors.Unwrap(error(e)); err != nil; err = errors.Unwrap(err) {
		if e, ok := err.(*Error); ok {
			tags = append(tags, e.Tag)
		}
	}

	o := map[string]any{
		"tags": tags,
	}
	if e.Err != nil {
		o["message"] = e.Err.Error()
	}
	if len(e.Extra) != 0 {
		o = lo.Assign(o, e.Extra)
	}
	return o
}

func NewSyntaxError(format string, args ...any) *Error {
	return &Error{Tag: SyntaxErrorTag, Err: fmt.Errorf(format, args...)}
}

func NewReferenceError(format string, args ...any) *Error {
	return &Error{Tag: ReferenceErrorTag, Err: fmt.Errorf(format, args...)}
}

func NewTypeError(format string, args ...any) *Error {
	return &Error{Tag: TypeErrorTag, Err: fmt.Errorf(format, args...)}
}

func NewInternalError(format string, args ...any) *Error {
	return &Error{Tag: InternalErrorTag, Err: fmt.Errorf(format, args...)}
}

// WithPosition attaches a source location to the error.
func (e *Error) WithPosition(line, column int) *Error {
	e.Extra = lo.Assign(e.Extra, map[string]any{
		"line":   line,
		"column": column,
	})
	return e
}

// TagOf reports the tag of the outermost *Error in err's chain.
func TagOf(err error) (ErrorTag, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Tag, true
	}
	return "", false
}

// IsTag reports whether err is an *Error carrying tag.
func IsTag(err error, tag ErrorTag) bool {
	t, ok := TagOf(err)
	return ok && t == tag
}
