package gcmerr

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

const (
	CodeUnknown             Code = 0
	CodeIllegalAPIKey       Code = 1
	CodeAuthenticationError Code = 2
	CodeMalformedRequest    Code = 3
	CodeUnknownError        Code = 4
	CodeMalformedResponse   Code = 5
	CodeInvalidParams       Code = 6
	CodeInvalidTTL          Code = 7
	CodeOutsideTTL          Code = 8
	CodeInvalidTarget       Code = 9
	CodeInvalidPriority     Code = 10
)

type Code int

var _CodeNames = map[Code]string{
	CodeUnknown:             "unknown",
	CodeIllegalAPIKey:       "illegal api key",
	CodeAuthenticationError: "authentication error",
	CodeMalformedRequest:    "malformed request",
	CodeUnknownError:        "unknown error",
	CodeMalformedResponse:   "malformed response",
	CodeInvalidParams:       "invalid params",
	CodeInvalidTTL:          "invalid ttl",
	CodeOutsideTTL:          "outside ttl",
	CodeInvalidTarget:       "invalid target",
	CodeInvalidPriority:     "invalid priority",
}

func (c Code) String() string {
	val, ok := _CodeNames[c]
	if !ok {
		return fmt.Sprintf("invalid error code: %d", c)
	}

	return val
}

// Error is a failure reported by the message builder or by a sender.
// Code tells the caller which rule was broken.
type Error struct {
	Code Code
	err  error
}

func New(code Code, message string) *Error {
	return &Error{
		Code: code,
		err:  errors.New(message),
	}
}

func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{
		Code: code,
		err:  errors.Errorf(format, args...),
	}
}

// Wrap attaches a code to err. A nil err gives a nil *Error.
func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Code: code,
		err:  errors.Wrap(err, message),
	}
}

func (e *Error) Error() string {
	return strconv.Itoa(int(e.Code)) + " " + e.err.Error()
}

func (e *Error) Err() error {
	return e.err
}

func (e *Error) Unwrap() error {
	return e.err
}

// CodeOf returns the code of the first *Error in the chain of err,
// CodeUnknown when there is none.
func CodeOf(err error) Code {
	var target *Error
	if errors.As(err, &target) {
		return target.Code
	}

	return CodeUnknown
}

func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
