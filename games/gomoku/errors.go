/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package gomoku

// Code classifies engine errors.
type Code string

const (
	CodeCapacity      Code = "capacity"
	CodeNotFound      Code = "not_found"
	CodeFull          Code = "full"
	CodeValidation    Code = "validation"
	CodeStateConflict Code = "state_conflict"
)

// Error is returned by registry and session operations. Two errors match
// under errors.Is when their codes match.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrCapacity      = &Error{Code: CodeCapacity, Message: "all rooms are in use"}
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrFull          = &Error{Code: CodeFull, Message: "room is full"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "invalid request"}
	ErrStateConflict = &Error{Code: CodeStateConflict, Message: "not allowed in the current state"}
)

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}
