// Package tools provides the tool registry and execution framework.
//
// This file defines the normalized error taxonomy for tool execution.
// Backend-specific failures (HTTP status codes, os errors) are mapped
// into a small set of kinds so the model sees stable observation text
// no matter which collaborator failed.
package tools

import (
	"errors"
	"fmt"
)

// Kind classifies a tool execution failure.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindPermissionDenied Kind = "permission_denied"
	KindRateLimited      Kind = "rate_limited"
	KindUnauthorized     Kind = "unauthorized"
	KindInvalid          Kind = "invalid"
	KindTruncated        Kind = "truncated"
)

// Error is a classified tool execution failure. It flows back to the
// model as an error observation, never as a crash.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Errorf builds a classified Error.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return Errorf(KindNotFound, format, args...)
}

// PermissionDenied builds a KindPermissionDenied error.
func PermissionDenied(format string, args ...any) *Error {
	return Errorf(KindPermissionDenied, format, args...)
}

// Unauthorized builds a KindUnauthorized error.
func Unauthorized(format string, args ...any) *Error {
	return Errorf(KindUnauthorized, format, args...)
}

// RateLimited builds a KindRateLimited error.
func RateLimited(format string, args ...any) *Error {
	return Errorf(KindRateLimited, format, args...)
}

// Invalid builds a KindInvalid error.
func Invalid(format string, args ...any) *Error {
	return Errorf(KindInvalid, format, args...)
}

// KindOf returns the error's kind, or "" for unclassified errors.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
