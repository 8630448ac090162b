// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation was rejected
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindNotFound
	KindAlreadyExists
	KindInvalidArgument
	KindPolicyViolation
	KindPermissionDenied
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindPolicyViolation:
		return "policy_violation"
	case KindPermissionDenied:
		return "permission_denied"
	default:
		return "internal"
	}
}

// Error is returned by every registry operation that aborts. Message is the
// human-readable reason handed back to the caller.
type Error struct {
	Cause   error
	Message string
	Kind    Kind
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so the kind sentinels below can be
// used with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInternal         = &Error{Kind: KindInternal, Message: "internal error"}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "not found"}
	ErrAlreadyExists    = &Error{Kind: KindAlreadyExists, Message: "already exists"}
	ErrInvalidArgument  = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrPolicyViolation  = &Error{Kind: KindPolicyViolation, Message: "policy violation"}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied, Message: "permission denied"}
)

// ErrMissingCollaborator is returned by New when a required collaborator was
// not provided
var ErrMissingCollaborator = errors.New("registry: missing collaborator")

// ErrFingerprintMismatch is returned when a stored descriptor fingerprint was
// not produced by the configured hasher
var ErrFingerprintMismatch = errors.New("registry: fingerprint mismatch")

// NewError returns an *Error of the given kind
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// KindOf returns the kind of err, or KindInternal if err is not an *Error
func KindOf(err error) Kind {
	var regErr *Error
	if errors.As(err, &regErr) {
		return regErr.Kind
	}
	return KindInternal
}
