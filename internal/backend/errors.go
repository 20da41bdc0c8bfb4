package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Error describes a failed call to the backend API. Status is zero when no
// HTTP response was obtained; in that case Err carries the transport-level
// cause. When the backend did respond, Message and Errors hold the
// `message` and `errors` fields of its body, if present.
type Error struct {
	Op      string
	Status  int
	Message string
	Errors  json.RawMessage
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Message != "" {
		return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("backend %s: status %d", e.Op, e.Status)
}

// Unwrap allows errors.Is/As to inspect the underlying transport error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Responded reports whether an HTTP response was obtained from the backend.
func (e *Error) Responded() bool {
	return e != nil && e.Status != 0
}

// ContractError signals a 2xx backend response whose body is missing a
// field this gateway depends on. It is kept distinct from Error so callers
// can tell a broken contract apart from an unavailable or rejecting backend.
type ContractError struct {
	Op    string
	Field string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("backend %s: response missing required field %q", e.Op, e.Field)
}

var nullLiteral = []byte("null")

// presentJSON reports whether a raw JSON fragment carries a usable value.
func presentJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, nullLiteral)
}
