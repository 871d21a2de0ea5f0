package services

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is recorded when a model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// ValidationError is a client-correctable input problem on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError means no feedback record has the requested id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("feedback %q not found", e.ID)
}

// PersistenceError wraps a failed backend read or write during a write transaction.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// RemoteCallError is a failed model call. It never leaves the resolver.
type RemoteCallError struct {
	Model string
	Err   error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Model, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }
