package network

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidGraph = errors.New("invalid graph")
)

// NotFoundError reports a node or link lookup that did not resolve.
type NotFoundError struct {
	Entity string // "node", "link" or "agent"
	Key    string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Entity, e.Key, ErrNotFound)
}

// Unwrap returns ErrNotFound so errors.Is works against the sentinel.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func nodeNotFound(name string) error {
	return &NotFoundError{Entity: "node", Key: name}
}

func linkNotFound(key string) error {
	return &NotFoundError{Entity: "link", Key: key}
}

// BuildError describes why a network description was rejected.
type BuildError struct {
	Entity string
	Key    string
	Reason string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Entity, e.Key, e.Reason)
}

// Is matches ErrInvalidGraph.
func (e *BuildError) Is(target error) bool {
	return target == ErrInvalidGraph
}
