package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy - match with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ConflictError carries details about the existing resource so callers
// can return it alongside the 409.
type ConflictError struct {
	Message      string
	ResourceType string // group, folder, file, user
	ResourceID   string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// StorageError wraps a filesystem failure during mkdir/write/read.
// The wrapped error is kept for logging; callers must not surface
// internal paths to clients.
type StorageError struct {
	Op  string // "mkdir", "create", "read", "zip"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
