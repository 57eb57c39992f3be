package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for remote collection operations
var (
	// ErrRemoteOperation is the root of every failed get/create/update/delete
	ErrRemoteOperation = errors.New("remote operation failed")

	// ErrNotFound indicates the list or item does not exist
	ErrNotFound = fmt.Errorf("%w: not found", ErrRemoteOperation)

	// ErrUnauthorized indicates the token was rejected or lacks permission
	ErrUnauthorized = fmt.Errorf("%w: access denied", ErrRemoteOperation)

	// ErrServerOffline indicates the list service is unreachable
	ErrServerOffline = fmt.Errorf("%w: server is unreachable", ErrRemoteOperation)

	// ErrInvalidID indicates an operation was invoked without a usable record id
	ErrInvalidID = errors.New("record id is not defined")
)

// RemoteError carries the status and body of an unexpected server response
type RemoteError struct {
	Op     string // "get", "create", "update", "delete"
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}

// Unwrap lets errors.Is(err, ErrRemoteOperation) match
func (e *RemoteError) Unwrap() error {
	return ErrRemoteOperation
}
