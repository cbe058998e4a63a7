package service

import "errors"

var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidStatus       = errors.New("invalid status transition")
	ErrNoPendingResolution = errors.New("no resolution pending approval")
	ErrAlreadyReported     = errors.New("complaint already reported by viewer")
	ErrActionInFlight      = errors.New("same action already in flight for complaint")
	ErrRemoteFailure       = errors.New("remote complaint service failure")
)
