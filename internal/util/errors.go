package util

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrAssistantUnavailable = errors.New("assistant is unavailable right now")
	ErrSessionSaveFailed    = errors.New("failed to persist session state")
	ErrSessionStoreDown     = errors.New("session store unavailable")
)
