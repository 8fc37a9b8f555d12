package errors

import "errors"

var (
	ErrMissingCredentials = errors.New("messaging platform credentials are required")
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrUnknownAction      = errors.New("unknown card action")
	ErrStorageClosed      = errors.New("storage is closed")
)
