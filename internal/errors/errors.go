package errors

import (
	"errors"
	"fmt"
)

// Common error types for the gateway
var (
	// Authentication errors
	ErrUnauthorized = errors.New("invalid api key")

	// Session errors
	ErrInvalidSessionID    = errors.New("invalid session id")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionNotConnected = errors.New("session not connected")

	// Pairing errors
	ErrPairingTimeout = errors.New("pairing code generation timeout")

	// Webhook errors
	ErrInvalidWebhookURL = errors.New("invalid webhook url")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
