package transfer

import (
	"context"
	"errors"
	"log/slog"
)

var (
	// Validation errors. All of them are raised before any socket is opened.
	ErrFileSize      = errors.New("firmware size out of range")
	ErrExtension     = errors.New("firmware file must be a .bin file")
	ErrAddressFormat = errors.New("wrong IP format")
	ErrPort          = errors.New("invalid port")

	// ErrDiscoveryTimeout means the device did not answer the identify datagram in time.
	ErrDiscoveryTimeout = errors.New("device did not answer, check device ip and port")
	// ErrDiscoveryEmptyReply means the device answered with an empty datagram.
	ErrDiscoveryEmptyReply = errors.New("device not found")
	ErrDiscoverySend       = errors.New("identify probe failed")

	ErrTransferSocket = errors.New("transfer socket error")
	ErrUnexpectedIO   = errors.New("firmware read error")

	ErrDisabled               = errors.New("ota disabled by configuration")
	ErrInternal               = errors.New("internal error")
	ErrInvalidConfiguration   = errors.New("invalid configuration")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// ErrorCategory represents the category of an error for reporting purposes
type ErrorCategory int

const (
	// ErrorCategoryValidation covers rejected requests; nothing touched the network
	ErrorCategoryValidation ErrorCategory = iota
	// ErrorCategoryRecoverable covers failures an operator retry may fix
	ErrorCategoryRecoverable
	// ErrorCategoryNonRecoverable covers broken transfers
	ErrorCategoryNonRecoverable
	// ErrorCategorySystem covers configuration and programming errors
	ErrorCategorySystem
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrorCategoryValidation:
		return "validation"
	case ErrorCategoryRecoverable:
		return "recoverable"
	case ErrorCategoryNonRecoverable:
		return "non_recoverable"
	case ErrorCategorySystem:
		return "system"
	default:
		return "unknown"
	}
}

// CategorizeError determines the category of an error
func CategorizeError(err error) ErrorCategory {
	switch {
	case errors.Is(err, ErrFileSize),
		errors.Is(err, ErrExtension),
		errors.Is(err, ErrAddressFormat),
		errors.Is(err, ErrPort):
		return ErrorCategoryValidation
	case errors.Is(err, ErrDiscoveryTimeout),
		errors.Is(err, ErrDiscoveryEmptyReply),
		errors.Is(err, ErrDiscoverySend),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ErrorCategoryRecoverable
	case errors.Is(err, ErrTransferSocket),
		errors.Is(err, ErrUnexpectedIO):
		return ErrorCategoryNonRecoverable
	default:
		return ErrorCategorySystem
	}
}

// LogError logs a failed phase with its category
func LogError(logger *slog.Logger, phase string, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	category := CategorizeError(err)
	logFields := []any{
		"phase", phase,
		"error", err,
		"category", category.String(),
	}

	switch category {
	case ErrorCategoryValidation, ErrorCategoryRecoverable:
		logger.Warn("OTA aborted", logFields...)
	default:
		logger.Error("OTA failed", logFields...)
	}
}
