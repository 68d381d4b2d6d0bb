package domain

import "errors"

// Device errors - debug bridge and attached-device failures
var (
	// ErrBridgeUnavailable indicates the debug bridge executable is missing entirely
	ErrBridgeUnavailable = errors.New("debug bridge unavailable")

	// ErrDeviceNotFound indicates no usable device is attached
	ErrDeviceNotFound = errors.New("no device connected")

	// ErrDeviceUnauthorized indicates the device has not authorized this host
	ErrDeviceUnauthorized = errors.New("device unauthorized")

	// ErrStorageInaccessible indicates the device storage cannot be read
	ErrStorageInaccessible = errors.New("device storage inaccessible")
)

// File errors - local and remote filesystem failures
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrPermissionDenied indicates insufficient permissions
	ErrPermissionDenied = errors.New("permission denied")

	// ErrFileTooLarge indicates the file exceeds the configured size ceiling
	ErrFileTooLarge = errors.New("file too large")
)

// Operation errors - pipeline and dispatch failures
var (
	// ErrOperationRunning indicates another operation is already in progress
	ErrOperationRunning = errors.New("operation already in progress")

	// ErrConfirmTimeout indicates no conflict decision arrived in time
	ErrConfirmTimeout = errors.New("confirmation timed out")

	// ErrInvalidOperation indicates an unknown operation kind
	ErrInvalidOperation = errors.New("invalid operation")
)

// Config errors - configuration loading failures
var (
	// ErrConfigNotFound indicates no config file was found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates the config file is malformed
	ErrConfigInvalid = errors.New("invalid config")
)

// Cloud errors - object store failures
var (
	// ErrObjectNotFound indicates the object key does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrAuthFailed indicates the store rejected the credentials
	ErrAuthFailed = errors.New("authentication failed")

	// ErrQuotaExceeded indicates storage quota has been exceeded
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrNetworkError indicates a network-related failure
	ErrNetworkError = errors.New("network error")

	// ErrTimeout indicates operation timed out
	ErrTimeout = errors.New("operation timed out")
)
