// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrMerchantNotFound      = errors.New("merchant not found")
	ErrTerminalNotFound      = errors.New("terminal not found")
	ErrCommunicationNotFound = errors.New("communication not found")
	ErrAlertNotFound         = errors.New("alert not found")
	ErrSettingNotFound       = errors.New("setting not found")
	ErrSessionNotFound       = errors.New("session not found")
	ErrRateNotAvailable      = errors.New("exchange rate not available")
	ErrInvalidRate           = errors.New("exchange rate must be greater than zero")
	ErrDuplicateMerchant     = errors.New("merchant already exists for terminal and account")

	// Upload errors
	ErrEmptyUpload        = errors.New("uploaded file contains no data rows")
	ErrMissingColumns     = errors.New("uploaded file is missing required columns")
	ErrUnsupportedKind    = errors.New("unsupported report kind")
	ErrInvalidCurrencyTag = errors.New("currency tag must be USD or ZWG")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
