package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
// Callers branch on the code, never on the concrete error message.
const (
	// ErrCodeUnsupportedPlatform: unknown platform key; no browser
	// resources were acquired.
	ErrCodeUnsupportedPlatform = "UNSUPPORTED_PLATFORM"

	// ErrCodeSessionAcquisition: the browser context/page could not be
	// created. Fatal to the job.
	ErrCodeSessionAcquisition = "SESSION_ACQUISITION_FAILED"

	// ErrCodeNavigationTimeout: a bounded navigation wait expired.
	ErrCodeNavigationTimeout = "NAVIGATION_TIMEOUT"

	// ErrCodeInteractionTimeout: a bounded interaction wait (search box,
	// typing, click) expired.
	ErrCodeInteractionTimeout = "INTERACTION_TIMEOUT"

	// ErrCodeExtractionService: the extraction service call itself failed
	// or timed out. Fatal to the job.
	ErrCodeExtractionService = "EXTRACTION_SERVICE_FAILED"

	// ErrCodeMalformedResponse: repair could not produce parseable JSON.
	// Recovered locally as an empty record set; never surfaces to callers.
	ErrCodeMalformedResponse = "MALFORMED_RESPONSE"

	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeStorage      = "STORAGE_FAILED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CrawlError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type CrawlError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}

// NewCrawlError creates a new CrawlError.
func NewCrawlError(code, message string, err error) *CrawlError {
	return &CrawlError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *CrawlError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// CodeOf returns the CrawlError code of err, or ErrCodeInternal when err
// carries no code.
func CodeOf(err error) string {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeInternal
}
