package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	// ErrCodeEngineUnavailable: the browser engine could not be started or
	// reconnected. Infrastructure failure, fails the call immediately.
	ErrCodeEngineUnavailable = "ENGINE_UNAVAILABLE"

	// ErrCodeVehicleNotFound: both resolution channels exhausted without a
	// confirmed vehicle.
	ErrCodeVehicleNotFound = "VEHICLE_NOT_FOUND"

	// ErrCodeFieldValidation: the form surfaced a labelled field error
	// (bad address, rejected input). Not retried.
	ErrCodeFieldValidation = "FIELD_VALIDATION"

	// ErrCodeTransientBackend: the form showed its generic system-error
	// banner. Recovered once via the form's own back action; escalates to
	// a reported failure if recovery also fails.
	ErrCodeTransientBackend = "TRANSIENT_BACKEND"

	// ErrCodeExtractionFailed: the final page was reached but no premium
	// could be parsed from it.
	ErrCodeExtractionFailed = "EXTRACTION_FAILED"

	ErrCodeTimeout      = "SCRAPE_TIMEOUT"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code and the step
// tag where the failure happened. It implements the error interface and
// supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Step    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, step, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Step: step, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
