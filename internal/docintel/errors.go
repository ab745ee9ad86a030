package docintel

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is the error body returned by the analysis service.
type ServiceError struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	Target     string        `json:"target,omitempty"`
	InnerError *ServiceError `json:"innererror,omitempty"`
}

type errorResponse struct {
	Error *ServiceError `json:"error"`
}

// APIError represents a non-success HTTP response from the analysis service
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("document analysis API error (HTTP %d)", e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// OperationError represents an analyze operation that finished with status failed or canceled
type OperationError struct {
	Code    string
	Message string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("analyze operation failed: %s: %s", e.Code, e.Message)
}

// ResponseError represents a response body that could not be understood
type ResponseError struct {
	Message string
	Cause   error
}

func (e *ResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid analysis response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid analysis response: %s", e.Message)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err means the model (or another resource) does not exist.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusNotFound {
			return true
		}
		return apiErr.Code == "ModelNotFound" || apiErr.Code == "NotFound"
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Code == "ModelNotFound" || opErr.Code == "NotFound"
	}
	return false
}

// IsAuthentication reports whether err is a rejected credential.
func IsAuthentication(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}
