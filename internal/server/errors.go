package server

import "net/http"

// apiError is an error reported to HTTP clients as {"error": Message}.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return e.Message
}

var (
	errNoFile          = &apiError{Status: http.StatusBadRequest, Message: "No file provided"}
	errUnsupportedType = &apiError{Status: http.StatusBadRequest, Message: "Only PDF and image files are supported"}
	errTooLarge        = &apiError{Status: http.StatusRequestEntityTooLarge, Message: "File is too large"}
	errParseFailed     = &apiError{Status: http.StatusInternalServerError, Message: "Failed to parse resume"}
	errBusy            = &apiError{Status: http.StatusServiceUnavailable, Message: "Server is busy, try again later"}
	errStoreDisabled   = &apiError{Status: http.StatusNotImplemented, Message: "Analysis history is not configured"}
	errInvalidID       = &apiError{Status: http.StatusBadRequest, Message: "Invalid analysis id"}
	errNotFound        = &apiError{Status: http.StatusNotFound, Message: "Analysis not found"}
	errStoreFailed     = &apiError{Status: http.StatusInternalServerError, Message: "Failed to read analysis history"}
)
