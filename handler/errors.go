package handler

import (
	"errors"
	"net/http"
)

var ErrNilResponse = errors.New("handler.nil_response")

// HTTPError carries the status code and the error key sent to the client.
type HTTPError struct {
	Code int
	Key  string
	Err  error
}

func (e HTTPError) Error() string {
	if e.Err != nil {
		return e.Key + ": " + e.Err.Error()
	}
	return e.Key
}

func (e HTTPError) Unwrap() error { return e.Err }

// NewHTTPError wraps err, keyed by err's message.
func NewHTTPError(code int, err error) HTTPError {
	return HTTPError{Code: code, Key: err.Error(), Err: err}
}

func BadRequest(err error) HTTPError {
	return HTTPError{Code: http.StatusBadRequest, Key: "request.invalid", Err: err}
}

var (
	ErrUnauthorized = HTTPError{Code: http.StatusUnauthorized, Key: "request.unauthorized"}
	ErrNotFound     = HTTPError{Code: http.StatusNotFound, Key: "request.not_found"}
	ErrInternal     = HTTPError{Code: http.StatusInternalServerError, Key: "internal_error"}
)
