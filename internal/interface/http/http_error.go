package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/runplanner/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

var statusByCode = map[string]int{
	"invalid_input":       http.StatusBadRequest,
	"invalid_credentials": http.StatusUnauthorized,
	"invalid_token":       http.StatusUnauthorized,
	"user_not_found":      http.StatusNotFound,
	"location_not_found":  http.StatusNotFound,
	"email_exists":        http.StatusConflict,
	"run_conflict":        http.StatusConflict,
	"rate_limit_exceeded": http.StatusTooManyRequests,
	"invalid_api_key":     http.StatusBadGateway,
	"forecast_error":      http.StatusBadGateway,
	"service_unavailable": http.StatusServiceUnavailable,
}

// fromAppError maps a domain error onto a response; unknown codes become 500s
// labelled with fallbackCode.
func fromAppError(err error, fallbackCode string) *HTTPError {
	code := apperrors.CodeOf(err)
	if status, ok := statusByCode[code]; ok {
		return NewHTTPError(status, code, apperrors.MessageOf(err), err)
	}
	return NewHTTPError(http.StatusInternalServerError, fallbackCode, apperrors.MessageOf(err), err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
