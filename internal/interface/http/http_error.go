package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/preburn-dashboard/pkg/errors"
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

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

var codeStatus = map[string]struct {
	status int
	code   string
}{
	apperrors.CodeInvalidInput:    {http.StatusBadRequest, "invalid_request"},
	apperrors.CodeSessionNotFound: {http.StatusNotFound, "session_not_found"},
	apperrors.CodeUpstream:        {http.StatusBadGateway, "upstream_error"},
	apperrors.CodeStore:           {http.StatusInternalServerError, "store_error"},
}

// asHTTPError converts err into an HTTPError, mapping domain error codes to statuses.
func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	if mapped, ok := codeStatus[apperrors.CodeOf(err)]; ok {
		return NewHTTPError(mapped.status, mapped.code, err.Error(), err)
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
