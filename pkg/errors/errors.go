package errors

import "errors"

// Error codes shared by the domain and transport layers.
const (
	CodeInvalidInput    = "invalid_input"
	CodeSessionNotFound = "session_not_found"
	CodeUpstream        = "upstream_error"
	CodeStore           = "store_error"
)

// AppError carries a machine readable code next to the human message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode reports whether any error in err's chain is an AppError with code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
