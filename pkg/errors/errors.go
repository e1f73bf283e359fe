package errors

import "errors"

// Error codes shared across domains.
const (
	CodeInvalidInput           = "invalid_input"
	CodeUnauthorized           = "unauthorized"
	CodeSignInFailed           = "sign_in_failed"
	CodeAuthNotConfigured      = "auth_not_configured"
	CodeCityNotFound           = "city_not_found"
	CodeFetchFailed            = "fetch_failed"
	CodeGeolocationDenied      = "geolocation_denied"
	CodeGeolocationUnavailable = "geolocation_unavailable"
)

// AppError encodes domain specific error details.
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
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost AppError, or "" when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// MessageOf returns the user facing message without the wrapped cause.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
