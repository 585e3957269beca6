package eventmodels

import "fmt"

// ValidationError rejects user input before any exchange call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ExchangeError carries a remote rejection or a transport failure. Code is the
// exchange's own error code, e.g. -1121 for an invalid symbol; HTTPStatus is 0
// when the request never produced a response.
type ExchangeError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e ExchangeError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("exchange error %d (http %d): %s", e.Code, e.HTTPStatus, e.Message)
	}

	if e.HTTPStatus != 0 {
		return fmt.Sprintf("exchange error (http %d): %s", e.HTTPStatus, e.Message)
	}

	return fmt.Sprintf("exchange error: %s", e.Message)
}

// ConfigurationError is fatal: it prevents server start.
type ConfigurationError struct {
	Message string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}
