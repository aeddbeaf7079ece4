package usecase

import (
	"errors"
	"fmt"
)

const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
	CodeConfigurationInvalid = "CONFIGURATION_INVALID"
	CodeRunInProgress        = "IMPORT_RUNNING"
	CodeInternal             = "INTERNAL_ERROR"
)

// DomainError is a caller mistake; handlers answer with a 4xx.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps an infrastructure failure; handlers answer with a 5xx
// and never echo Err to the client.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ErrConfigurationInvalid marks a sheet configuration rejected at create time.
var ErrConfigurationInvalid = errors.New("import configuration is invalid")

func notFound(what string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: what + " not found"}
}

func forbidden(msg string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: msg}
}

func invalidConfiguration(reason string) *DomainError {
	return &DomainError{Code: CodeConfigurationInvalid, Message: fmt.Sprintf("%s: %s", ErrConfigurationInvalid, reason)}
}

func technical(msg string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeInternal, Message: msg, Err: err}
}
