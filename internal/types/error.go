package types

import "fmt"

// Error type names carried in CustomError.Type
const (
	ErrTypeAuth       = "authentication"
	ErrTypeForbidden  = "authorization"
	ErrTypeValidation = "validation"
	ErrTypeNotFound   = "notfound"
	ErrTypeUpstream   = "upstream"
	ErrTypeConfig     = "configuration"
	ErrTypeInternal   = "internal"
	ErrTypeRateLimit  = "ratelimit"
)

// CustomError is returned by handlers and rendered by the application error handler
type CustomError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Type    string   `json:"type"`
	Errors  []string `json:"errors,omitempty"`
	Detail  string   `json:"error,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d: %s [type: %s]: %s", e.Code, e.Message, e.Type, e.Detail)
	}
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// NewValidationError builds a 400 carrying the itemized messages
func NewValidationError(errs []string) *CustomError {
	return &CustomError{Code: 400, Message: "Validation failed", Type: ErrTypeValidation, Errors: errs}
}

// NewInternalError builds a 500 with a generic message and the underlying error text
func NewInternalError(message string, err error) *CustomError {
	ce := &CustomError{Code: 500, Message: message, Type: ErrTypeInternal}
	if err != nil {
		ce.Detail = err.Error()
	}
	return ce
}
