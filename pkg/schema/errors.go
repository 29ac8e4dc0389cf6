package schema

import "fmt"

// Error codes for structured error reporting.
const (
	// ErrCodeConfig marks authoring mistakes: a step's declared bindings or
	// parameters are absent or mistyped at the StepDefinition level.
	ErrCodeConfig = "CONFIG_ERROR"
	// ErrCodeData marks runtime data mismatches: a bound context key is
	// declared but the context lacks the value or holds a different type.
	ErrCodeData       = "DATA_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeParse      = "PARSE_ERROR"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeExecution  = "EXECUTION_ERROR"
	ErrCodeStore      = "STORE_ERROR"
)

// FlowError is the structured error type for all interpreter operations.
type FlowError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Plugin  string `json:"plugin,omitempty"`
	Key     string `json:"key,omitempty"`
	Cause   error  `json:"-"`
}

func (e *FlowError) Error() string {
	if e.Plugin != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Plugin, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *FlowError) Unwrap() error {
	return e.Cause
}

// NewError creates a new FlowError.
func NewError(code, message string) *FlowError {
	return &FlowError{Code: code, Message: message}
}

// NewErrorf creates a new FlowError with a formatted message.
func NewErrorf(code, format string, args ...any) *FlowError {
	return &FlowError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithPlugin attaches the reporting plugin id to the error.
func (e *FlowError) WithPlugin(plugin string) *FlowError {
	e.Plugin = plugin
	return e
}

// WithKey attaches the offending context key or slot name.
func (e *FlowError) WithKey(key string) *FlowError {
	e.Key = key
	return e
}

// WithCause attaches an underlying cause.
func (e *FlowError) WithCause(err error) *FlowError {
	e.Cause = err
	return e
}
