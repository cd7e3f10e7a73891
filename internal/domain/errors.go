package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// Wrap returns a copy of the error carrying an underlying cause.
func (e *DomainError) Wrap(err error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodePrecondition     = "PRECONDITION_FAILED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidLifecycleState = NewDomainError(ErrCodeValidation, "invalid lifecycle state")
	ErrInvalidPracticeArea   = NewDomainError(ErrCodeValidation, "invalid practice area")
	ErrMissingRequiredField  = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrJudgmentNotFound   = NewDomainError(ErrCodeNotFound, "judgment not found")
	ErrChunkNotFound      = NewDomainError(ErrCodeNotFound, "chunk not found")
	ErrCheckpointNotFound = NewDomainError(ErrCodeNotFound, "checkpoint not found")
)

// Already exists errors
var (
	ErrJudgmentAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "judgment already exists")
)

// Pipeline precondition errors
var (
	// ErrWrongState marks an item that is not in the prior state a stage
	// requires. The orchestrator skips such items instead of failing the
	// batch.
	ErrWrongState = NewDomainError(ErrCodePrecondition, "judgment is not in the required prior state")
)

// Auth errors
var (
	ErrInvalidServiceKey = NewDomainError(ErrCodeUnauthorized, "invalid service key")
)
