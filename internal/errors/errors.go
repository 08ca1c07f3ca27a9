package errors

import "fmt"

const (
	ErrNotFound          = "NOT_FOUND"
	ErrInvalidTransition = "INVALID_TRANSITION"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrForbidden         = "FORBIDDEN"
	ErrConflict          = "CONFLICT"
	ErrValidation        = "VALIDATION"
	ErrInternal          = "INTERNAL"
)

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func Wrap(code, msg string, err error) *DomainError {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// --- Generic ---

func NewNotFound(entity, id string) *DomainError {
	return &DomainError{Code: ErrNotFound, Message: fmt.Sprintf("%s with id %s not found", entity, id)}
}

func NewInvalidTransition(from, to string) *DomainError {
	return &DomainError{Code: ErrInvalidTransition, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

func NewUnauthorized(msg string) *DomainError {
	return &DomainError{Code: ErrUnauthorized, Message: msg}
}

func NewForbidden(msg string) *DomainError {
	return &DomainError{Code: ErrForbidden, Message: msg}
}

func NewConflict(msg string) *DomainError {
	return &DomainError{Code: ErrConflict, Message: msg}
}

func NewValidation(msg string) *DomainError {
	return &DomainError{Code: ErrValidation, Message: msg}
}

func NewInternal(msg string, err error) *DomainError {
	return &DomainError{Code: ErrInternal, Message: msg, Err: err}
}

// --- Driver ---

func DriverNotFound(id string) *DomainError {
	return NewNotFound("driver", id)
}

func DriverInactive() *DomainError {
	return NewForbidden("driver account is deactivated")
}

func InvalidCredentials() *DomainError {
	return NewUnauthorized("invalid credentials")
}

// --- Customer ---

func CustomerNotFound(id string) *DomainError {
	return NewNotFound("customer", id)
}

// --- Order ---

func OrderNotFound(id string) *DomainError {
	return NewNotFound("order", id)
}

func OrderInvalidTransition(from, to string) *DomainError {
	return NewInvalidTransition(from, to)
}

func OrderNotAssigned() *DomainError {
	return NewForbidden("order is not assigned to this driver")
}

// --- Admin ---

func AdminNotFound(id string) *DomainError {
	return NewNotFound("admin", id)
}

func EmailTaken(email string) *DomainError {
	return NewConflict(fmt.Sprintf("email %s is already registered", email))
}

func InvalidPasscode() *DomainError {
	return NewForbidden("invalid developer passcode")
}

func InvalidOTP() *DomainError {
	return NewUnauthorized("invalid or expired OTP")
}
