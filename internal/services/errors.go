package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrForbidden          = errors.New("access denied")
	ErrSelfTarget         = errors.New("this action cannot be applied to your own account")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")

	ErrUserNotFound          = errors.New("user not found")
	ErrEntryNotFound         = errors.New("work hour entry not found")
	ErrJobOrderNotFound      = errors.New("job order not found")
	ErrEquipmentNotFound     = errors.New("equipment not found")
	ErrProcedureNotFound     = errors.New("procedure not found")
	ErrQualificationNotFound = errors.New("qualification not found")

	ErrUsernameTaken  = errors.New("username already exists")
	ErrEmailTaken     = errors.New("email already registered")
	ErrJobNumberTaken = errors.New("job number already exists")

	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// FieldError names one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports every invalid field of an input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// fieldChecks accumulates field errors across a whole input.
type fieldChecks struct {
	fields []FieldError
}

func (v *fieldChecks) check(ok bool, field, message string) {
	if !ok {
		v.fields = append(v.fields, FieldError{Field: field, Message: message})
	}
}

func (v *fieldChecks) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// notFound maps gorm.ErrRecordNotFound to the service's sentinel.
func notFound(err error, sentinel error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
