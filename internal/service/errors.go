package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Failure kinds. Handlers select status codes with errors.Is.
var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
)

// Error carries a client-facing message on top of one failure kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// 登录失败统一返回同一条消息，避免泄露账户是否存在
var (
	ErrInvalidCredentials = &Error{Kind: ErrUnauthenticated, Message: "incorrect email or password"}
	ErrUserDisabled       = &Error{Kind: ErrForbidden, Message: "user is inactive"}
)

// storeError maps GORM sentinel errors onto failure kinds; anything else is
// returned untouched and ends up as an internal error.
func storeError(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return newError(ErrNotFound, format, args...)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return newError(ErrConflict, format, args...)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return newError(ErrNotFound, "referenced record not found")
	default:
		return err
	}
}
