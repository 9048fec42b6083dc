package discount

import "net/http"

type ErrorCode string

const (
	ErrDiscountNotFound       ErrorCode = "DISCOUNT_NOT_FOUND"
	ErrDiscountAlreadyApplied ErrorCode = "DISCOUNT_ALREADY_APPLIED"
	ErrDiscountLockedByBundle ErrorCode = "DISCOUNT_LOCKED_BY_BUNDLE"
)

type Error struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Details    map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

func ValidationError(code ErrorCode, message string, details map[string]any) *Error {
	return &Error{Code: code, Message: message, StatusCode: http.StatusBadRequest, Details: details}
}
