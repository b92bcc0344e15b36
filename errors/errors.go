package errors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type ErrorCode string

const (
	CodeNotFound                 ErrorCode = "NOT_FOUND"
	CodeNotAuthorized            ErrorCode = "NOT_AUTHORIZED"
	CodeInvalidState             ErrorCode = "INVALID_STATE"
	CodeInvalidInput             ErrorCode = "INVALID_INPUT"
	CodeSelfChallenge            ErrorCode = "SELF_CHALLENGE"
	CodeDuplicateActiveChallenge ErrorCode = "DUPLICATE_ACTIVE_CHALLENGE"
	CodeLockHeldByOther          ErrorCode = "LOCK_HELD_BY_OTHER"
	CodeAlreadyUploaded          ErrorCode = "ALREADY_UPLOADED"
	CodeNoScoreYet               ErrorCode = "NO_SCORE_YET"
	CodeAlreadyUnlocked          ErrorCode = "ALREADY_UNLOCKED"
	CodeRequirementsNotMet       ErrorCode = "REQUIREMENTS_NOT_MET"
	CodeInsufficientRp           ErrorCode = "INSUFFICIENT_RP"
	CodeNotPurchasable           ErrorCode = "NOT_PURCHASABLE"
	CodeInternal                 ErrorCode = "INTERNAL"
)

// AppError is the error type returned by every service operation. The code
// identifies the business failure; Err carries an underlying cause, if any.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func Internal(message string, err error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Err: err}
}

// CodeOf extracts the ErrorCode from err, or CodeInternal for plain errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps an error code to the fiber status used by the handlers.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeNotAuthorized:
		return fiber.StatusForbidden
	case CodeInvalidInput, CodeSelfChallenge, CodeNoScoreYet:
		return fiber.StatusBadRequest
	case CodeDuplicateActiveChallenge, CodeLockHeldByOther, CodeAlreadyUploaded,
		CodeAlreadyUnlocked, CodeInvalidState:
		return fiber.StatusConflict
	case CodeRequirementsNotMet, CodeInsufficientRp, CodeNotPurchasable:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
