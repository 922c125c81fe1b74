package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/studytrack-api/internal/api/shared"
	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/service"
	"github.com/phrazzld/studytrack-api/internal/service/auth"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// MapErrorToStatusCode maps an error to its HTTP status without exposing
// the error itself.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, service.ErrInUse):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.As(err, &validationErrs),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, service.ErrRelationshipInvalid),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrForeignKey),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Messages of
// domain validation and state errors are written for clients and pass
// through; everything else gets a fixed text.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	var tagErrs validator.ValidationErrors
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType) && !isRefreshError(err):
		return "Invalid token"
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, errUnauthenticated):
		return "Authentication required"
	case isRefreshError(err):
		return "Invalid refresh token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrOpenPauseExists):
		return "Session already has an open pause"
	case errors.Is(err, store.ErrDuplicate):
		return "A resource with that name already exists"
	case errors.Is(err, service.ErrInUse):
		return "Resource is still referenced by study sessions"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrCategoryNotFound):
		return "Category not found"
	case errors.Is(err, store.ErrSubjectNotFound):
		return "Subject not found"
	case errors.Is(err, store.ErrTopicNotFound):
		return "Topic not found"
	case errors.Is(err, store.ErrSessionNotFound):
		return "Study session not found"
	case errors.Is(err, store.ErrPauseNotFound):
		return "Pause not found"
	case errors.Is(err, store.ErrGoalNotFound):
		return "Goal not found"
	case errors.Is(err, store.ErrNoteNotFound):
		return "Note not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &tagErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrInvalidTransition):
		return strings.TrimPrefix(err.Error(), domain.ErrInvalidTransition.Error()+": ")
	case errors.Is(err, service.ErrRelationshipInvalid):
		return "Category, subject and topic do not belong together"
	case errors.Is(err, store.ErrInvalidEntity), errors.Is(err, store.ErrForeignKey):
		return "Invalid entity data"
	case errors.Is(err, errBadRequest):
		return err.Error()
	}
	return "An unexpected error occurred"
}

func isRefreshError(err error) bool {
	return errors.Is(err, auth.ErrInvalidRefreshToken) || errors.Is(err, auth.ErrExpiredRefreshToken)
}

// HandleAPIError writes the mapped status and safe message for err. A
// non-empty defaultMsg replaces the message of a 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		msg = defaultMsg
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}

// SanitizeValidationError turns validator tag failures into a short message
// naming the first bad field.
func SanitizeValidationError(err error) string {
	var tagErrs validator.ValidationErrors
	if !errors.As(err, &tagErrs) || len(tagErrs) == 0 {
		return "Validation error"
	}
	fe := tagErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte", "gt":
		return "too small or too short"
	case "max", "lte", "lt":
		return "too large or too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

var (
	// errBadRequest marks request decoding and query parsing failures whose
	// message is safe to return.
	errBadRequest = errors.New("bad request")

	errUnauthenticated = errors.New("user ID not found in request context")
)

// badRequest wraps msg so it maps to 400 and is echoed to the client.
func badRequest(msg string) error {
	return &requestError{msg: msg}
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return errBadRequest }
