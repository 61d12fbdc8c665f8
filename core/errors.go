package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	MessagingErrorBadInput      = "MESSAGING_BAD_INPUT"
	MessagingErrorNotFound      = "MESSAGING_NOT_FOUND"
	MessagingErrorConflict      = "MESSAGING_CONFLICT"
	MessagingErrorGatewayFailed = "MESSAGING_GATEWAY_FAILED"
	MessagingErrorUnauthorized  = "MESSAGING_UNAUTHORIZED"
	MessagingErrorInternal      = "MESSAGING_INTERNAL_ERROR"
)

var (
	ErrClientNotFound        = errors.New("core: client not found")
	ErrLeadNotFound          = errors.New("core: lead not found")
	ErrCommunicationNotFound = errors.New("core: communication not found")
)

// IsNotFound reports whether err represents a referential miss: a lookup for
// a record that does not (yet) exist. Webhook handlers treat these as
// non-fatal and report them instead of failing the payload.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrLeadNotFound) ||
		errors.Is(err, ErrCommunicationNotFound) {
		return true
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Category == goerrors.CategoryNotFound
	}
	return false
}

// IsConflict reports whether err represents a uniqueness-constraint race.
// Callers recover from these with a re-read or a bounded retry, never by
// surfacing the conflict.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Category == goerrors.CategoryConflict
	}
	return false
}

// MapError normalizes any error into the envelope used at service
// boundaries: category, HTTP status, and a stable text code.
func MapError(err error) *goerrors.Error {
	return messagingErrorMapper(err)
}

func messagingErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureMessagingErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case IsNotFound(err):
		return newMessagingError(err.Error(), goerrors.CategoryNotFound, MessagingErrorNotFound)
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate key"):
		return newMessagingError(err.Error(), goerrors.CategoryConflict, MessagingErrorConflict)
	case strings.Contains(msg, "gateway"), strings.Contains(msg, "timeout"):
		return newMessagingError(err.Error(), goerrors.CategoryExternal, MessagingErrorGatewayFailed)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newMessagingError(err.Error(), goerrors.CategoryBadInput, MessagingErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureMessagingErrorEnvelope(mapped)
}

func newMessagingError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureMessagingErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureMessagingErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = messagingHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultMessagingTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultMessagingTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return MessagingErrorBadInput
	case goerrors.CategoryNotFound:
		return MessagingErrorNotFound
	case goerrors.CategoryConflict:
		return MessagingErrorConflict
	case goerrors.CategoryExternal:
		return MessagingErrorGatewayFailed
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return MessagingErrorUnauthorized
	default:
		return MessagingErrorInternal
	}
}

func messagingHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
