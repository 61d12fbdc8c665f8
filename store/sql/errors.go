package sqlstore

import (
	"errors"
	"strings"

	"github.com/goliatone/go-crm-messaging/core"
	goerrors "github.com/goliatone/go-errors"
	"github.com/lib/pq"
)

const pqUniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolationCode
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}

func conflictError(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryConflict, "sqlstore: "+message).
		WithTextCode(core.MessagingErrorConflict)
}
