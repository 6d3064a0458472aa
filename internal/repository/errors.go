package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrRecordNotFound is returned when a lookup by key matches nothing.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrDatabase wraps every other store failure.
	ErrDatabase = errors.New("database error")
)

var dbErrorRules = map[error]error{
	gorm.ErrRecordNotFound: ErrRecordNotFound,
	gorm.ErrDuplicatedKey:  ErrDuplicateKey,
}

// WrapDBError maps gorm errors onto the repository sentinels. Unmatched errors are
// wrapped in ErrDatabase with the original text kept for logs.
func WrapDBError(err error) error {
	if err == nil {
		return nil
	}
	for source, target := range dbErrorRules {
		if errors.Is(err, source) {
			return target
		}
	}
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return fmt.Errorf("%w: %v", ErrDatabase, err)
}

// isUniqueViolation recognises unique violations from drivers whose errors were not
// translated (older sqlite builds, wrapped driver errors).
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}
