package dataerr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("data validation")
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("data not found")
	// ErrConflict indicates a uniqueness or concurrency conflict.
	ErrConflict = errors.New("data conflict")
	// ErrRetryable indicates transient retryable failure.
	ErrRetryable = errors.New("data retryable")
)

// ValidationError tags an error as validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// NotFoundError tags an error as not-found.
func NotFoundError(msg string) error {
	return errors.Join(ErrNotFound, errors.New(strings.TrimSpace(msg)))
}

// ConflictError tags an error as conflict failure.
func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// RetryableError tags an error as retryable failure.
func RetryableError(msg string) error {
	return errors.Join(ErrRetryable, errors.New(strings.TrimSpace(msg)))
}

// MapError maps storage failures onto the sentinel taxonomy. Errors that
// already carry a sentinel pass through unchanged apart from the op prefix.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrRetryable):
		return wrap(op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return wrap(op, errors.Join(ErrNotFound, err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrap(op, errors.Join(ErrRetryable, err))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return wrap(op, errors.Join(ErrConflict, err)) // unique_violation
		case "23503", "23502", "23514":
			return wrap(op, errors.Join(ErrValidation, err)) // fk/not-null/check violation
		case "40001", "40P01", "55P03":
			return wrap(op, errors.Join(ErrRetryable, err)) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "already exists"):
		return wrap(op, errors.Join(ErrConflict, err))
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return wrap(op, errors.Join(ErrRetryable, err))
	default:
		return wrap(op, err)
	}
}

func wrap(op string, err error) error {
	op = strings.TrimSpace(op)
	if op == "" {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
