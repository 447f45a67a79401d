package dataerr

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestMapErrorNil(t *testing.T) {
	if got := MapError("op", nil); got != nil {
		t.Fatalf("MapError(nil): want=nil got=%v", got)
	}
}

func TestMapErrorSentinelPassthrough(t *testing.T) {
	err := MapError("wellness.Create", ConflictError("analysis exists"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("MapError sentinel: want ErrConflict got=%v", err)
	}
	if errors.Is(err, ErrRetryable) {
		t.Fatalf("MapError sentinel: unexpected ErrRetryable in %v", err)
	}
}

func TestMapErrorRecordNotFound(t *testing.T) {
	err := MapError("user.GetByID", gorm.ErrRecordNotFound)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("MapError gorm not found: want ErrNotFound got=%v", err)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("MapError gorm not found: original cause lost from %v", err)
	}
}

func TestMapErrorContext(t *testing.T) {
	for _, cause := range []error{context.Canceled, context.DeadlineExceeded} {
		if err := MapError("op", cause); !errors.Is(err, ErrRetryable) {
			t.Fatalf("MapError(%v): want ErrRetryable got=%v", cause, err)
		}
	}
}

func TestMapErrorPostgresCodes(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"23505", ErrConflict},
		{"23503", ErrValidation},
		{"23502", ErrValidation},
		{"40001", ErrRetryable},
		{"40P01", ErrRetryable},
		{"55P03", ErrRetryable},
	}
	for _, tc := range cases {
		err := MapError("op", &pgconn.PgError{Code: tc.code})
		if !errors.Is(err, tc.want) {
			t.Fatalf("MapError(code=%s): want=%v got=%v", tc.code, tc.want, err)
		}
	}
}

func TestMapErrorMessageSniffing(t *testing.T) {
	err := MapError("op", errors.New("ERROR: duplicate key value violates unique constraint"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("MapError duplicate-key text: want ErrConflict got=%v", err)
	}
	err = MapError("op", errors.New("connection timeout while dialing"))
	if !errors.Is(err, ErrRetryable) {
		t.Fatalf("MapError timeout text: want ErrRetryable got=%v", err)
	}
}

func TestMapErrorUnknownKeepsCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := MapError("op", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("MapError unknown: original cause lost from %v", err)
	}
	for _, sentinel := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrRetryable} {
		if errors.Is(err, sentinel) {
			t.Fatalf("MapError unknown: unexpected sentinel %v in %v", sentinel, err)
		}
	}
}
