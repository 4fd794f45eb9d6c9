package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassifyLockTimeout(t *testing.T) {
	err := classify(&pgconn.PgError{Code: "55P03"})
	if !errors.Is(err, ErrContention) {
		t.Fatalf("lock timeout classified as %v", err)
	}
}

func TestClassifyDeadlock(t *testing.T) {
	err := classify(&pgconn.PgError{Code: "40P01"})
	if !errors.Is(err, ErrContention) {
		t.Fatalf("deadlock classified as %v", err)
	}
}

func TestClassifyDeadlineExceeded(t *testing.T) {
	err := classify(context.DeadlineExceeded)
	if !errors.Is(err, ErrContention) {
		t.Fatalf("deadline classified as %v", err)
	}
}

func TestClassifyInfrastructureFailure(t *testing.T) {
	cause := errors.New("connection refused")
	err := classify(cause)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("infra failure classified as %v", err)
	}
	if errors.Is(err, ErrContention) {
		t.Fatal("infra failure must not look retryable")
	}
}

func TestInsufficientBudgetErrorMessage(t *testing.T) {
	err := &InsufficientBudgetError{Available: 40, Required: 100}
	want := "insufficient_budget: available 40, required 100"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}
