package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrPlayerNotFound   = errors.New("player_not_found")
	ErrTeamNotFound     = errors.New("team_not_found")
	ErrAlreadySold      = errors.New("player_already_sold")
	ErrAuctionNotFound  = errors.New("auction_not_found_or_reverted")
	ErrCrossProject     = errors.New("cross_project_mismatch")
	ErrInvalidPrice     = errors.New("invalid_price")
	ErrUnauthorized     = errors.New("not_authorized")
	ErrContention       = errors.New("lock_contention")
	ErrStoreUnavailable = errors.New("store_unavailable")
)

// InsufficientBudgetError reports how far short the team's remaining budget
// falls, for display to the operator.
type InsufficientBudgetError struct {
	Available int64
	Required  int64
}

func (e *InsufficientBudgetError) Error() string {
	return fmt.Sprintf("insufficient_budget: available %d, required %d", e.Available, e.Required)
}

// Postgres SQLSTATEs that mean the operation lost a lock race rather than
// hit a real infrastructure fault. Both abort the transaction cleanly, so
// the caller may simply retry.
const (
	sqlstateLockNotAvailable = "55P03"
	sqlstateDeadlockDetected = "40P01"
)

// classify maps a driver error to the engine's taxonomy. Lock timeouts and
// deadlocks become ErrContention; anything else from the store becomes
// ErrStoreUnavailable with the cause preserved.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateLockNotAvailable, sqlstateDeadlockDetected:
			return ErrContention
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrContention
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
