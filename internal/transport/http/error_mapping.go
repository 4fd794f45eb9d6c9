package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"auction-arena/internal/settlement"
	"auction-arena/internal/store"
)

// WriteSettlementError maps an engine error onto the wire. Budget failures
// carry the shortfall so the operator UI can show what was missing.
func WriteSettlementError(w http.ResponseWriter, err error) {
	var budgetErr *settlement.InsufficientBudgetError
	if errors.As(err, &budgetErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":     "insufficient_budget",
			"available": budgetErr.Available,
			"required":  budgetErr.Required,
		})
		return
	}
	status, code := settlementStatus(err)
	WriteHTTPError(w, status, code)
}

func settlementStatus(err error) (int, string) {
	switch {
	case errors.Is(err, settlement.ErrPlayerNotFound):
		return http.StatusNotFound, "player_not_found"
	case errors.Is(err, settlement.ErrTeamNotFound):
		return http.StatusNotFound, "team_not_found"
	case errors.Is(err, settlement.ErrAuctionNotFound):
		return http.StatusNotFound, "auction_not_found_or_reverted"
	case errors.Is(err, settlement.ErrAlreadySold):
		return http.StatusConflict, "player_already_sold"
	case errors.Is(err, settlement.ErrCrossProject):
		return http.StatusConflict, "cross_project_mismatch"
	case errors.Is(err, settlement.ErrInvalidPrice):
		return http.StatusBadRequest, "invalid_price"
	case errors.Is(err, settlement.ErrUnauthorized):
		return http.StatusForbidden, "not_authorized"
	case errors.Is(err, settlement.ErrContention):
		return http.StatusConflict, "lock_contention"
	case errors.Is(err, settlement.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
