package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"auction-arena/internal/auth"
	"auction-arena/internal/projection"
	"auction-arena/internal/settlement"
	"auction-arena/internal/store"

	"github.com/go-chi/chi/v5"
)

type settlementEngine interface {
	Sell(ctx context.Context, playerID, teamID string, price int64) (*settlement.SellResult, error)
	Undo(ctx context.Context, auctionID string, principal auth.Principal) (*settlement.UndoResult, error)
}

type snapshotter interface {
	Snapshot(ctx context.Context, projectID string) (*projection.Snapshot, error)
}

type playerResolver interface {
	GetPlayer(ctx context.Context, id string) (*store.Player, error)
}

type projectAuthorizer interface {
	Authorize(ctx context.Context, principal auth.Principal, projectID string) (bool, error)
}

type AuctionHandlers struct {
	engine  settlementEngine
	snaps   snapshotter
	players playerResolver
	authz   projectAuthorizer
}

func NewAuctionHandlers(engine settlementEngine, snaps snapshotter, players playerResolver, authz projectAuthorizer) *AuctionHandlers {
	return &AuctionHandlers{engine: engine, snaps: snaps, players: players, authz: authz}
}

func (h *AuctionHandlers) Sell() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		var req struct {
			PlayerID string `json:"player_id"`
			TeamID   string `json:"team_id"`
			Price    int64  `json:"price"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.PlayerID == "" || req.TeamID == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		metricSellTotal.Add(1)

		// Only the project owner runs the podium. The player row names the
		// project; a team from elsewhere is caught by the engine afterwards.
		player, err := h.players.GetPlayer(r.Context(), req.PlayerID)
		if err != nil {
			metricSellErrors.Add(1)
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "player_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		owned, err := h.authz.Authorize(r.Context(), principal, player.ProjectID)
		if err != nil {
			metricSellErrors.Add(1)
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		if !owned {
			metricSellErrors.Add(1)
			WriteHTTPError(w, http.StatusForbidden, "not_authorized")
			return
		}

		res, err := h.engine.Sell(r.Context(), req.PlayerID, req.TeamID, req.Price)
		if err != nil {
			metricSellErrors.Add(1)
			WriteSettlementError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

func (h *AuctionHandlers) Undo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		auctionID := chi.URLParam(r, "auction_id")
		if auctionID == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		metricUndoTotal.Add(1)

		res, err := h.engine.Undo(r.Context(), auctionID, principal)
		if err != nil {
			metricUndoErrors.Add(1)
			WriteSettlementError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

func (h *AuctionHandlers) Snapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "project_id")
		metricSnapshotTotal.Add(1)

		snap, err := h.snaps.Snapshot(r.Context(), projectID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "project_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}
}
