// Package settlement executes the atomic player-sale state transitions.
// Sell and Undo serialize on row-level locks taken in one global order
// (auction, then player, then team) so concurrent operations on the same
// rows cannot deadlock; operations on unrelated rows run in parallel.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-arena/internal/auditlog"
	"auction-arena/internal/auth"
	"auction-arena/internal/broadcast"
	"auction-arena/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// Authorizer decides whether a principal may act on a project. The check
// runs before any lock is taken, so unauthorized callers never contend.
type Authorizer interface {
	Authorize(ctx context.Context, principal auth.Principal, projectID string) (bool, error)
}

type Engine struct {
	store       *store.Store
	hub         *broadcast.Hub
	audit       *auditlog.Recorder
	authz       Authorizer
	lockTimeout time.Duration
}

func New(st *store.Store, hub *broadcast.Hub, audit *auditlog.Recorder, authz Authorizer, lockTimeout time.Duration) *Engine {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &Engine{store: st, hub: hub, audit: audit, authz: authz, lockTimeout: lockTimeout}
}

// Sell transfers player to team at price. Preconditions are validated under
// the row locks, inside the same transaction that applies the mutation, so
// there is no check-then-act window. The player_sold event is published
// only after the transaction durably commits.
func (e *Engine) Sell(ctx context.Context, playerID, teamID string, price int64) (*SellResult, error) {
	if price < 0 {
		return nil, ErrInvalidPrice
	}

	tx, err := e.store.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, classify(err)
	}
	defer tx.Rollback(ctx)
	if err := e.applyLockTimeout(ctx, tx); err != nil {
		return nil, classify(err)
	}

	var p store.Player
	err = tx.QueryRow(ctx, `
		SELECT id, project_id, name, base_price, category, role, points, status, current_team_id, sold_price, sold_at
		FROM players WHERE id = $1 FOR UPDATE`, playerID).
		Scan(&p.ID, &p.ProjectID, &p.Name, &p.BasePrice, &p.Category, &p.Role, &p.Points,
			&p.Status, &p.CurrentTeamID, &p.SoldPrice, &p.SoldAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	if p.Status == store.PlayerStatusSold {
		return nil, ErrAlreadySold
	}

	var t store.Team
	err = tx.QueryRow(ctx, `
		SELECT id, project_id, name, initial_budget, remaining_budget, players_count, color
		FROM teams WHERE id = $1 FOR UPDATE`, teamID).
		Scan(&t.ID, &t.ProjectID, &t.Name, &t.InitialBudget, &t.RemainingBudget, &t.PlayersCount, &t.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	if t.ProjectID != p.ProjectID {
		return nil, ErrCrossProject
	}
	if price > t.RemainingBudget {
		return nil, &InsufficientBudgetError{Available: t.RemainingBudget, Required: price}
	}

	auctionID := store.NewID()
	soldAt := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		INSERT INTO auctions (id, project_id, player_id, team_id, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		auctionID, p.ProjectID, p.ID, t.ID, price, soldAt); err != nil {
		return nil, classify(err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE players SET status = $1, current_team_id = $2, sold_price = $3, sold_at = $4
		WHERE id = $5`,
		store.PlayerStatusSold, t.ID, price, soldAt, p.ID); err != nil {
		return nil, classify(err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE teams SET remaining_budget = remaining_budget - $1, players_count = players_count + 1
		WHERE id = $2`, price, t.ID); err != nil {
		return nil, classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, classify(err)
	}

	p.Status = store.PlayerStatusSold
	p.CurrentTeamID = &t.ID
	p.SoldPrice = &price
	p.SoldAt = &soldAt
	t.RemainingBudget -= price
	t.PlayersCount++

	e.audit.Record(ctx, p.ProjectID, "", auditlog.ActionPlayerSold,
		fmt.Sprintf("player=%s team=%s price=%d auction=%s", p.ID, t.ID, price, auctionID))
	e.hub.Publish(p.ProjectID, EventPlayerSold, PlayerSoldData{
		Player: SoldPlayer{
			ID:        p.ID,
			Name:      p.Name,
			SoldPrice: price,
			Category:  p.Category,
			Role:      p.Role,
			Points:    p.Points,
			TeamID:    t.ID,
			TeamName:  t.Name,
		},
		Team: SoldTeam{
			ID:              t.ID,
			RemainingBudget: t.RemainingBudget,
			PlayersCount:    t.PlayersCount,
		},
		AuctionID: auctionID,
	})
	log.Info().Str("project_id", p.ProjectID).Str("player_id", p.ID).Str("team_id", t.ID).
		Int64("price", price).Str("auction_id", auctionID).Msg("player sold")

	return &SellResult{AuctionID: auctionID, Player: p, Team: t}, nil
}

// Undo reverts a committed sale. Authorization completes before any lock is
// taken; the is_reverted flag is re-checked under the auction row lock, so
// exactly one of two concurrent undos succeeds.
func (e *Engine) Undo(ctx context.Context, auctionID string, principal auth.Principal) (*UndoResult, error) {
	a, err := e.store.GetAuction(ctx, auctionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAuctionNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	if a.IsReverted {
		return nil, ErrAuctionNotFound
	}

	ok, err := e.authz.Authorize(ctx, principal, a.ProjectID)
	if err != nil {
		return nil, classify(err)
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	tx, err := e.store.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, classify(err)
	}
	defer tx.Rollback(ctx)
	if err := e.applyLockTimeout(ctx, tx); err != nil {
		return nil, classify(err)
	}

	var isReverted bool
	err = tx.QueryRow(ctx, `SELECT is_reverted FROM auctions WHERE id = $1 FOR UPDATE`, auctionID).Scan(&isReverted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAuctionNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	if isReverted {
		return nil, ErrAuctionNotFound
	}

	var p store.Player
	err = tx.QueryRow(ctx, `
		SELECT id, project_id, name, base_price, category, role, points, status, current_team_id, sold_price, sold_at
		FROM players WHERE id = $1 FOR UPDATE`, a.PlayerID).
		Scan(&p.ID, &p.ProjectID, &p.Name, &p.BasePrice, &p.Category, &p.Role, &p.Points,
			&p.Status, &p.CurrentTeamID, &p.SoldPrice, &p.SoldAt)
	if err != nil {
		return nil, classify(err)
	}
	var t store.Team
	err = tx.QueryRow(ctx, `
		SELECT id, project_id, name, initial_budget, remaining_budget, players_count, color
		FROM teams WHERE id = $1 FOR UPDATE`, a.TeamID).
		Scan(&t.ID, &t.ProjectID, &t.Name, &t.InitialBudget, &t.RemainingBudget, &t.PlayersCount, &t.Color)
	if err != nil {
		return nil, classify(err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE teams SET remaining_budget = remaining_budget + $1, players_count = players_count - 1
		WHERE id = $2`, a.Price, t.ID); err != nil {
		return nil, classify(err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE players SET status = $1, current_team_id = NULL, sold_price = NULL, sold_at = NULL
		WHERE id = $2`, store.PlayerStatusUnsold, p.ID); err != nil {
		return nil, classify(err)
	}
	if _, err := tx.Exec(ctx, `UPDATE auctions SET is_reverted = TRUE WHERE id = $1`, auctionID); err != nil {
		return nil, classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, classify(err)
	}

	p.Status = store.PlayerStatusUnsold
	p.CurrentTeamID = nil
	p.SoldPrice = nil
	p.SoldAt = nil
	t.RemainingBudget += a.Price
	t.PlayersCount--

	e.audit.Record(ctx, a.ProjectID, principal.UserID, auditlog.ActionAuctionUndone,
		fmt.Sprintf("auction=%s player=%s team=%s price=%d", auctionID, p.ID, t.ID, a.Price))
	e.hub.Publish(a.ProjectID, EventAuctionUndone, AuctionUndoneData{AuctionID: auctionID})
	log.Info().Str("project_id", a.ProjectID).Str("auction_id", auctionID).Msg("auction undone")

	return &UndoResult{AuctionID: auctionID, Player: p, Team: t}, nil
}

// applyLockTimeout bounds how long row-lock acquisition may wait inside
// this transaction. SET LOCAL does not accept bind parameters.
func (e *Engine) applyLockTimeout(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", e.lockTimeout.Milliseconds()))
	return err
}
