// Package projection builds the consistent current-state view a viewer
// needs to join or rejoin a live auction: team standings, the unsold pool,
// and recent sales. All reads happen in one repeatable-read transaction so
// a snapshot never mixes halves of a settlement.
package projection

import (
	"context"
	"errors"
	"time"

	"auction-arena/internal/store"

	"github.com/jackc/pgx/v5"
)

const recentSalesLimit = 50

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

type Snapshot struct {
	Teams         []store.Team   `json:"teams"`
	UnsoldPlayers []store.Player `json:"unsold_players"`
	RecentSales   []Sale         `json:"recent_sales"`
}

// Sale is one non-reverted auction joined with the player and the team as
// they are now, not as they were at sale time.
type Sale struct {
	AuctionID string       `json:"auction_id"`
	Price     int64        `json:"price"`
	Timestamp time.Time    `json:"timestamp"`
	Player    store.Player `json:"player"`
	Team      store.Team   `json:"team"`
}

func (s *Service) Snapshot(ctx context.Context, projectID string) (*Snapshot, error) {
	tx, err := s.store.Pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var one int
	err = tx.QueryRow(ctx, `SELECT 1 FROM projects WHERE id = $1`, projectID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Teams:         []store.Team{},
		UnsoldPlayers: []store.Player{},
		RecentSales:   []Sale{},
	}

	rows, err := tx.Query(ctx, `
		SELECT id, project_id, name, initial_budget, remaining_budget, players_count, color
		FROM teams WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var t store.Team
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.InitialBudget, &t.RemainingBudget, &t.PlayersCount, &t.Color); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Teams = append(snap.Teams, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// higher-value players surface first; this ordering is a UI contract
	rows, err = tx.Query(ctx, `
		SELECT id, project_id, name, base_price, category, role, points, status, current_team_id, sold_price, sold_at
		FROM players
		WHERE project_id = $1 AND status = $2
		ORDER BY category DESC, points DESC`, projectID, store.PlayerStatusUnsold)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p store.Player
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Name, &p.BasePrice, &p.Category, &p.Role, &p.Points,
			&p.Status, &p.CurrentTeamID, &p.SoldPrice, &p.SoldAt); err != nil {
			rows.Close()
			return nil, err
		}
		snap.UnsoldPlayers = append(snap.UnsoldPlayers, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `
		SELECT a.id, a.price, a.created_at,
		       p.id, p.project_id, p.name, p.base_price, p.category, p.role, p.points, p.status, p.current_team_id, p.sold_price, p.sold_at,
		       t.id, t.project_id, t.name, t.initial_budget, t.remaining_budget, t.players_count, t.color
		FROM auctions a
		JOIN players p ON p.id = a.player_id
		JOIN teams t ON t.id = a.team_id
		WHERE a.project_id = $1 AND a.is_reverted = FALSE
		ORDER BY a.created_at DESC
		LIMIT $2`, projectID, recentSalesLimit)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var sale Sale
		if err := rows.Scan(&sale.AuctionID, &sale.Price, &sale.Timestamp,
			&sale.Player.ID, &sale.Player.ProjectID, &sale.Player.Name, &sale.Player.BasePrice,
			&sale.Player.Category, &sale.Player.Role, &sale.Player.Points, &sale.Player.Status,
			&sale.Player.CurrentTeamID, &sale.Player.SoldPrice, &sale.Player.SoldAt,
			&sale.Team.ID, &sale.Team.ProjectID, &sale.Team.Name, &sale.Team.InitialBudget,
			&sale.Team.RemainingBudget, &sale.Team.PlayersCount, &sale.Team.Color); err != nil {
			rows.Close()
			return nil, err
		}
		snap.RecentSales = append(snap.RecentSales, sale)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}
