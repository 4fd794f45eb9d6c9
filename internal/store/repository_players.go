package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreatePlayer(ctx context.Context, projectID, name string, basePrice int64, category, role *string, points *int32) (*Player, error) {
	id := NewID()
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO players (id, project_id, name, base_price, category, role, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, project_id, name, base_price, category, role, points, status, current_team_id, sold_price, sold_at`,
		id, projectID, name, basePrice, category, role, points)
	return scanPlayer(row)
}

// NewPlayer carries one row of a bulk roster import.
type NewPlayer struct {
	Name      string
	BasePrice int64
	Category  *string
	Role      *string
	Points    *int32
}

// InsertPlayers bulk-inserts roster rows in one transaction so a bad row
// rejects the whole file.
func (s *Store) InsertPlayers(ctx context.Context, projectID string, players []NewPlayer) (int, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, p := range players {
		if _, err := tx.Exec(ctx, `
			INSERT INTO players (id, project_id, name, base_price, category, role, points)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			NewID(), projectID, p.Name, p.BasePrice, p.Category, p.Role, p.Points); err != nil {
			return 0, err
		}
		inserted++
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*Player, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, project_id, name, base_price, category, role, points, status, current_team_id, sold_price, sold_at
		FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

func scanPlayer(row pgx.Row) (*Player, error) {
	var p Player
	err := row.Scan(&p.ID, &p.ProjectID, &p.Name, &p.BasePrice, &p.Category, &p.Role, &p.Points,
		&p.Status, &p.CurrentTeamID, &p.SoldPrice, &p.SoldAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
