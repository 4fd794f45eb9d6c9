package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (s *Store) GetAuction(ctx context.Context, id string) (*Auction, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, project_id, player_id, team_id, price, is_reverted, created_at
		FROM auctions WHERE id = $1`, id)
	var a Auction
	err := row.Scan(&a.ID, &a.ProjectID, &a.PlayerID, &a.TeamID, &a.Price, &a.IsReverted, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) InsertAuditLog(ctx context.Context, projectID, userID, action, details string) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO audit_logs (id, project_id, user_id, action, details)
		VALUES ($1, $2, $3, $4, $5)`,
		NewID(), projectID, userID, action, details)
	return err
}
