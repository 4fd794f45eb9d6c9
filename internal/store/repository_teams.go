package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const defaultTeamColor = "#3B82F6"

func (s *Store) CreateTeam(ctx context.Context, projectID, name string, initialBudget int64, color string) (*Team, error) {
	if color == "" {
		color = defaultTeamColor
	}
	id := NewID()
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO teams (id, project_id, name, initial_budget, remaining_budget, color)
		VALUES ($1, $2, $3, $4, $4, $5)
		RETURNING id, project_id, name, initial_budget, remaining_budget, players_count, color`,
		id, projectID, name, initialBudget, color)
	return scanTeam(row)
}

func (s *Store) GetTeam(ctx context.Context, id string) (*Team, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, project_id, name, initial_budget, remaining_budget, players_count, color
		FROM teams WHERE id = $1`, id)
	return scanTeam(row)
}

func (s *Store) ListTeamsByProject(ctx context.Context, projectID string) ([]Team, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, project_id, name, initial_budget, remaining_budget, players_count, color
		FROM teams WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Team, 0, 10)
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.InitialBudget, &t.RemainingBudget, &t.PlayersCount, &t.Color); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTeam(row pgx.Row) (*Team, error) {
	var t Team
	err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &t.InitialBudget, &t.RemainingBudget, &t.PlayersCount, &t.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
