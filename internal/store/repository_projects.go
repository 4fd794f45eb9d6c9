package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateProject(ctx context.Context, ownerID, name string, totalTeams int32) (*Project, error) {
	if totalTeams <= 0 {
		totalTeams = 10
	}
	id := NewID()
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO projects (id, owner_id, name, total_teams)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_id, name, total_teams, own_team_id, status, created_at, updated_at`,
		id, ownerID, name, totalTeams)
	return scanProject(row)
}

func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, owner_id, name, total_teams, own_team_id, status, created_at, updated_at
		FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (s *Store) ListProjectsByOwner(ctx context.Context, ownerID string) ([]Project, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, owner_id, name, total_teams, own_team_id, status, created_at, updated_at
		FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Project, 0, 8)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.TotalTeams, &p.OwnTeamID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProjectOwnedBy reports whether the project exists and belongs to ownerID.
func (s *Store) ProjectOwnedBy(ctx context.Context, projectID, ownerID string) (bool, error) {
	var one int
	err := s.Pool.QueryRow(ctx, `SELECT 1 FROM projects WHERE id = $1 AND owner_id = $2`, projectID, ownerID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type ProjectUpdate struct {
	Name       *string
	TotalTeams *int32
	OwnTeamID  *string
	Status     *string
}

func (s *Store) UpdateProject(ctx context.Context, id string, upd ProjectUpdate) (*Project, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE projects SET
			name        = COALESCE($2, name),
			total_teams = COALESCE($3, total_teams),
			own_team_id = COALESCE($4, own_team_id),
			status      = COALESCE($5, status),
			updated_at  = now()
		WHERE id = $1
		RETURNING id, owner_id, name, total_teams, own_team_id, status, created_at, updated_at`,
		id, upd.Name, upd.TotalTeams, upd.OwnTeamID, upd.Status)
	return scanProject(row)
}

// DeleteProjectCascade removes a project and everything under it. Delete
// order matters: auctions reference players and teams, players reference
// teams, and own_team_id must be cleared before teams go away.
func (s *Store) DeleteProjectCascade(ctx context.Context, id string) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE projects SET own_team_id = NULL WHERE id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM auctions WHERE project_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM players WHERE project_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE project_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.TotalTeams, &p.OwnTeamID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
