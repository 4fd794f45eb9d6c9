package store

import "time"

const (
	PlayerStatusUnsold = "unsold"
	PlayerStatusSold   = "sold"
)

const (
	ProjectStatusActive   = "active"
	ProjectStatusArchived = "archived"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Project struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	TotalTeams int32     `json:"total_teams"`
	OwnTeamID  *string   `json:"own_team_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Team struct {
	ID              string `json:"id"`
	ProjectID       string `json:"project_id"`
	Name            string `json:"name"`
	InitialBudget   int64  `json:"initial_budget"`
	RemainingBudget int64  `json:"remaining_budget"`
	PlayersCount    int32  `json:"players_count"`
	Color           string `json:"color"`
}

type Player struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"project_id"`
	Name          string     `json:"name"`
	BasePrice     int64      `json:"base_price"`
	Category      *string    `json:"category"`
	Role          *string    `json:"role"`
	Points        *int32     `json:"points"`
	Status        string     `json:"status"`
	CurrentTeamID *string    `json:"current_team_id"`
	SoldPrice     *int64     `json:"sold_price"`
	SoldAt        *time.Time `json:"sold_at"`
}

type Auction struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	PlayerID   string    `json:"player_id"`
	TeamID     string    `json:"team_id"`
	Price      int64     `json:"price"`
	IsReverted bool      `json:"is_reverted"`
	CreatedAt  time.Time `json:"timestamp"`
}

type AuditLog struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
