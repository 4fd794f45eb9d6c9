package settlement

import "auction-arena/internal/store"

const (
	EventPlayerSold    = "player_sold"
	EventAuctionUndone = "auction_undone"
)

// PlayerSoldData is the live-stream payload for a committed sale.
type PlayerSoldData struct {
	Player    SoldPlayer `json:"player"`
	Team      SoldTeam   `json:"team"`
	AuctionID string     `json:"auction_id"`
}

type SoldPlayer struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	SoldPrice int64   `json:"sold_price"`
	Category  *string `json:"category"`
	Role      *string `json:"role"`
	Points    *int32  `json:"points"`
	TeamID    string  `json:"team_id"`
	TeamName  string  `json:"team_name"`
}

type SoldTeam struct {
	ID              string `json:"id"`
	RemainingBudget int64  `json:"remaining_budget"`
	PlayersCount    int32  `json:"players_count"`
}

// AuctionUndoneData is the live-stream payload for a reverted sale.
type AuctionUndoneData struct {
	AuctionID string `json:"auction_id"`
}

// SellResult is returned to the caller after the transaction commits.
type SellResult struct {
	AuctionID string       `json:"auction_id"`
	Player    store.Player `json:"player"`
	Team      store.Team   `json:"team"`
}

// UndoResult mirrors SellResult for the reverse transition.
type UndoResult struct {
	AuctionID string       `json:"auction_id"`
	Player    store.Player `json:"player"`
	Team      store.Team   `json:"team"`
}
