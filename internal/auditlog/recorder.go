// Package auditlog keeps a write-only action trail. Entries land in the
// audit_logs table and, when push is configured, are mirrored to a message
// queue for downstream compliance tooling. Recording is best-effort: a
// failure is logged and never propagated into the request path.
package auditlog

import (
	"context"

	"auction-arena/internal/store"

	"github.com/rs/zerolog/log"
)

const (
	ActionPlayerSold     = "player_sold"
	ActionAuctionUndone  = "auction_undone"
	ActionProjectCreated = "project_created"
	ActionProjectDeleted = "project_deleted"
	ActionTeamCreated    = "team_created"
	ActionRosterImported = "roster_imported"
)

type Recorder struct {
	store *store.Store
	push  *Publisher
}

// NewRecorder returns a recorder writing to st. push may be nil.
func NewRecorder(st *store.Store, push *Publisher) *Recorder {
	return &Recorder{store: st, push: push}
}

func (r *Recorder) Record(ctx context.Context, projectID, userID, action, details string) {
	if err := r.store.InsertAuditLog(ctx, projectID, userID, action, details); err != nil {
		log.Warn().Err(err).Str("action", action).Str("project_id", projectID).Msg("audit insert failed")
	}
	if r.push == nil {
		return
	}
	entry := Entry{
		ProjectID: projectID,
		UserID:    userID,
		Action:    action,
		Details:   details,
	}
	if err := r.push.Publish(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("audit push failed")
	}
}
