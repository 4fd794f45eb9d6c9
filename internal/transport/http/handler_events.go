package httptransport

import (
	"context"
	"net/http"
	"time"

	"auction-arena/internal/broadcast"
	"auction-arena/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

var ssePingInterval = 15 * time.Second

type projectChecker interface {
	GetProject(ctx context.Context, id string) (*store.Project, error)
}

// EventsSSEHandler streams a project's live feed. Reconnecting clients send
// Last-Event-ID and missed events are replayed from the hub buffer before
// the live channel takes over.
func EventsSSEHandler(hub *broadcast.Hub, projects projectChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "project_id")
		if projectID == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if _, err := projects.GetProject(r.Context(), projectID); err != nil {
			WriteHTTPError(w, http.StatusNotFound, "project_not_found")
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteHTTPError(w, http.StatusInternalServerError, "stream_not_supported")
			return
		}

		metricSSEConnectionsTotal.Add(1)
		metricSSEConnectionsActive.Add(1)
		defer metricSSEConnectionsActive.Add(-1)

		broadcast.SetSSEHeaders(w)
		log.Info().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("project_id", projectID).
			Msg("sse stream opened")

		for _, ev := range hub.ReplayAfter(projectID, r.Header.Get("Last-Event-ID")) {
			if err := broadcast.WriteSSE(w, ev); err != nil {
				return
			}
		}
		flusher.Flush()

		ch := hub.Subscribe(projectID)
		defer hub.Unsubscribe(projectID, ch)
		ticker := time.NewTicker(ssePingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				log.Info().
					Str("request_id", chimw.GetReqID(r.Context())).
					Str("project_id", projectID).
					Msg("sse stream closed")
				return
			case ev, open := <-ch:
				if !open {
					return
				}
				if err := broadcast.WriteSSE(w, ev); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				ping := broadcast.Event{
					Event:     "ping",
					ProjectID: projectID,
					ServerTS:  time.Now().UnixMilli(),
					Data:      map[string]any{"ts": time.Now().UnixMilli()},
				}
				if err := broadcast.WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
