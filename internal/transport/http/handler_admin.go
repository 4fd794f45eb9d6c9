package httptransport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"auction-arena/internal/auditlog"
	"auction-arena/internal/auth"
	"auction-arena/internal/roster"
	"auction-arena/internal/store"

	"github.com/go-chi/chi/v5"
)

// 32 MiB cap on roster uploads, same order as a full-season spreadsheet.
const maxImportBytes = 32 << 20

type AdminHandlers struct {
	store         *store.Store
	authSvc       *auth.Service
	audit         *auditlog.Recorder
	defaultBudget int64
}

func NewAdminHandlers(st *store.Store, authSvc *auth.Service, audit *auditlog.Recorder, defaultBudget int64) *AdminHandlers {
	return &AdminHandlers{store: st, authSvc: authSvc, audit: audit, defaultBudget: defaultBudget}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "store_unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

// requireOwner resolves the caller and checks they own projectID. On failure
// the response has already been written and the returned ok is false.
func (h *AdminHandlers) requireOwner(w http.ResponseWriter, r *http.Request, projectID string) (auth.Principal, bool) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteHTTPError(w, http.StatusUnauthorized, "missing_token")
		return auth.Principal{}, false
	}
	owned, err := h.authSvc.Authorize(r.Context(), principal, projectID)
	if err != nil {
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
		return auth.Principal{}, false
	}
	if !owned {
		if _, err := h.store.GetProject(r.Context(), projectID); errors.Is(err, store.ErrNotFound) {
			WriteHTTPError(w, http.StatusNotFound, "project_not_found")
			return auth.Principal{}, false
		}
		WriteHTTPError(w, http.StatusForbidden, "not_authorized")
		return auth.Principal{}, false
	}
	return principal, true
}

func (h *AdminHandlers) CreateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		var req struct {
			Name       string `json:"name"`
			TotalTeams int32  `json:"total_teams"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		project, err := h.store.CreateProject(r.Context(), principal.UserID, req.Name, req.TotalTeams)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		h.audit.Record(r.Context(), project.ID, principal.UserID, auditlog.ActionProjectCreated, project.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(project)
	}
}

func (h *AdminHandlers) ListProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		projects, err := h.store.ListProjectsByOwner(r.Context(), principal.UserID)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(projects)
	}
}

func (h *AdminHandlers) UpdateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "project_id")
		if _, ok := h.requireOwner(w, r, projectID); !ok {
			return
		}
		var req struct {
			Name       *string `json:"name"`
			TotalTeams *int32  `json:"total_teams"`
			OwnTeamID  *string `json:"own_team_id"`
			Status     *string `json:"status"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Status != nil && *req.Status != store.ProjectStatusActive && *req.Status != store.ProjectStatusArchived {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_status")
			return
		}
		project, err := h.store.UpdateProject(r.Context(), projectID, store.ProjectUpdate{
			Name:       req.Name,
			TotalTeams: req.TotalTeams,
			OwnTeamID:  req.OwnTeamID,
			Status:     req.Status,
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "project_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(project)
	}
}

func (h *AdminHandlers) DeleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "project_id")
		principal, ok := h.requireOwner(w, r, projectID)
		if !ok {
			return
		}
		if err := h.store.DeleteProjectCascade(r.Context(), projectID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "project_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		h.audit.Record(r.Context(), projectID, principal.UserID, auditlog.ActionProjectDeleted, "")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) CreateTeam() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProjectID string `json:"project_id"`
			Name      string `json:"name"`
			Budget    int64  `json:"budget"`
			Color     string `json:"color"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.ProjectID == "" || req.Name == "" || req.Budget < 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		principal, ok := h.requireOwner(w, r, req.ProjectID)
		if !ok {
			return
		}
		if req.Budget == 0 {
			req.Budget = h.defaultBudget
		}
		team, err := h.store.CreateTeam(r.Context(), req.ProjectID, req.Name, req.Budget, req.Color)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		h.audit.Record(r.Context(), req.ProjectID, principal.UserID, auditlog.ActionTeamCreated, team.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(team)
	}
}

func (h *AdminHandlers) ListTeams() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "project_id")
		if _, err := h.store.GetProject(r.Context(), projectID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "project_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		teams, err := h.store.ListTeamsByProject(r.Context(), projectID)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(teams)
	}
}

// ImportRoster loads a CSV roster into the project. The file arrives either
// as a multipart "file" part or as the raw request body.
func (h *AdminHandlers) ImportRoster() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "project_id")
		principal, ok := h.requireOwner(w, r, projectID)
		if !ok {
			return
		}

		var src io.Reader = http.MaxBytesReader(w, r.Body, maxImportBytes)
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(maxImportBytes); err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			file, _, err := r.FormFile("file")
			if err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "missing_file")
				return
			}
			defer file.Close()
			src = file
		}

		n, err := roster.Import(r.Context(), h.store, projectID, src)
		if err != nil {
			if errors.Is(err, roster.ErrMissingNameColumn) {
				WriteHTTPError(w, http.StatusBadRequest, "missing_name_column")
				return
			}
			WriteHTTPError(w, http.StatusBadRequest, "invalid_roster")
			return
		}
		h.audit.Record(r.Context(), projectID, principal.UserID, auditlog.ActionRosterImported, fmt.Sprintf("%d players", n))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"imported": n})
	}
}
