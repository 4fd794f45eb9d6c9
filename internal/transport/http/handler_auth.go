package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"auction-arena/internal/auth"
)

type AuthHandlers struct {
	authSvc *auth.Service
}

func NewAuthHandlers(authSvc *auth.Service) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc}
}

func (h *AuthHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			FullName string `json:"full_name"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_email")
			return
		}
		if len(req.Password) < 8 {
			WriteHTTPError(w, http.StatusBadRequest, "password_too_short")
			return
		}
		user, err := h.authSvc.Register(r.Context(), req.Email, req.Password, req.FullName)
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				WriteHTTPError(w, http.StatusConflict, "email_taken")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(user)
	}
}

func (h *AuthHandlers) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		token, exp, err := h.authSvc.Login(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				WriteHTTPError(w, http.StatusUnauthorized, "invalid_credentials")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": token,
			"token_type":   "bearer",
			"expires_at":   exp.Format(time.RFC3339),
		})
	}
}
