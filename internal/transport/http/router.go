package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"auction-arena/internal/auditlog"
	"auction-arena/internal/auth"
	"auction-arena/internal/broadcast"
	"auction-arena/internal/config"
	"auction-arena/internal/projection"
	"auction-arena/internal/settlement"
	"auction-arena/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(st *store.Store, cfg config.ServerConfig, hub *broadcast.Hub, audit *auditlog.Recorder) *chi.Mux {
	authSvc := auth.NewService(st, cfg.JWTSecret, time.Duration(cfg.AccessTokenTTLMin)*time.Minute)
	engine := settlement.New(st, hub, audit, authSvc, time.Duration(cfg.LockTimeoutMS)*time.Millisecond)
	snaps := projection.NewService(st)

	authHandlers := NewAuthHandlers(authSvc)
	adminHandlers := NewAdminHandlers(st, authSvc, audit, cfg.DefaultTeamBudget)
	auctionHandlers := NewAuctionHandlers(engine, snaps, st, authSvc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Post("/auth/register", authHandlers.Register())
		r.Post("/auth/login", authHandlers.Login())

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(authSvc))

			r.Post("/projects", adminHandlers.CreateProject())
			r.Get("/projects", adminHandlers.ListProjects())
			r.Patch("/projects/{project_id}", adminHandlers.UpdateProject())
			r.Delete("/projects/{project_id}", adminHandlers.DeleteProject())
			r.Get("/projects/{project_id}/teams", adminHandlers.ListTeams())
			r.Post("/projects/{project_id}/players/import", adminHandlers.ImportRoster())
			r.Post("/teams", adminHandlers.CreateTeam())

			r.Post("/auction/sell", auctionHandlers.Sell())
			r.Post("/auction/undo/{auction_id}", auctionHandlers.Undo())
			r.Get("/auction/snapshot/{project_id}", auctionHandlers.Snapshot())
			r.Get("/auction/events/{project_id}", EventsSSEHandler(hub, st))
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
