package main

import (
	"context"
	"net/http"
	"time"

	"auction-arena/internal/auditlog"
	"auction-arena/internal/broadcast"
	"auction-arena/internal/config"
	"auction-arena/internal/logging"
	"auction-arena/internal/store"
	httptransport "auction-arena/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	hub := broadcast.NewHub(0)

	var push *auditlog.Publisher
	if cfg.AuditPushEnabled && cfg.AMQPURL != "" {
		push = auditlog.NewPublisher(cfg.AMQPURL)
		log.Info().Msg("audit push enabled")
	}
	audit := auditlog.NewRecorder(st, push)

	r := httptransport.NewRouter(st, cfg, hub, audit)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
