package main

import (
	"context"
	"net/http"
	"time"

	"workflow-event-router/internal/config"
	"workflow-event-router/internal/dispatch"
	"workflow-event-router/internal/logging"
	"workflow-event-router/internal/settlement"
	"workflow-event-router/internal/store"
	httptransport "workflow-event-router/internal/transport/http"

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

	st, err := store.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	execClient := settlement.NewClient(
		cfg.SettlementExecuteURL,
		cfg.ServiceAPIKey,
		time.Duration(cfg.SettlementTimeoutSecs)*time.Second,
	)

	// Registration order is dispatch order; the audit log reads better when
	// results arrive in a stable sequence.
	d := dispatch.New(
		dispatch.NewAttributionHandler(st),
		dispatch.NewSettlementHandler(st, execClient),
		dispatch.NewMeteringHandler(st),
		dispatch.NewCRMSyncHandler(st, cfg.CRMProvider),
		dispatch.NewLedgerHandler(st),
	)

	r := httptransport.NewRouter(st, cfg, d)

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
