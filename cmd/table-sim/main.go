package main

import (
	"expvar"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/rs/zerolog/log"

	"tablelink/internal/config"
	"tablelink/internal/logging"
	"tablelink/internal/sim"
)

var wsConnectionsTotal = expvar.NewInt("ws_connections_total")

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadSim()
	if err != nil {
		log.Fatal().Err(err).Msg("load sim config failed")
	}

	srv := sim.NewServer(cfg.SmallBlind, cfg.BigBlind, cfg.ActionTimeout, log.Logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(requestLogger()).Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.With(requestLogger()).Get("/debug/vars", expvar.Handler().ServeHTTP)
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		wsConnectionsTotal.Add(1)
		srv.HandleWS(w, req)
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("table simulator listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func requestLogger() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}
