package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/siddeshwardm/chat-application/config"
	"github.com/siddeshwardm/chat-application/internal/db"
	"github.com/siddeshwardm/chat-application/internal/handlers"
	"github.com/siddeshwardm/chat-application/internal/middlewares"
	"github.com/siddeshwardm/chat-application/internal/presence"
	"github.com/siddeshwardm/chat-application/internal/realtime"
	"github.com/siddeshwardm/chat-application/internal/repository"
	"github.com/siddeshwardm/chat-application/internal/services"
	"github.com/siddeshwardm/chat-application/pkg/log"

	muxHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// spaHandler serves the built frontend, answering unknown paths with index.html.
type spaHandler struct {
	dir string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.dir, filepath.Clean("/"+r.URL.Path))
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
		return
	}
	http.FileServer(http.Dir(h.dir)).ServeHTTP(w, r)
}

func main() {
	// Load config and init systems
	cfg := config.LoadConfig()
	log.InitLogger(cfg.LogDir)
	if cfg.JWTSecret == "" {
		log.Logger.Warn().Msg("JWT_SECRET is not set: login is disabled and sockets rely on fallback identity")
	}

	// DB init
	conn := db.InitDB(cfg)

	// Core repos/services/hub
	users := repository.NewUserRepo(conn)
	messages := repository.NewMessageRepo(conn)
	hub := realtime.NewHub(presence.NewRegistry())

	// Router & CORS
	r := mux.NewRouter()
	r.Use(middlewares.RequestLogger, middlewares.PrometheusMetricsMiddleware)
	cors := muxHandlers.CORS(
		muxHandlers.AllowedOrigins(cfg.CORSOrigins),
		muxHandlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		}),
		muxHandlers.AllowedHeaders([]string{
			"Content-Type", "Authorization", realtime.AuthUserHeader,
		}),
		muxHandlers.AllowCredentials(),
	)

	// Health & metrics
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())

	// ==== REALTIME ====
	r.Handle("/ws", realtime.Handler(hub, realtime.HandlerOptions{
		Secret:         cfg.JWTSecret,
		AllowedOrigins: cfg.CORSOrigins,
		SendBuffer:     cfg.WSSendBuffer,
		PingPeriod:     cfg.WSPingPeriod,
	})).Methods("GET")

	// ==== REST ====
	handlers.RegisterRoutes(r, handlers.API{
		Config:   cfg,
		Users:    users,
		Auth:     services.NewAuthService(users, cfg.JWTSecret, cfg.JWTExpiresIn),
		Messages: services.NewMessageService(messages, users, hub),
	})

	// ==== FRONTEND ====
	if cfg.IsProduction() {
		r.PathPrefix("/").Handler(spaHandler{dir: cfg.FrontendDist})
		log.Logger.Info().Str("dir", cfg.FrontendDist).Msg("serving frontend")
	}

	// ==== START SERVER ====
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           cors(r),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Logger.Info().Msgf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	hub.Stop()

	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
