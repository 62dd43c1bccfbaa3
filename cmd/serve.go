package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kdduha/audioflow/internal/config"
	"github.com/kdduha/audioflow/internal/handler"
	"github.com/kdduha/audioflow/internal/logger"
	"github.com/kdduha/audioflow/internal/metrics"
	"github.com/kdduha/audioflow/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	_ "github.com/kdduha/audioflow/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	cfg, log := a.cfg, a.logger

	pingers := map[string]handler.Pinger{}
	var (
		store session.Store
		opts  []session.Option
	)
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redisStore := session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Session.TTL)
		defer redisStore.Close()
		if err := redisStore.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis is not reachable yet")
		}
		pingers["redis"] = redisStore
		store = redisStore
		opts = append(opts, session.WithBroker(session.NewRedisBroker(redisStore.Client(), log)))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("set redis as session store")
	default:
		store = session.NewMemoryStore(cfg.Session.TTL)
	}

	manager := session.NewManager(store, a.pipeline, log, opts...)

	r := chi.NewRouter()
	r.Use([]func(http.Handler) http.Handler{
		middleware.RequestID,
		logger.Middleware(log),
		middleware.Recoverer,
		metrics.Middleware,
	}...)

	handler.Mount(r,
		handler.NewDiagramHandler(a.pipeline, cfg.Server.MaxUploadBytes),
		handler.NewSessionHandler(manager, cfg.Server.MaxUploadBytes, log),
		handler.NewHealthHandler(pingers),
		middleware.Throttle(cfg.Server.ThrottleLimit),
		middleware.Timeout(cfg.Server.Timeout),
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := manager.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("runs still in flight at shutdown")
	}
	log.Info().Msg("server stopped")
	return nil
}
