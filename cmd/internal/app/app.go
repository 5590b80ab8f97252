// Package app wires the Foundathon registration server: config, logging,
// stores, HTTP routes and the realtime availability feed.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/auth/holder"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/catalog"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/notify"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/realtime"
	registrationapi "github.com/yatinannam/foundathon-landing-sub000/cmd/internal/registration/api"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/reservation"
)

// App is the server runtime: it owns the store, the HTTP handlers and the feed.
type App struct {
	cfg Config
	log Logger

	backend *backend
	svc     *reservation.Service
	reg     *prometheus.Registry

	feed *realtime.Gateway
	api  *registrationapi.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	secret, err := LoadLockSecret(cfg, log)
	if err != nil {
		return nil, err
	}
	lockCodec, err := newLockCodec(secret, cfg)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	holderCfg, err := holder.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	holders, err := holder.New(holderCfg)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var codec reservation.TokenCodec
	if lockCodec != nil {
		codec = lockCodec
	}
	svc, err := reservation.NewService(codec, be.store, cat,
		reservation.WithCapacity(cfg.Capacity),
		reservation.WithLockTTL(cfg.LockTTL),
		reservation.WithLogger(log),
	)
	if err != nil {
		_ = be.Close()
		return nil, err
	}

	a := &App{cfg: cfg, log: log, backend: be, svc: svc}

	pub := realtime.NewPublisher(realtime.NewHub(log), svc, log)
	a.feed = realtime.NewGateway(log, pub)

	opts := []registrationapi.HandlerOption{
		registrationapi.WithSender(notify.LogSender{Log: log}),
		registrationapi.WithFeed(pub),
		registrationapi.WithAuditPool(be.pool),
	}
	if cfg.MetricsEnabled {
		a.reg = newRegistry()
		a.reg.MustRegister(newAvailabilityCollector(svc, log))
		m, err := registrationapi.NewMetrics(a.reg)
		if err != nil {
			_ = be.Close()
			return nil, err
		}
		opts = append(opts, registrationapi.WithMetrics(m))
	}

	a.api, err = registrationapi.NewHandler(log, svc, holders, registrationapi.LoadConfigFromEnv(), opts...)
	if err != nil {
		_ = be.Close()
		return nil, err
	}
	return a, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.backend, a.reg, a.feed, a.api)
	return WithRequestLogging(WithSecurityHeaders(WithCORS(mux, a.cfg, a.log)), a.log)
}

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	base := runtimeBaseURL(a.cfg.HTTPAddr)
	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"url", base,
		"feed", wsBaseURL(base)+"/ws/availability",
		"store", a.cfg.Store,
		"capacity", a.svc.Capacity(),
		"problem_statements", a.svc.Catalog().Len(),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		_ = a.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.Close(); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

// Close releases store connections.
func (a *App) Close() error {
	return a.backend.Close()
}

func loadCatalog(cfg Config) (*catalog.Catalog, error) {
	if cfg.CatalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.CatalogFile)
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
