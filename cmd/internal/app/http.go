package app

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/realtime"
	registrationapi "github.com/yatinannam/foundathon-landing-sub000/cmd/internal/registration/api"
)

func registerHTTP(
	mux *http.ServeMux,
	log Logger,
	cfg Config,
	store *backend,
	reg *prometheus.Registry,
	feed *realtime.Gateway,
	api *registrationapi.Handler,
) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.ReadinessRequireStore && !store.Durable() {
			http.Error(w, "durable store not configured", http.StatusServiceUnavailable)
			return
		}
		if err := store.Ping(r.Context(), 2*time.Second); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			log.Info("readyz.store.not_ready", "store", cfg.Store, "err", err)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if reg != nil {
		mux.Handle("/metrics", metricsHandler(reg))
	}

	if api != nil {
		api.Register(mux)
	}

	mux.Handle("/ws/availability", feed)
}
