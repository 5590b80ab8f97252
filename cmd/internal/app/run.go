package app

import (
	"context"
	"os/signal"
	"syscall"
)

// Serve loads the app from cfg and runs it until SIGINT/SIGTERM.
// It returns an error instead of calling os.Exit to keep defers effective and lint clean.
func Serve(cfg Config) error {
	log := NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := New(ctx, cfg, log)
	if err != nil {
		log.Error("server.init.fail", "err", err)
		return err
	}
	return a.Run(ctx)
}
