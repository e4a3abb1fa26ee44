package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"hero-service/internal/config"
	dbpkg "hero-service/internal/db"
	"hero-service/internal/logging"
	httpx "hero-service/internal/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("%v", err)
	}
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		config.Exitf("invalid logging config: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := dbpkg.Open(ctx, cfg, log)
	if err != nil {
		config.Exitf("open store %s: %v", cfg.DisplayURL(), err)
	}
	defer engine.Close()

	if err := engine.EnsureSchema(ctx); err != nil {
		engine.Close()
		config.Exitf("initialize schema: %v", err)
	}
	log.Info("store ready", "driver", cfg.Driver, "url", cfg.DisplayURL())

	srv := httpx.NewServer(engine, httpx.Options{
		Logger:     log,
		StoreURL:   cfg.DisplayURL(),
		CORSOrigin: cfg.CORSOrigin,
	})
	hs := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.R,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", hs.Addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}
