package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"riskserve/internal/api"
	"riskserve/internal/cfg"
	"riskserve/internal/metrics"
	"riskserve/internal/model"
	"riskserve/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	setupLogging(c.LogLevel)

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	loader := model.NewLoader(c.ModelPath)
	if info, err := os.Stat(c.ModelPath); err == nil {
		mw.ModelAgeSet(time.Since(info.ModTime()).Seconds())
	} else {
		log.Warn().Str("path", c.ModelPath).Msg("model parameter file not present at startup")
	}

	handler := api.NewHandler(loader, mw)

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
		handler.SetRecorder(store)
	}

	server := api.NewServer(handler, loader, api.ServerConfig{
		Port:         c.Port,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	})
	server.SetStreamMetrics(mw)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	waitForShutdown(server, c.ShutdownTimeout)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// initializeStorage opens the prediction log when DATA_PATH is configured.
// Without it the service keeps no state on disk.
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		return nil
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("storage initialization failed, continuing without prediction log")
		return nil
	}
	log.Info().Str("path", c.DataPath).Msg("prediction log enabled")
	return store
}

func waitForShutdown(server *api.Server, timeout time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutdown signal received, draining requests")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}
