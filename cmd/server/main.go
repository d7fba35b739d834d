package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/sidetoc/internal/api"
	"github.com/dgallion1/sidetoc/internal/config"
	"github.com/dgallion1/sidetoc/internal/scrollspy"
	"github.com/dgallion1/sidetoc/internal/site"
	"github.com/dgallion1/sidetoc/internal/widget"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("loading configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Article library.
	opts := site.PageOptions{
		Prerender:    cfg.Prerender,
		LiveReload:   cfg.Watch,
		StaticPrefix: "/static",
		Widget: widget.Config{
			ContentClass:     cfg.ContentClass,
			MinHeadings:      cfg.MinHeadings,
			MobileBreakpoint: cfg.MobileBreakpoint,
			Band:             scrollspy.Band{Top: cfg.FocusBandTop, Bottom: cfg.FocusBandBottom},
		},
	}
	lib := site.NewLibrary(cfg.ContentDir, site.NewMarkdown(cfg.HighlightStyle), opts, cfg.CacheTTL, log)
	lib.Start(ctx)

	// Live reload.
	var hub *api.Hub
	var watcher *api.Watcher
	if cfg.Watch {
		hub = api.NewHub(log)
		watcher, err = api.NewWatcher(lib, hub, log)
		if err != nil {
			log.Error("starting content watcher", "error", err)
			os.Exit(1)
		}
		watcher.Start()
	}

	srv := api.NewServer(lib, hub, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		if watcher != nil {
			if err := watcher.Stop(); err != nil {
				log.Warn("stopping watcher", "error", err)
			}
		}
		if hub != nil {
			hub.Close()
		}
		lib.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting sidetoc",
		"port", cfg.Port,
		"content_dir", cfg.ContentDir,
		"prerender", cfg.Prerender,
		"watch", cfg.Watch,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
