package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	insightawebui "github.com/MegaGrindStone/insighta-web-ui"
	"github.com/MegaGrindStone/insighta-web-ui/internal/handlers"
	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
	"github.com/MegaGrindStone/insighta-web-ui/internal/services"
)

func main() {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatal(fmt.Errorf("error getting user config dir: %w", err))
	}
	cfgPath := filepath.Join(cfgDir, "insighta")

	var cfgFilePath string
	flag.StringVar(&cfgFilePath, "config", filepath.Join(cfgPath, "config.yaml"), "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(cfgFilePath)
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	dbPath := cfg.StorePath
	if dbPath == "" {
		if err := os.MkdirAll(cfgPath, 0755); err != nil {
			log.Fatal(fmt.Errorf("error creating config directory: %w", err))
		}
		dbPath = filepath.Join(cfgPath, "store.db")
	}
	boltDB, err := services.NewBoltDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer boltDB.Close()

	if err := seedSettings(boltDB, cfg.Defaults); err != nil {
		log.Fatal(err)
	}

	backend := services.NewBackend(nil, logger)

	m, err := handlers.NewMain(services.NewConversation(), backend, boltDB, logger)
	if err != nil {
		log.Fatal(err)
	}

	// Serve static files
	staticFS, err := fs.Sub(insightawebui.StaticFS, "static")
	if err != nil {
		log.Fatal(err)
	}
	fileServer := http.FileServer(http.FS(staticFS))

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", fileServer))
	mux.HandleFunc("/", m.HandleHome)
	mux.HandleFunc("/chats", m.HandleChats)
	mux.HandleFunc("/settings", m.HandleSettings)
	mux.HandleFunc("/clear", m.HandleClear)
	mux.HandleFunc("/sse/messages", m.HandleSSE)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv.RegisterOnShutdown(func() {
		if err := m.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown sse server", slog.String("err", err.Error()))
		}
	})

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("Server starting", slog.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("Server error", slog.String("err", err.Error()))

	case sig := <-shutdown:
		logger.Info("Start shutdown", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", slog.String("err", err.Error()))
			if err := srv.Close(); err != nil {
				logger.Error("Forcing server close", slog.String("err", err.Error()))
			}
		}
	}
}

// seedSettings stores defaults unless the store already holds settings from an earlier run.
func seedSettings(store services.BoltDB, defaults models.ChatSettings) error {
	_, err := store.Settings(context.Background())
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNoSettings) {
		return err
	}
	return store.SaveSettings(context.Background(), defaults)
}
