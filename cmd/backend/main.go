package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/MegaGrindStone/insighta-web-ui/internal/agent"
	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
	"github.com/MegaGrindStone/insighta-web-ui/internal/server"
)

func main() {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatal(fmt.Errorf("error getting user config dir: %w", err))
	}

	var cfgFilePath string
	flag.StringVar(&cfgFilePath, "config", filepath.Join(cfgDir, "insighta", "backend.yaml"), "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(cfgFilePath, os.Getenv)
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if cfg.OpenAI.APIKey == "" {
		logger.Warn("No OpenAI API key configured, openai requests will fail")
	}
	if cfg.Groq.APIKey == "" {
		logger.Warn("No Groq API key configured, groq requests will fail")
	}
	if cfg.Tavily.APIKey == "" {
		logger.Warn("No Tavily API key configured, web search will report errors")
	}

	a := agent.New(map[models.Provider]agent.Completer{
		models.ProviderOpenAI: agent.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, logger),
		models.ProviderGroq:   agent.NewGroq(cfg.Groq.APIKey, cfg.Groq.BaseURL, logger),
	}, agent.NewTavily(cfg.Tavily.APIKey, cfg.Tavily.Endpoint), logger)

	srv, err := server.New(a, cfg.Port, logger)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
