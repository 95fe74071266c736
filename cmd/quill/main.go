// Quill is a writing-assistant agent: an HTTP service that plans and runs
// tool chains (project and document management, web research, AI-assisted
// writing) on behalf of its users.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quillworks/quill/internal/config"
	"github.com/quillworks/quill/internal/logger"
	"github.com/quillworks/quill/internal/orchestrator"
	"github.com/quillworks/quill/internal/provider"
	"github.com/quillworks/quill/internal/research"
	"github.com/quillworks/quill/internal/search"
	"github.com/quillworks/quill/internal/session"
	"github.com/quillworks/quill/internal/store"
	"github.com/quillworks/quill/internal/tools"
	"github.com/quillworks/quill/internal/web"
)

func main() {
	var (
		configPath = flag.String("config", defaultConfigPath(), "path to the configuration file")
		addr       = flag.String("addr", "", "listen address (overrides config)")
		logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error, none (overrides config)")
	)
	flag.Parse()

	if err := run(*configPath, *addr, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "quill: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addrFlag, logLevelFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addrFlag != "" {
		cfg.Addr = addrFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	st, err := store.Open(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer st.Close()

	models := provider.NewManager(cfg)
	researchClient := research.NewWebClient(
		searchProvider(cfg),
		research.WithMaxBodyBytes(cfg.Agent.MaxScrapeBytes),
		research.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Agent.FetchTimeoutSecs) * time.Second}),
	)

	registry := tools.NewRegistry()
	if err := tools.RegisterAll(registry, tools.Deps{
		Store:       st,
		Research:    researchClient,
		Models:      models,
		Temperature: cfg.Temperature,
	}); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	sessions := session.NewManager(
		session.ParseAutonomyLevel(cfg.Agent.DefaultAutonomy),
		cfg.Agent.HistoryLimit,
		time.Duration(cfg.Agent.SessionIdleMinutes)*time.Minute,
	)
	defer sessions.Close()

	hub := web.NewHub()
	go hub.Run()
	defer hub.Close()

	agent := orchestrator.NewAgent(sessions, st, registry, models, orchestrator.Options{
		WallClockBudget:    time.Duration(cfg.Agent.WallClockSeconds) * time.Second,
		ReflectionOverride: cfg.Agent.ReflectionOverride,
		Events:             hub,
	})

	server := web.NewServer(cfg.Addr, agent, registry, hub)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func searchProvider(cfg *config.Config) search.Provider {
	switch cfg.Search.Provider {
	case "exa":
		return search.NewExaProvider(cfg.Search.Exa)
	case "google_pse":
		return search.NewGooglePSEProvider(cfg.Search.GooglePSE)
	default:
		return nil
	}
}

func defaultConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return configHome + "/quill/config.json"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return home + "/.config/quill/config.json"
}
