package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/quickly-draw/cliparse"
	"github.com/danielhkuo/quickly-draw/db"
	"github.com/danielhkuo/quickly-draw/labels"
	"github.com/danielhkuo/quickly-draw/middleware"
	"github.com/danielhkuo/quickly-draw/roster"
	"github.com/danielhkuo/quickly-draw/router"
)

func main() {
	// A missing .env is fine; flags and the real environment still apply
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the session store
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Header keywords
	keywords := roster.DefaultKeywords
	if cfg.KeywordsFile != "" {
		keywords, err = roster.LoadKeywords(cfg.KeywordsFile)
		if err != nil {
			slog.Error("failed to load header keywords", "error", err)
			os.Exit(1)
		}
		slog.Info("Loaded header keywords", "file", cfg.KeywordsFile, "count", len(keywords))
	}
	parser := roster.NewParser(keywords)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Group labels
	var gen labels.Generator = labels.Static{Prefix: cfg.FallbackLabel}
	if cfg.GeminiAPIKey != "" {
		gemini, err := labels.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		if err != nil {
			slog.Error("failed to create label generator", "error", err)
			os.Exit(1)
		}
		gen = labels.WithTimeout(gemini, cfg.LabelTimeout)
		slog.Info("Using Gemini group labels", "model", gemini.Name(), "timeout", cfg.LabelTimeout.String())
	} else {
		slog.Info("No Gemini API key, using fallback group labels", "prefix", cfg.FallbackLabel)
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, parser, gen)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return db.RunSweeper(gctx, dbConn, cfg.SessionTTL)
	})

	// Wait for Ctrl-C or a server failure
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server closed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}
