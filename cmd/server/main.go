// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/trivia/internal/cache"
	"github.com/jason-s-yu/trivia/internal/catalog"
	"github.com/jason-s-yu/trivia/internal/config"
	"github.com/jason-s-yu/trivia/internal/database"
	"github.com/jason-s-yu/trivia/internal/handlers"
	"github.com/jason-s-yu/trivia/internal/room"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := room.Options{
		DefaultTimer:     cfg.DefaultQuestionTimer.Seconds(),
		TimeUnit:         time.Second,
		RemoveEmptyRooms: cfg.RemoveEmptyRooms,
	}

	// the catalog comes from Postgres when a database is configured, else from the JSON file
	var questionDB catalog.Querier
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to database")
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.WithError(err).Fatal("failed to apply schema")
		}
		questionDB = pool
		opts.Results = database.NewResultStore(pool)
		logger.Info("connected to database")
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("action journal disabled")
		} else {
			defer rdb.Close()
			opts.Journal = cache.NewJournal(rdb, cfg.JournalQueue)
			logger.WithField("queue", cfg.JournalQueue).Info("publishing room actions to redis")
		}
	}

	cat := catalog.LoadOrEmpty(ctx, questionDB, cfg.QuestionsFile, logger)

	hub := handlers.NewHub(logger)
	svc := room.NewService(cat, hub, logger, opts)
	defer svc.Close()

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: handlers.NewRouter(logger, svc, hub, cfg.AllowedOrigins, cfg.StaticDir),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("http shutdown")
		}
	}()

	logger.Infof("Running on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("server exited")
	}
	logger.Info("server stopped")
}
