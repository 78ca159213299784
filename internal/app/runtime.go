// Package app: 서비스 조립과 런타임 수명주기 관리.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/kapu/youtube-tracker-bot-go/internal/chat"
	"github.com/kapu/youtube-tracker-bot-go/internal/command"
	"github.com/kapu/youtube-tracker-bot-go/internal/config"
	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
	"github.com/kapu/youtube-tracker-bot-go/internal/health"
	"github.com/kapu/youtube-tracker-bot-go/internal/server"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/cache"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/database"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/scheduler"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/store"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/tracker"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/youtube"
)

// Runtime: 조립이 끝난 애플리케이션 전체.
type Runtime struct {
	Config *config.Config
	Logger *slog.Logger

	Postgres  *database.PostgresService
	Cache     *cache.Service
	Store     *store.Repository
	YouTube   *youtube.Service
	Chat      *chat.Client
	Tracker   *tracker.Service
	Scheduler *scheduler.Scheduler
	Registry  *command.Registry
	Server    *server.Server
}

// BuildRuntime: 설정에서 출발해 모든 서비스를 순서대로 조립한다.
func BuildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	health.Init(cfg.Version)

	postgres, err := database.NewPostgresService(database.PostgresConfig{
		URL:      cfg.Postgres.URL,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres init failed: %w", err)
	}

	repository, err := store.NewRepository(postgres, logger)
	if err != nil {
		postgres.Close()
		return nil, fmt.Errorf("store init failed: %w", err)
	}

	cacheService, err := cache.NewCacheService(cache.Config{
		Host:     cfg.Valkey.Host,
		Port:     cfg.Valkey.Port,
		Password: cfg.Valkey.Password,
		DB:       cfg.Valkey.DB,
	}, logger)
	if err != nil {
		postgres.Close()
		return nil, fmt.Errorf("cache init failed: %w", err)
	}

	youtubeService, err := youtube.NewYouTubeService(ctx, cfg.YouTube.APIKey, cacheService, logger)
	if err != nil {
		postgres.Close()
		return nil, fmt.Errorf("youtube init failed: %w", err)
	}

	chatClient := chat.NewClient(cfg.Discord.BotToken, logger)
	trackerService := tracker.NewService(repository, youtubeService, logger)
	schedulerService := scheduler.NewScheduler(repository, youtubeService, chatClient, cacheService, cfg.Schedule.TickInterval, logger)

	registry := command.NewDefaultRegistry(&command.Dependencies{
		Tracker: trackerService,
		Logger:  logger,
	})

	httpServer, err := server.NewServer(server.Config{
		Port:           cfg.Server.Port,
		PublicKey:      cfg.Discord.PublicKey,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, registry, repository, youtubeService, logger)
	if err != nil {
		postgres.Close()
		return nil, fmt.Errorf("server init failed: %w", err)
	}

	return &Runtime{
		Config:    cfg,
		Logger:    logger,
		Postgres:  postgres,
		Cache:     cacheService,
		Store:     repository,
		YouTube:   youtubeService,
		Chat:      chatClient,
		Tracker:   trackerService,
		Scheduler: schedulerService,
		Registry:  registry,
		Server:    httpServer,
	}, nil
}

// Run: 스케줄러와 HTTP 서버를 시작하고 종료 시그널까지 블록한다.
func (r *Runtime) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.Scheduler.Start(ctx)
	r.Logger.Info("Command registry ready", slog.Int("commands", r.Registry.Count()))

	errCh := make(chan error, 1)
	go func() {
		if err := r.Server.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		r.Logger.Info("Shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		r.Logger.Error("HTTP server error", slog.Any("error", err))
	}

	r.shutdown()
}

func (r *Runtime) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.AppTimeout.Shutdown)
	defer cancel()

	r.Scheduler.Stop()

	if err := r.Server.Shutdown(shutdownCtx); err != nil {
		r.Logger.Warn("HTTP server shutdown failed", slog.Any("error", err))
	}
	if err := r.Cache.Close(); err != nil {
		r.Logger.Warn("Cache close failed", slog.Any("error", err))
	}
	if err := r.Postgres.Close(); err != nil {
		r.Logger.Warn("Postgres close failed", slog.Any("error", err))
	}

	r.Logger.Info("Shutdown complete")
}
