// Package server: keepalive/상태 API와 Discord 인터랙션 웹훅을 제공하는 HTTP 서버.
package server

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kapu/youtube-tracker-bot-go/internal/command"
	"github.com/kapu/youtube-tracker-bot-go/internal/health"
)

// GuildCounter: keepalive 응답에 실을 길드 수 조회 경계.
type GuildCounter interface {
	ListGuildIDs(ctx context.Context) ([]string, error)
}

// QuotaReporter: YouTube API 할당량 현황 조회 경계.
type QuotaReporter interface {
	GetQuotaStatus() (used int, remaining int, resetTime time.Time)
}

// Config: HTTP 서버 설정.
type Config struct {
	Port           int
	PublicKey      string // Discord 인터랙션 서명 검증용 hex 공개키
	AllowedOrigins []string
}

// Server: gin 기반 HTTP 서버.
type Server struct {
	engine    *gin.Engine
	http      *http.Server
	registry  *command.Registry
	guilds    GuildCounter
	quota     QuotaReporter
	publicKey ed25519.PublicKey
	logger    *slog.Logger
}

// NewServer: 라우트가 구성된 새 HTTP 서버를 생성한다.
// 공개키가 잘못된 hex이면 에러를 반환한다. (빈 키는 웹훅 비활성화로 허용)
func NewServer(cfg Config, registry *command.Registry, guilds GuildCounter, quota QuotaReporter, logger *slog.Logger) (*Server, error) {
	var publicKey ed25519.PublicKey
	if cfg.PublicKey != "" {
		decoded, err := hex.DecodeString(cfg.PublicKey)
		if err != nil || len(decoded) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("invalid discord public key")
		}
		publicKey = ed25519.PublicKey(decoded)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggerMiddleware(logger, "/", "/health"))

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{
		engine:    engine,
		registry:  registry,
		guilds:    guilds,
		quota:     quota,
		publicKey: publicKey,
		logger:    logger,
	}
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	// keepalive: 호스팅 플랫폼의 슬립 방지용 핑 대상
	s.engine.GET("/", s.handleKeepalive)
	s.engine.GET("/health", s.handleKeepalive)

	api := s.engine.Group("/api")
	api.GET("/stats", s.handleSystemStats)
	api.GET("/quota", s.handleQuotaStatus)

	if s.publicKey != nil {
		s.engine.POST("/interactions", s.handleInteractions)
	}
}

func (s *Server) handleKeepalive(c *gin.Context) {
	resp := health.Get()

	guildCount := 0
	if s.guilds != nil {
		if ids, err := s.guilds.ListGuildIDs(c.Request.Context()); err == nil {
			guildCount = len(ids)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     resp.Status,
		"version":    resp.Version,
		"uptime":     resp.Uptime,
		"goroutines": resp.Goroutines,
		"guilds":     guildCount,
	})
}

func (s *Server) handleQuotaStatus(c *gin.Context) {
	used, remaining, resetTime := s.quota.GetQuotaStatus()
	c.JSON(http.StatusOK, gin.H{
		"used":      used,
		"remaining": remaining,
		"reset_at":  resetTime,
	})
}

func (s *Server) handleSystemStats(c *gin.Context) {
	stats, err := health.GetSystemStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect system stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Start: HTTP 서버를 시작한다. 종료 시까지 블록한다.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", slog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown: 진행 중인 요청을 마무리하고 서버를 종료한다.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
