// Package cache: Valkey(Redis) 기반 단기 상태 저장소.
// 직전 관측 스냅샷과 영상 제목 등 재계산 가능한 데이터만 담는다.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"log/slog"

	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
	"github.com/kapu/youtube-tracker-bot-go/pkg/errors"
)

// Service: Valkey 클라이언트를 래핑하여 캐싱 기능을 제공하는 서비스
type Service struct {
	client    valkey.Client
	logger    *slog.Logger
	closeOnce sync.Once
}

// Config: Valkey 연결 설정을 담는 구조체
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewCacheService: 새로운 Valkey 캐시 서비스 인스턴스를 생성하고 연결을 수립한다.
func NewCacheService(cfg Config, logger *slog.Logger) (*Service, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		BlockingPoolSize:  constants.ValkeyConfig.BlockingPoolSize,
		PipelineMultiplex: constants.ValkeyConfig.PipelineMultiplex,
		Dialer:            net.Dialer{Timeout: constants.ValkeyConfig.DialTimeout},
	})
	if err != nil {
		return nil, errors.NewCacheError("failed to create cache client", "init", "", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ValkeyConfig.ReadyTimeout)
	defer cancel()

	// Ping 테스트
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, errors.NewCacheError("failed to connect to cache store", "ping", "", err)
	}

	logger.Info("Cache store connected",
		slog.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		slog.Int("db", cfg.DB),
	)

	return &Service{
		client: client,
		logger: logger,
	}, nil
}

// Get: 키에 해당하는 값을 조회하고, 결과를 dest 인터페이스에 언마샬링한다.
func (c *Service) Get(ctx context.Context, key string, dest any) error {
	resp := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if valkey.IsValkeyNil(resp.Error()) {
		return nil // Key doesn't exist - not an error
	}
	if resp.Error() != nil {
		c.logger.Error("Cache get operation failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return errors.NewCacheError("get failed", "get", key, resp.Error())
	}

	value, err := resp.ToString()
	if err != nil {
		c.logger.Error("Cache value conversion failed", slog.String("key", key), slog.Any("error", err))
		return errors.NewCacheError("conversion failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("Cache value unmarshal failed", slog.String("key", key), slog.Any("error", err))
			return errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return nil
}

// Set: 값을 JSON으로 마샬링하여 키에 저장한다. (TTL 지정 가능)
func (c *Service) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	var cmd valkey.Completed
	if ttl > 0 {
		cmd = c.client.B().Set().Key(key).Value(string(jsonData)).ExSeconds(int64(ttl.Seconds())).Build()
	} else {
		cmd = c.client.B().Set().Key(key).Value(string(jsonData)).Build()
	}

	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Error("Cache set failed", slog.String("key", key), slog.Any("error", err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

// Del: 지정된 키를 삭제한다.
func (c *Service) Del(ctx context.Context, key string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error(); err != nil {
		c.logger.Error("Cache delete failed", slog.String("key", key), slog.Any("error", err))
		return errors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

// Exists: 키가 존재하는지 확인한다.
func (c *Service) Exists(ctx context.Context, key string) (bool, error) {
	resp := c.client.Do(ctx, c.client.B().Exists().Key(key).Build())
	if resp.Error() != nil {
		c.logger.Error("Cache exists failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return false, errors.NewCacheError("exists failed", "exists", key, resp.Error())
	}

	count, err := resp.AsInt64()
	if err != nil {
		return false, errors.NewCacheError("exists conversion failed", "exists", key, err)
	}

	return count > 0, nil
}

// Close: 캐시 스토어 연결을 안전하게 종료한다.
func (c *Service) Close() error {
	c.closeOnce.Do(func() {
		if c.client == nil {
			return
		}

		c.client.Close()
		c.logger.Info("Cache store disconnected")
	})

	return nil
}

// IsConnected: 캐시 스토어와 연결되어 있는지(PING 응답 여부) 확인한다.
func (c *Service) IsConnected(ctx context.Context) bool {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error() == nil
}

func observationKey(videoID string) string {
	return "tracker:observation:" + videoID
}

func titleKey(videoID string) string {
	return "tracker:title:" + videoID
}

// GetLastObservation: 영상의 직전 조회수 스냅샷을 조회한다.
// 캐시 미스나 오류는 (nil, false)로 구분 없이 처리한다.
func (c *Service) GetLastObservation(ctx context.Context, videoID string) (*domain.VideoStats, bool) {
	var stats *domain.VideoStats
	if err := c.Get(ctx, observationKey(videoID), &stats); err != nil {
		c.logger.Debug("Cache miss or error", slog.String("key", observationKey(videoID)))
		return nil, false
	}

	if stats == nil {
		return nil, false
	}

	return stats, true
}

// SetLastObservation: 영상의 조회수 스냅샷을 캐시에 저장한다. (TTL 적용)
// 성장률 추정에만 쓰이는 값이라 실패해도 호출자에 전파하지 않는다.
func (c *Service) SetLastObservation(ctx context.Context, stats *domain.VideoStats) {
	if err := c.Set(ctx, observationKey(stats.VideoID), stats, constants.CacheTTL.LastObservation); err != nil {
		c.logger.Error("Failed to cache observation", slog.String("video", stats.VideoID), slog.Any("error", err))
	}
}

// GetVideoTitle: 캐시된 영상 제목을 조회한다.
func (c *Service) GetVideoTitle(ctx context.Context, videoID string) (string, bool) {
	var title string
	if err := c.Get(ctx, titleKey(videoID), &title); err != nil {
		return "", false
	}

	if title == "" {
		return "", false
	}

	return title, true
}

// SetVideoTitle: 영상 제목을 캐시에 저장한다.
func (c *Service) SetVideoTitle(ctx context.Context, videoID, title string) {
	if title == "" {
		return
	}
	if err := c.Set(ctx, titleKey(videoID), title, constants.CacheTTL.VideoTitle); err != nil {
		c.logger.Error("Failed to cache video title", slog.String("video", videoID), slog.Any("error", err))
	}
}
