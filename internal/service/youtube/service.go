// Package youtube: YouTube Data API에서 영상 통계를 조회하는 서비스.
// 일일 할당량 추적과 동시 요청 합치기를 담당한다.
package youtube

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"log/slog"

	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/cache"
	"github.com/kapu/youtube-tracker-bot-go/pkg/errors"
)

// ErrVideoUnavailable: 영상이 삭제/비공개 등으로 API 응답에 없을 때 반환된다.
// 이 에러를 받은 호출자는 어떤 상태도 갱신하면 안 된다.
var ErrVideoUnavailable = stderrors.New("video unavailable")

// Service: YouTube API와 상호작용하여 영상 통계를 제공하는 서비스
type Service struct {
	service    *youtube.Service
	cache      *cache.Service
	logger     *slog.Logger
	group      singleflight.Group
	quotaUsed  int
	quotaMu    sync.Mutex
	quotaReset time.Time
}

// NewYouTubeService: YouTube 서비스 인스턴스를 생성한다.
func NewYouTubeService(ctx context.Context, apiKey string, cache *cache.Service, logger *slog.Logger) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	ys := &Service{
		service:    service,
		cache:      cache,
		logger:     logger,
		quotaUsed:  0,
		quotaReset: getNextQuotaReset(),
	}

	logger.Info("YouTube stats service initialized",
		slog.Time("quotaReset", ys.quotaReset))

	return ys, nil
}

// YouTube API 할당량은 태평양 시간 자정에 초기화된다.
func getNextQuotaReset() time.Time {
	pt, _ := time.LoadLocation("America/Los_Angeles")
	now := time.Now().In(pt)
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, pt)
	return next
}

func (ys *Service) checkQuota(cost int) error {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()

	now := time.Now()
	if now.After(ys.quotaReset) {
		ys.quotaUsed = 0
		ys.quotaReset = getNextQuotaReset()
		ys.logger.Info("YouTube API quota auto-reset",
			slog.Time("nextReset", ys.quotaReset))
	}

	if ys.quotaUsed+cost > (constants.YouTubeConfig.DailyQuotaLimit - constants.YouTubeConfig.QuotaSafetyMargin) {
		return &QuotaExceededError{
			Used:      ys.quotaUsed,
			Limit:     constants.YouTubeConfig.DailyQuotaLimit,
			Requested: cost,
			ResetTime: ys.quotaReset,
		}
	}

	return nil
}

func (ys *Service) consumeQuota(cost int) {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()

	ys.quotaUsed += cost
	remaining := constants.YouTubeConfig.DailyQuotaLimit - ys.quotaUsed

	ys.logger.Debug("YouTube API quota consumed",
		slog.Int("cost", cost),
		slog.Int("used", ys.quotaUsed),
		slog.Int("remaining", remaining))

	if remaining < constants.YouTubeConfig.QuotaSafetyMargin {
		ys.logger.Warn("YouTube API quota running low",
			slog.Int("remaining", remaining),
			slog.Time("resetTime", ys.quotaReset))
	}
}

// GetVideoStats: 단일 영상의 현재 통계를 조회한다.
// 같은 영상에 대한 동시 요청은 singleflight로 합쳐 API 호출을 아낀다.
// 영상이 응답에 없으면 ErrVideoUnavailable을 반환한다.
func (ys *Service) GetVideoStats(ctx context.Context, videoID string) (*domain.VideoStats, error) {
	result, err, _ := ys.group.Do(videoID, func() (any, error) {
		statsMap, err := ys.GetVideosStats(ctx, []string{videoID})
		if err != nil {
			return nil, err
		}
		stats, ok := statsMap[videoID]
		if !ok {
			return nil, ErrVideoUnavailable
		}
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.VideoStats), nil
}

// GetVideosStats: 여러 영상의 통계를 배치 조회한다. (videos.list, 호출당 50개)
// 응답에 없는 영상은 결과 맵에서 빠진다. 호출자가 구멍을 unavailable로 해석해야 한다.
func (ys *Service) GetVideosStats(ctx context.Context, videoIDs []string) (map[string]*domain.VideoStats, error) {
	if len(videoIDs) == 0 {
		return make(map[string]*domain.VideoStats), nil
	}

	batches := (len(videoIDs) + constants.YouTubeConfig.MaxIDsPerCall - 1) / constants.YouTubeConfig.MaxIDsPerCall
	cost := batches * constants.YouTubeConfig.VideosQuotaCost
	if err := ys.checkQuota(cost); err != nil {
		return nil, err
	}

	result := make(map[string]*domain.VideoStats, len(videoIDs))
	fetchedAt := time.Now()

	for i := 0; i < len(videoIDs); i += constants.YouTubeConfig.MaxIDsPerCall {
		end := i + constants.YouTubeConfig.MaxIDsPerCall
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		batch := videoIDs[i:end]

		callCtx, cancel := context.WithTimeout(ctx, constants.YouTubeConfig.FetchTimeout)
		call := ys.service.Videos.List([]string{"statistics", "snippet"}).
			Id(batch...)

		response, err := call.Context(callCtx).Do()
		cancel()
		if err != nil {
			apiErr := &googleapi.Error{}
			if stderrors.As(err, &apiErr) && apiErr.Code == 403 {
				return nil, &QuotaExceededError{
					Used:      ys.quotaUsed,
					Limit:     constants.YouTubeConfig.DailyQuotaLimit,
					Requested: cost,
					ResetTime: ys.quotaReset,
				}
			}
			return nil, errors.NewAPIError("videos_list", statusCode(err), err)
		}

		for _, item := range response.Items {
			if item.Statistics == nil {
				continue
			}

			stats := &domain.VideoStats{
				VideoID:   item.Id,
				Views:     item.Statistics.ViewCount,
				Likes:     item.Statistics.LikeCount,
				FetchedAt: fetchedAt,
			}
			if item.Snippet != nil {
				stats.Title = item.Snippet.Title
			}
			result[item.Id] = stats

			ys.cache.SetVideoTitle(ctx, item.Id, stats.Title)
		}
	}

	ys.consumeQuota(cost)

	ys.logger.Debug("Video statistics fetched",
		slog.Int("requested", len(videoIDs)),
		slog.Int("results", len(result)),
		slog.Int("quota_used", cost))

	return result, nil
}

// ResolveTitle: 영상 제목을 조회한다. 캐시 우선, 미스 시 API 호출.
// 어떤 경로로도 못 구하면 빈 문자열을 반환한다. (등록 자체는 막지 않는다)
func (ys *Service) ResolveTitle(ctx context.Context, videoID string) string {
	if title, found := ys.cache.GetVideoTitle(ctx, videoID); found {
		return title
	}

	stats, err := ys.GetVideoStats(ctx, videoID)
	if err != nil {
		ys.logger.Warn("Failed to resolve video title",
			slog.String("video", videoID),
			slog.Any("error", err))
		return ""
	}
	return stats.Title
}

// GetQuotaStatus: 현재 API 할당량 사용량, 잔여량, 초기화 예정 시간을 반환한다.
func (ys *Service) GetQuotaStatus() (used int, remaining int, resetTime time.Time) {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()

	if time.Now().After(ys.quotaReset) {
		return 0, constants.YouTubeConfig.DailyQuotaLimit, getNextQuotaReset()
	}

	return ys.quotaUsed, constants.YouTubeConfig.DailyQuotaLimit - ys.quotaUsed, ys.quotaReset
}

func statusCode(err error) int {
	apiErr := &googleapi.Error{}
	if stderrors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// QuotaExceededError: API 할당량 초과 시 발생하는 에러 구조체
type QuotaExceededError struct {
	Used      int
	Limit     int
	Requested int
	ResetTime time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("YouTube API quota exceeded: used %d/%d (requested %d more), resets at %s",
		e.Used, e.Limit, e.Requested, e.ResetTime.Format(time.RFC3339))
}

// IsUnavailable: 영상 부재 에러인지 판별한다.
func IsUnavailable(err error) bool {
	return stderrors.Is(err, ErrVideoUnavailable)
}
