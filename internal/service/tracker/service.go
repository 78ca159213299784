// Package tracker: 명령 표면(등록/해제/조회/설정)의 비즈니스 로직.
// 입력 검증과 저장소/통계 서비스 조합을 담당하고 메시지 포맷은 하지 않는다.
package tracker

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/scheduler"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/youtube"
	"github.com/kapu/youtube-tracker-bot-go/internal/util"
	"github.com/kapu/youtube-tracker-bot-go/pkg/errors"
)

// Store: 트래커 명령이 사용하는 저장소 연산의 집합. *store.Repository가 구현한다.
type Store interface {
	UpsertVideo(ctx context.Context, video *domain.TrackedVideo) error
	EnsureVideo(ctx context.Context, video *domain.TrackedVideo) error
	RemoveVideo(ctx context.Context, guildID, videoID string) (bool, error)
	GetVideo(ctx context.Context, guildID, videoID string) (*domain.TrackedVideo, error)
	ListVideos(ctx context.Context, guildID string) ([]*domain.TrackedVideo, error)
	SetInterval(ctx context.Context, guildID, videoID string, periodMinutes int) error
	DisableInterval(ctx context.Context, guildID, videoID string) (bool, error)
	ListIntervals(ctx context.Context, guildID string) ([]*domain.IntervalConfig, error)
	UpsertMilestone(ctx context.Context, cfg *domain.MilestoneConfig) error
	RemoveMilestone(ctx context.Context, guildID, videoID string) (bool, error)
	ListMilestones(ctx context.Context, guildID string) ([]*domain.MilestoneConfig, error)
	UpsertUpcomingConfig(ctx context.Context, cfg *domain.GuildUpcomingConfig) error
	RemoveUpcomingConfig(ctx context.Context, guildID string) (bool, error)
	GetUpcomingConfig(ctx context.Context, guildID string) (*domain.GuildUpcomingConfig, error)
	GetGuildStats(ctx context.Context, guildID string) (*domain.GuildStats, error)
}

// StatsProvider: 영상 통계 조회 경계.
type StatsProvider interface {
	GetVideoStats(ctx context.Context, videoID string) (*domain.VideoStats, error)
	GetVideosStats(ctx context.Context, videoIDs []string) (map[string]*domain.VideoStats, error)
	ResolveTitle(ctx context.Context, videoID string) string
}

// Service: 명령 표면 연산을 제공하는 서비스.
type Service struct {
	store  Store
	stats  StatsProvider
	logger *slog.Logger
}

// NewService: 트래커 서비스 인스턴스를 생성한다.
func NewService(store Store, stats StatsProvider, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		stats:  stats,
		logger: logger,
	}
}

func (s *Service) extractVideoID(input string) (string, error) {
	videoID := util.ExtractVideoID(input)
	if videoID == "" {
		return "", errors.NewValidationError("video", "유효한 YouTube 영상 URL 또는 ID가 아닙니다.")
	}
	return videoID, nil
}

// RegisterVideo: 영상을 추적 목록에 등록한다. 제목이 없으면 API에서 가져와
// 200자로 자르고, 그것도 실패하면 영상 ID를 제목으로 쓴다.
func (s *Service) RegisterVideo(ctx context.Context, guildID, input, customTitle, channelID string) (*domain.TrackedVideo, error) {
	videoID, err := s.extractVideoID(input)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(customTitle)
	if title == "" {
		title = s.stats.ResolveTitle(ctx, videoID)
	}
	title = util.TruncateRunes(title, constants.YouTubeConfig.TitleMaxLength)

	video := &domain.TrackedVideo{
		GuildID:   guildID,
		VideoID:   videoID,
		Title:     title,
		ChannelID: channelID,
	}
	if err := s.store.UpsertVideo(ctx, video); err != nil {
		return nil, err
	}

	s.logger.Info("Video registered",
		slog.String("guild", guildID),
		slog.String("video", videoID))
	return video, nil
}

// RemoveVideo: 영상 추적을 해제한다. 연관된 주기/마일스톤 설정도 함께 지워진다.
func (s *Service) RemoveVideo(ctx context.Context, guildID, input string) (string, bool, error) {
	videoID, err := s.extractVideoID(input)
	if err != nil {
		return "", false, err
	}

	removed, err := s.store.RemoveVideo(ctx, guildID, videoID)
	if err != nil {
		return videoID, false, err
	}

	if removed {
		s.logger.Info("Video removed",
			slog.String("guild", guildID),
			slog.String("video", videoID))
	}
	return videoID, removed, nil
}

// ListVideos: 길드의 추적 영상 목록을 조회한다.
func (s *Service) ListVideos(ctx context.Context, guildID string) ([]*domain.TrackedVideo, error) {
	return s.store.ListVideos(ctx, guildID)
}

// GetVideoObservation: 단일 영상의 현재 통계를 즉석 조회한다. (views 명령)
// 추적 목록에 없는 영상도 조회할 수 있다.
func (s *Service) GetVideoObservation(ctx context.Context, guildID, input string) (*domain.Observation, error) {
	videoID, err := s.extractVideoID(input)
	if err != nil {
		return nil, err
	}

	stats, err := s.stats.GetVideoStats(ctx, videoID)
	if err != nil {
		if youtube.IsUnavailable(err) {
			return nil, errors.NewValidationError("video", "영상을 찾을 수 없습니다. (삭제/비공개)")
		}
		return nil, err
	}

	title := stats.Title
	if video, _ := s.store.GetVideo(ctx, guildID, videoID); video != nil && video.Title != "" {
		title = video.Title
	}

	return &domain.Observation{
		GuildID:      guildID,
		VideoID:      videoID,
		Title:        title,
		CurrentViews: stats.Views,
		CurrentLikes: stats.Likes,
	}, nil
}

// ForceCheck: 길드의 모든 추적 영상 통계를 즉시 조회한다. (viewsall / 강제 체크)
// 스케줄 상태(last_run 등)는 건드리지 않는 일회성 조회다.
func (s *Service) ForceCheck(ctx context.Context, guildID string) ([]*domain.Observation, error) {
	videos, err := s.store.ListVideos(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.VideoID)
	}

	statsMap, err := s.stats.GetVideosStats(ctx, ids)
	if err != nil {
		return nil, err
	}

	observations := make([]*domain.Observation, 0, len(videos))
	for _, v := range videos {
		stats := statsMap[v.VideoID]
		if stats == nil {
			continue // unavailable 영상은 결과에서 제외
		}
		title := v.Title
		if title == "" {
			title = stats.Title
		}
		observations = append(observations, &domain.Observation{
			GuildID:      guildID,
			VideoID:      v.VideoID,
			Title:        title,
			CurrentViews: stats.Views,
			CurrentLikes: stats.Likes,
		})
	}
	return observations, nil
}

// SetInterval: 영상의 커스텀 체크 주기를 설정한다. 주기는 1분에서 1440분 사이.
// 추적 목록에 없던 영상이면 스텁 행을 먼저 만든다.
func (s *Service) SetInterval(ctx context.Context, guildID, input string, periodMinutes int) (string, error) {
	videoID, err := s.extractVideoID(input)
	if err != nil {
		return "", err
	}

	if periodMinutes < constants.ScheduleConfig.MinIntervalMin || periodMinutes > constants.ScheduleConfig.MaxIntervalMin {
		return "", errors.NewValidationError("period",
			fmt.Sprintf("체크 주기는 %d분에서 %d분 사이여야 합니다.",
				constants.ScheduleConfig.MinIntervalMin, constants.ScheduleConfig.MaxIntervalMin))
	}

	if err := s.ensureTracked(ctx, guildID, videoID); err != nil {
		return videoID, err
	}
	if err := s.store.SetInterval(ctx, guildID, videoID, periodMinutes); err != nil {
		return videoID, err
	}

	s.logger.Info("Interval configured",
		slog.String("guild", guildID),
		slog.String("video", videoID),
		slog.Int("period_min", periodMinutes))
	return videoID, nil
}

// DisableInterval: 커스텀 체크 주기를 비활성화한다. 이력은 유지된다.
func (s *Service) DisableInterval(ctx context.Context, guildID, input string) (string, bool, error) {
	videoID, err := s.extractVideoID(input)
	if err != nil {
		return "", false, err
	}

	disabled, err := s.store.DisableInterval(ctx, guildID, videoID)
	return videoID, disabled, err
}

// ListIntervals: 길드의 활성 주기 설정과 표시용 제목 맵을 조회한다.
func (s *Service) ListIntervals(ctx context.Context, guildID string) ([]*domain.IntervalConfig, map[string]string, error) {
	configs, err := s.store.ListIntervals(ctx, guildID)
	if err != nil {
		return nil, nil, err
	}

	titles := make(map[string]string, len(configs))
	for _, c := range configs {
		if video, _ := s.store.GetVideo(ctx, guildID, c.VideoID); video != nil {
			titles[c.VideoID] = video.Title
		}
	}
	return configs, titles, nil
}

// SetMilestone: 영상의 백만 단위 마일스톤 추적을 설정한다.
// 시작 티어는 현재 조회수 기준으로 시드해 이미 지난 백만 단위에 대한
// 소급 알림을 막는다. 조회수를 가져올 수 없으면 설정 자체를 거부한다.
func (s *Service) SetMilestone(ctx context.Context, guildID, input, channelID, pingText string) (*domain.MilestoneConfig, error) {
	videoID, err := s.extractVideoID(input)
	if err != nil {
		return nil, err
	}

	stats, err := s.stats.GetVideoStats(ctx, videoID)
	if err != nil {
		if youtube.IsUnavailable(err) {
			return nil, errors.NewValidationError("video", "영상을 찾을 수 없어 마일스톤을 설정할 수 없습니다.")
		}
		return nil, err
	}

	if err := s.ensureTracked(ctx, guildID, videoID); err != nil {
		return nil, err
	}

	cfg := &domain.MilestoneConfig{
		GuildID:         guildID,
		VideoID:         videoID,
		AlertChannelID:  channelID,
		PingText:        strings.TrimSpace(pingText),
		LastCrossedTier: scheduler.Tier(stats.Views),
	}
	if err := s.store.UpsertMilestone(ctx, cfg); err != nil {
		return nil, err
	}

	s.logger.Info("Milestone tracking configured",
		slog.String("guild", guildID),
		slog.String("video", videoID),
		slog.Uint64("seed_tier", cfg.LastCrossedTier))
	return cfg, nil
}

// RemoveMilestoneAlert: 마일스톤 추적을 해제한다.
func (s *Service) RemoveMilestoneAlert(ctx context.Context, guildID, input string) (string, bool, error) {
	videoID, err := s.extractVideoID(input)
	if err != nil {
		return "", false, err
	}

	removed, err := s.store.RemoveMilestone(ctx, guildID, videoID)
	return videoID, removed, err
}

// SetUpcomingAlert: 길드의 업커밍 다이제스트 채널을 설정한다.
// 채널을 비우면 설정이 해제된다.
func (s *Service) SetUpcomingAlert(ctx context.Context, guildID, channelID, pingText string) (bool, error) {
	if channelID == "" {
		return s.store.RemoveUpcomingConfig(ctx, guildID)
	}

	cfg := &domain.GuildUpcomingConfig{
		GuildID:   guildID,
		ChannelID: channelID,
		PingText:  strings.TrimSpace(pingText),
	}
	if err := s.store.UpsertUpcomingConfig(ctx, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// GetUpcoming: 길드 추적 영상 중 다음 백만 목표 임박 목록을 즉석 조회한다.
func (s *Service) GetUpcoming(ctx context.Context, guildID string) ([]*domain.UpcomingEntry, error) {
	videos, err := s.store.ListVideos(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.VideoID)
	}
	statsMap, err := s.stats.GetVideosStats(ctx, ids)
	if err != nil {
		return nil, err
	}

	var entries []*domain.UpcomingEntry
	for _, v := range videos {
		stats := statsMap[v.VideoID]
		if stats == nil {
			continue
		}
		target, remaining, qualifies := scheduler.UpcomingDistance(stats.Views)
		if !qualifies {
			continue
		}
		title := v.Title
		if title == "" {
			title = stats.Title
		}
		entries = append(entries, &domain.UpcomingEntry{
			VideoID:      v.VideoID,
			Title:        title,
			CurrentViews: stats.Views,
			NextTarget:   target,
			Remaining:    remaining,
			ETAMinutes:   scheduler.EstimateETAMinutes(remaining, nil, stats),
		})
	}
	return scheduler.BuildDigest(entries), nil
}

// GetReachedMilestones: 길드에서 티어를 하나 이상 통과한 마일스톤 목록을 조회한다.
func (s *Service) GetReachedMilestones(ctx context.Context, guildID string) ([]*domain.ReachedMilestone, error) {
	configs, err := s.store.ListMilestones(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var reached []*domain.ReachedMilestone
	for _, cfg := range configs {
		if cfg.LastCrossedTier == 0 {
			continue
		}
		title := ""
		if video, _ := s.store.GetVideo(ctx, guildID, cfg.VideoID); video != nil {
			title = video.Title
		}
		reached = append(reached, &domain.ReachedMilestone{
			VideoID: cfg.VideoID,
			Title:   title,
			Tier:    cfg.LastCrossedTier,
			Views:   cfg.LastCrossedTier * constants.MilestoneConfig.TierSize,
		})
	}
	return reached, nil
}

// GetServerStats: 길드의 추적 현황 요약을 조회한다.
func (s *Service) GetServerStats(ctx context.Context, guildID string) (*domain.GuildStats, error) {
	return s.store.GetGuildStats(ctx, guildID)
}

// ensureTracked: 부가 설정에 앞서 추적 영상 행이 존재하도록 보장한다.
// 스텁 행의 제목은 캐시/API에서 가능한 만큼만 채운다.
func (s *Service) ensureTracked(ctx context.Context, guildID, videoID string) error {
	title := util.TruncateRunes(s.stats.ResolveTitle(ctx, videoID), constants.YouTubeConfig.TitleMaxLength)
	return s.store.EnsureVideo(ctx, &domain.TrackedVideo{
		GuildID: guildID,
		VideoID: videoID,
		Title:   title,
	})
}
