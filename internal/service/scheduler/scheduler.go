package scheduler

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"log/slog"

	"github.com/kapu/youtube-tracker-bot-go/internal/adapter"
	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/youtube"
)

// TrackerStore: 스케줄러가 사용하는 저장소 연산의 집합.
type TrackerStore interface {
	ListGuildIDs(ctx context.Context) ([]string, error)
	ListVideos(ctx context.Context, guildID string) ([]*domain.TrackedVideo, error)
	GetVideo(ctx context.Context, guildID, videoID string) (*domain.TrackedVideo, error)
	ListDueIntervals(ctx context.Context, now time.Time) ([]*domain.IntervalConfig, error)
	MarkIntervalRun(ctx context.Context, guildID, videoID string, runAt time.Time, views uint64) error
	GetMilestone(ctx context.Context, guildID, videoID string) (*domain.MilestoneConfig, error)
	AdvanceMilestoneTier(ctx context.Context, guildID, videoID string, tier uint64) error
	ListUpcomingConfigs(ctx context.Context) ([]*domain.GuildUpcomingConfig, error)
}

// StatsProvider: 영상 통계 조회 경계.
type StatsProvider interface {
	GetVideoStats(ctx context.Context, videoID string) (*domain.VideoStats, error)
	GetVideosStats(ctx context.Context, videoIDs []string) (map[string]*domain.VideoStats, error)
}

// Messenger: 알림 발송 경계. 실패는 호출자 측에서 로그로 남기고 삼킨다.
type Messenger interface {
	SendMessage(ctx context.Context, channelID, content string) error
}

// ObservationCache: 성장률 추정용 직전 관측 스냅샷 저장소.
type ObservationCache interface {
	GetLastObservation(ctx context.Context, videoID string) (*domain.VideoStats, bool)
	SetLastObservation(ctx context.Context, stats *domain.VideoStats)
}

// Scheduler: 1분 틱마다 고정 체크포인트와 커스텀 주기를 평가하는 메인 루프.
// 틱 핸들러는 완주 후에만 다음 틱을 받으므로 틱끼리 겹치지 않는다.
type Scheduler struct {
	store        TrackerStore
	stats        StatsProvider
	chat         Messenger
	observations ObservationCache
	tick         time.Duration
	logger       *slog.Logger
	stopCh       chan struct{}
	lastTick     time.Time
}

// NewScheduler: 스케줄러 인스턴스를 생성한다. tick이 0 이하이면 기본 주기를 쓴다.
func NewScheduler(store TrackerStore, stats StatsProvider, chat Messenger, observations ObservationCache, tick time.Duration, logger *slog.Logger) *Scheduler {
	if tick <= 0 {
		tick = constants.ScheduleConfig.TickInterval
	}
	return &Scheduler{
		store:        store,
		stats:        stats,
		chat:         chat,
		observations: observations,
		tick:         tick,
		logger:       logger,
		stopCh:       make(chan struct{}),
	}
}

// Start: 틱 루프를 시작한다. 핸들러가 틱 주기를 넘겨도 다음 틱은 밀릴 뿐
// 동시에 실행되지 않는다.
func (s *Scheduler) Start(ctx context.Context) {
	s.lastTick = time.Now()
	ticker := time.NewTicker(s.tick)

	s.logger.Info("Tracker scheduler started",
		slog.Duration("tick", s.tick),
		slog.Any("fixed_hours_kst", constants.ScheduleConfig.FixedCheckHours))

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runTick(ctx, time.Now())
			case <-s.stopCh:
				s.logger.Info("Tracker scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Tracker scheduler context canceled")
				return
			}
		}
	}()
}

// Stop: 틱 루프를 중지한다.
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// runTick: 한 번의 틱을 처리한다. 고정 페이즈가 먼저 완주한 뒤 주기 페이즈가
// 실행되므로 같은 (길드, 영상) 키의 작업이 동시에 돌지 않는다.
func (s *Scheduler) runTick(ctx context.Context, now time.Time) {
	prev := s.lastTick
	s.lastTick = now

	if checkpoint, ok := FixedCheckpointBetween(prev, now); ok {
		s.runFixedPhase(ctx, checkpoint)
	}
	s.runIntervalPhase(ctx, now)
}

// runFixedPhase: 고정 체크포인트의 전체 카탈로그 점검을 수행한다.
// 모든 길드의 추적 영상 통계를 배치 조회한 뒤 길드별로 팬아웃한다.
func (s *Scheduler) runFixedPhase(ctx context.Context, checkpoint time.Time) {
	guilds, err := s.store.ListGuildIDs(ctx)
	if err != nil {
		s.logger.Error("Fixed check aborted: failed to list guilds", slog.Any("error", err))
		return
	}
	if len(guilds) == 0 {
		return
	}

	perGuild := make(map[string][]*domain.TrackedVideo, len(guilds))
	uniqueIDs := make(map[string]struct{})
	for _, guildID := range guilds {
		videos, err := s.store.ListVideos(ctx, guildID)
		if err != nil {
			s.logger.Error("Failed to list guild videos",
				slog.String("guild", guildID), slog.Any("error", err))
			continue
		}
		perGuild[guildID] = videos
		for _, v := range videos {
			uniqueIDs[v.VideoID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(uniqueIDs))
	for id := range uniqueIDs {
		ids = append(ids, id)
	}

	statsMap, err := s.stats.GetVideosStats(ctx, ids)
	if err != nil {
		s.logger.Error("Fixed check aborted: stats fetch failed", slog.Any("error", err))
		return
	}

	prevMap := make(map[string]*domain.VideoStats, len(ids))
	for id := range uniqueIDs {
		if prev, ok := s.observations.GetLastObservation(ctx, id); ok {
			prevMap[id] = prev
		}
	}

	s.logger.Info("Running fixed checkpoint",
		slog.Time("checkpoint", checkpoint),
		slog.Int("guilds", len(perGuild)),
		slog.Int("videos", len(ids)),
		slog.Int("fetched", len(statsMap)))

	for _, videos := range perGuild {
		p := pool.New().WithMaxGoroutines(constants.ScheduleConfig.MaxFanOutWorkers)
		for _, video := range videos {
			video := video
			p.Go(func() {
				s.handleFixedVideo(ctx, video, statsMap[video.VideoID], prevMap[video.VideoID])
			})
		}
		p.Wait()
	}

	s.dispatchDigests(ctx, perGuild, statsMap, prevMap)

	// 관측 스냅샷은 성장률 계산이 끝난 뒤에 갱신한다
	for _, stats := range statsMap {
		s.observations.SetLastObservation(ctx, stats)
	}
}

// handleFixedVideo: 고정 체크포인트에서 영상 한 건을 처리한다.
// 통계가 없으면(비공개/삭제) 아무 상태도 바꾸지 않고 건너뛴다.
func (s *Scheduler) handleFixedVideo(ctx context.Context, video *domain.TrackedVideo, stats, prev *domain.VideoStats) {
	if stats == nil {
		s.logger.Debug("Skipping unavailable video",
			slog.String("guild", video.GuildID),
			slog.String("video", video.VideoID))
		return
	}

	if video.ChannelID != "" {
		obs := buildObservation(video, stats, prev)
		if err := s.chat.SendMessage(ctx, video.ChannelID, adapter.FormatStatsMessage(obs)); err != nil {
			s.logger.Warn("Failed to send stats message",
				slog.String("guild", video.GuildID),
				slog.String("video", video.VideoID),
				slog.String("channel", video.ChannelID),
				slog.Any("error", err))
		}
	}

	s.checkMilestone(ctx, video, stats)
}

// runIntervalPhase: 이번 틱에 실행해야 할 커스텀 주기 체크를 팬아웃한다.
// (길드, 영상) 키는 due 목록 안에서 유일하므로 동시 실행이 안전하다.
func (s *Scheduler) runIntervalPhase(ctx context.Context, now time.Time) {
	due, err := s.store.ListDueIntervals(ctx, now)
	if err != nil {
		s.logger.Error("Interval check aborted: failed to list due intervals", slog.Any("error", err))
		return
	}
	if len(due) == 0 {
		return
	}

	s.logger.Debug("Running interval checks", slog.Int("due", len(due)))

	p := pool.New().WithMaxGoroutines(constants.ScheduleConfig.MaxFanOutWorkers)
	for _, cfg := range due {
		cfg := cfg
		p.Go(func() {
			s.handleDueInterval(ctx, cfg, now)
		})
	}
	p.Wait()
}

// handleDueInterval: due 상태의 주기 설정 한 건을 처리한다.
// fetch가 실패하면 last_run을 건드리지 않아 다음 틱에 자동 재시도된다.
// last_run/last_views는 알림 발송 시도 이후에만 전진한다. (at-least-once)
func (s *Scheduler) handleDueInterval(ctx context.Context, cfg *domain.IntervalConfig, now time.Time) {
	// 저장소 조회 결과와 무관하게 due 판정의 최종 기준은 IsDue다
	if !cfg.IsDue(now) {
		return
	}

	video, err := s.store.GetVideo(ctx, cfg.GuildID, cfg.VideoID)
	if err != nil || video == nil {
		s.logger.Warn("Interval check skipped: tracked video not found",
			slog.String("guild", cfg.GuildID),
			slog.String("video", cfg.VideoID),
			slog.Any("error", err))
		return
	}

	stats, err := s.stats.GetVideoStats(ctx, cfg.VideoID)
	if err != nil {
		if youtube.IsUnavailable(err) {
			s.logger.Debug("Interval check deferred: video unavailable",
				slog.String("guild", cfg.GuildID),
				slog.String("video", cfg.VideoID))
		} else {
			s.logger.Warn("Interval check deferred: stats fetch failed",
				slog.String("guild", cfg.GuildID),
				slog.String("video", cfg.VideoID),
				slog.Any("error", err))
		}
		return
	}

	obs := &domain.Observation{
		GuildID:       cfg.GuildID,
		VideoID:       cfg.VideoID,
		Title:         video.Title,
		CurrentViews:  stats.Views,
		CurrentLikes:  stats.Likes,
		PreviousViews: cfg.LastViews,
		HasPrevious:   cfg.LastRunAt != nil,
	}
	if obs.Title == "" {
		obs.Title = stats.Title
	}

	if video.ChannelID != "" {
		if err := s.chat.SendMessage(ctx, video.ChannelID, adapter.FormatIntervalUpdate(obs, cfg.PeriodMinutes)); err != nil {
			s.logger.Warn("Failed to send interval message",
				slog.String("guild", cfg.GuildID),
				slog.String("video", cfg.VideoID),
				slog.String("channel", video.ChannelID),
				slog.Any("error", err))
		}
	}

	s.checkMilestone(ctx, video, stats)

	if err := s.store.MarkIntervalRun(ctx, cfg.GuildID, cfg.VideoID, now, stats.Views); err != nil {
		s.logger.Error("Failed to record interval run",
			slog.String("guild", cfg.GuildID),
			slog.String("video", cfg.VideoID),
			slog.Any("error", err))
	}

	s.observations.SetLastObservation(ctx, stats)
}

// checkMilestone: 새 조회수가 백만 단위 티어를 넘었으면 알림을 발송하고 티어를
// 전진시킨다. 알림 채널이 없어도 티어는 전진한다. (발송 시도 이후 전진)
func (s *Scheduler) checkMilestone(ctx context.Context, video *domain.TrackedVideo, stats *domain.VideoStats) {
	cfg, err := s.store.GetMilestone(ctx, video.GuildID, video.VideoID)
	if err != nil {
		s.logger.Warn("Milestone lookup failed",
			slog.String("guild", video.GuildID),
			slog.String("video", video.VideoID),
			slog.Any("error", err))
		return
	}
	if cfg == nil {
		return
	}

	tier, crossed := CrossedTier(cfg.LastCrossedTier, stats.Views)
	if !crossed {
		return
	}

	title := video.Title
	if title == "" {
		title = stats.Title
	}

	if cfg.Notifiable() {
		msg := adapter.FormatMilestoneReached(title, video.VideoID, tier, stats.Views)
		if cfg.PingText != "" {
			msg = cfg.PingText + "\n" + msg
		}
		if err := s.chat.SendMessage(ctx, cfg.AlertChannelID, msg); err != nil {
			s.logger.Warn("Failed to send milestone message",
				slog.String("guild", video.GuildID),
				slog.String("video", video.VideoID),
				slog.String("channel", cfg.AlertChannelID),
				slog.Any("error", err))
		}
	}

	if err := s.store.AdvanceMilestoneTier(ctx, video.GuildID, video.VideoID, tier); err != nil {
		s.logger.Error("Failed to advance milestone tier",
			slog.String("guild", video.GuildID),
			slog.String("video", video.VideoID),
			slog.Uint64("tier", tier),
			slog.Any("error", err))
		return
	}

	s.logger.Info("Milestone tier crossed",
		slog.String("guild", video.GuildID),
		slog.String("video", video.VideoID),
		slog.Uint64("tier", tier),
		slog.Uint64("views", stats.Views))
}

// dispatchDigests: 다이제스트 채널이 설정된 길드마다 백만 목표 임박 영상
// 목록을 만들어 발송한다. 해당 영상이 없으면 조용히 건너뛴다.
func (s *Scheduler) dispatchDigests(ctx context.Context, perGuild map[string][]*domain.TrackedVideo, statsMap, prevMap map[string]*domain.VideoStats) {
	configs, err := s.store.ListUpcomingConfigs(ctx)
	if err != nil {
		s.logger.Error("Digest dispatch aborted: failed to list configs", slog.Any("error", err))
		return
	}

	for _, cfg := range configs {
		entries := buildGuildDigest(perGuild[cfg.GuildID], statsMap, prevMap)
		if len(entries) == 0 {
			continue
		}

		msg := adapter.FormatUpcomingDigest(entries)
		if cfg.PingText != "" {
			msg = cfg.PingText + "\n" + msg
		}
		if err := s.chat.SendMessage(ctx, cfg.ChannelID, msg); err != nil {
			s.logger.Warn("Failed to send upcoming digest",
				slog.String("guild", cfg.GuildID),
				slog.String("channel", cfg.ChannelID),
				slog.Any("error", err))
		}
	}
}

// buildGuildDigest: 길드의 추적 영상 중 다음 백만 목표까지 10만 이내인 영상을
// 목표에 가까운 순으로 모은다.
func buildGuildDigest(videos []*domain.TrackedVideo, statsMap, prevMap map[string]*domain.VideoStats) []*domain.UpcomingEntry {
	var entries []*domain.UpcomingEntry
	for _, video := range videos {
		stats := statsMap[video.VideoID]
		if stats == nil {
			continue
		}

		target, remaining, qualifies := UpcomingDistance(stats.Views)
		if !qualifies {
			continue
		}

		title := video.Title
		if title == "" {
			title = stats.Title
		}
		entries = append(entries, &domain.UpcomingEntry{
			VideoID:      video.VideoID,
			Title:        title,
			CurrentViews: stats.Views,
			NextTarget:   target,
			Remaining:    remaining,
			ETAMinutes:   EstimateETAMinutes(remaining, prevMap[video.VideoID], stats),
		})
	}

	return BuildDigest(entries)
}

func buildObservation(video *domain.TrackedVideo, stats, prev *domain.VideoStats) *domain.Observation {
	obs := &domain.Observation{
		GuildID:      video.GuildID,
		VideoID:      video.VideoID,
		Title:        video.Title,
		CurrentViews: stats.Views,
		CurrentLikes: stats.Likes,
	}
	if obs.Title == "" {
		obs.Title = stats.Title
	}
	if prev != nil {
		obs.PreviousViews = prev.Views
		obs.HasPrevious = true
	}
	return obs
}
