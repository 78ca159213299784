package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/youtube"
)

type fakeStore struct {
	mu             sync.Mutex
	videos         map[string]*domain.TrackedVideo
	milestones     map[string]*domain.MilestoneConfig
	upcoming       []*domain.GuildUpcomingConfig
	due            []*domain.IntervalConfig
	markedRuns     []string
	advancedTiers  map[string]uint64
	markRunViews   map[string]uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		videos:        make(map[string]*domain.TrackedVideo),
		milestones:    make(map[string]*domain.MilestoneConfig),
		advancedTiers: make(map[string]uint64),
		markRunViews:  make(map[string]uint64),
	}
}

func storeKey(guildID, videoID string) string { return guildID + ":" + videoID }

func (f *fakeStore) ListGuildIDs(context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var guilds []string
	for _, v := range f.videos {
		if _, ok := seen[v.GuildID]; !ok {
			seen[v.GuildID] = struct{}{}
			guilds = append(guilds, v.GuildID)
		}
	}
	return guilds, nil
}

func (f *fakeStore) ListVideos(_ context.Context, guildID string) ([]*domain.TrackedVideo, error) {
	var videos []*domain.TrackedVideo
	for _, v := range f.videos {
		if v.GuildID == guildID {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

func (f *fakeStore) GetVideo(_ context.Context, guildID, videoID string) (*domain.TrackedVideo, error) {
	return f.videos[storeKey(guildID, videoID)], nil
}

func (f *fakeStore) ListDueIntervals(context.Context, time.Time) ([]*domain.IntervalConfig, error) {
	return f.due, nil
}

func (f *fakeStore) MarkIntervalRun(_ context.Context, guildID, videoID string, _ time.Time, views uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedRuns = append(f.markedRuns, storeKey(guildID, videoID))
	f.markRunViews[storeKey(guildID, videoID)] = views
	return nil
}

func (f *fakeStore) GetMilestone(_ context.Context, guildID, videoID string) (*domain.MilestoneConfig, error) {
	return f.milestones[storeKey(guildID, videoID)], nil
}

func (f *fakeStore) AdvanceMilestoneTier(_ context.Context, guildID, videoID string, tier uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advancedTiers[storeKey(guildID, videoID)] = tier
	return nil
}

func (f *fakeStore) ListUpcomingConfigs(context.Context) ([]*domain.GuildUpcomingConfig, error) {
	return f.upcoming, nil
}

type fakeStats struct {
	stats map[string]*domain.VideoStats
	err   error
}

func (f *fakeStats) GetVideoStats(_ context.Context, videoID string) (*domain.VideoStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	stats, ok := f.stats[videoID]
	if !ok {
		return nil, youtube.ErrVideoUnavailable
	}
	return stats, nil
}

func (f *fakeStats) GetVideosStats(_ context.Context, videoIDs []string) (map[string]*domain.VideoStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make(map[string]*domain.VideoStats)
	for _, id := range videoIDs {
		if stats, ok := f.stats[id]; ok {
			result[id] = stats
		}
	}
	return result, nil
}

type sentMessage struct {
	ChannelID string
	Content   string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeMessenger) SendMessage(_ context.Context, channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Content: content})
	return f.err
}

type fakeObservations struct {
	mu   sync.Mutex
	data map[string]*domain.VideoStats
	sets int
}

func newFakeObservations() *fakeObservations {
	return &fakeObservations{data: make(map[string]*domain.VideoStats)}
}

func (f *fakeObservations) GetLastObservation(_ context.Context, videoID string) (*domain.VideoStats, bool) {
	stats, ok := f.data[videoID]
	return stats, ok
}

func (f *fakeObservations) SetLastObservation(_ context.Context, stats *domain.VideoStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[stats.VideoID] = stats
	f.sets++
}

func newTestScheduler(store *fakeStore, stats *fakeStats, chat *fakeMessenger, obs *fakeObservations) *Scheduler {
	return NewScheduler(store, stats, chat, obs, time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTierAndCrossing(t *testing.T) {
	tests := []struct {
		name      string
		lastTier  uint64
		views     uint64
		wantTier  uint64
		wantFired bool
	}{
		{"below first million", 0, 950_000, 0, false},
		{"exactly one million", 0, 1_000_000, 1, true},
		{"multi-tier jump reports final tier only", 0, 2_300_000, 2, true},
		{"same tier does not refire", 2, 2_900_000, 2, false},
		{"views regressed below tier", 3, 2_500_000, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, fired := CrossedTier(tt.lastTier, tt.views)
			if tier != tt.wantTier || fired != tt.wantFired {
				t.Fatalf("CrossedTier(%d, %d) = (%d, %v), want (%d, %v)",
					tt.lastTier, tt.views, tier, fired, tt.wantTier, tt.wantFired)
			}
		})
	}
}

func TestUpcomingDistanceBoundaries(t *testing.T) {
	tests := []struct {
		views         uint64
		wantQualifies bool
		wantRemaining uint64
	}{
		{900_000, true, 100_000},  // 경계 포함
		{899_999, false, 100_001}, // 경계 밖
		{999_999, true, 1},
		{1_000_000, false, 1_000_000}, // 방금 티어 도달, 다음 목표는 2M
		{1_950_000, true, 50_000},
		{0, false, 1_000_000},
	}
	for _, tt := range tests {
		_, remaining, qualifies := UpcomingDistance(tt.views)
		if qualifies != tt.wantQualifies || remaining != tt.wantRemaining {
			t.Errorf("UpcomingDistance(%d) = (remaining=%d, qualifies=%v), want (%d, %v)",
				tt.views, remaining, qualifies, tt.wantRemaining, tt.wantQualifies)
		}
	}
}

func TestEstimateETAMinutes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no previous snapshot floors rate at 10 per hour", func(t *testing.T) {
		current := &domain.VideoStats{VideoID: "v", Views: 999_900, FetchedAt: now}
		eta := EstimateETAMinutes(100, nil, current)
		if eta != 600 {
			t.Fatalf("expected 600 minutes, got %d", eta)
		}
	})

	t.Run("observed growth rate above floor is used", func(t *testing.T) {
		previous := &domain.VideoStats{VideoID: "v", Views: 998_000, FetchedAt: now.Add(-time.Hour)}
		current := &domain.VideoStats{VideoID: "v", Views: 999_000, FetchedAt: now}
		// 1000 views/hour, remaining 500 → 30 minutes
		eta := EstimateETAMinutes(500, previous, current)
		if eta != 30 {
			t.Fatalf("expected 30 minutes, got %d", eta)
		}
	})

	t.Run("observed rate below floor is clamped", func(t *testing.T) {
		previous := &domain.VideoStats{VideoID: "v", Views: 999_998, FetchedAt: now.Add(-time.Hour)}
		current := &domain.VideoStats{VideoID: "v", Views: 999_999, FetchedAt: now}
		// 1 view/hour observed → floored to 10/hour, remaining 1 → 6 minutes
		eta := EstimateETAMinutes(1, previous, current)
		if eta != 6 {
			t.Fatalf("expected 6 minutes, got %d", eta)
		}
	})
}

func TestBuildDigestOrderAndCap(t *testing.T) {
	var entries []*domain.UpcomingEntry
	for i := 0; i < 12; i++ {
		entries = append(entries, &domain.UpcomingEntry{
			VideoID:   fmt.Sprintf("video%02d", i),
			Remaining: uint64(100_000 - i*1000),
		})
	}

	digest := BuildDigest(entries)
	if len(digest) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(digest))
	}
	for i := 1; i < len(digest); i++ {
		if digest[i-1].Remaining > digest[i].Remaining {
			t.Fatalf("digest not ordered closest-first at index %d", i)
		}
	}
	// 가장 가까운 항목(video11, 88,000 남음)이 선두
	if digest[0].VideoID != "video11" {
		t.Fatalf("expected video11 first, got %s", digest[0].VideoID)
	}
}

func TestFixedCheckpointBetween(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	at := func(hour, minute int) time.Time {
		return time.Date(2025, 6, 1, hour, minute, 0, 0, kst)
	}

	tests := []struct {
		name     string
		prev     time.Time
		now      time.Time
		wantFire bool
	}{
		{"crossing noon", at(11, 59), at(12, 0), true},
		{"just after noon", at(12, 0), at(12, 1), false},
		{"crossing 17:00", at(16, 59), at(17, 0), true},
		{"crossing midnight", at(23, 59), at(23, 59).Add(time.Minute), true},
		{"late tick still catches checkpoint", at(11, 59), at(12, 2), true},
		{"mid-afternoon", at(14, 0), at(14, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fired := FixedCheckpointBetween(tt.prev, tt.now)
			if fired != tt.wantFire {
				t.Fatalf("FixedCheckpointBetween(%v, %v) fired=%v, want %v",
					tt.prev, tt.now, fired, tt.wantFire)
			}
		})
	}
}

func TestHandleDueIntervalUnavailableMutatesNothing(t *testing.T) {
	store := newFakeStore()
	store.videos[storeKey("g1", "unavailVid01")] = &domain.TrackedVideo{
		GuildID: "g1", VideoID: "unavailVid01", ChannelID: "chan1",
	}
	stats := &fakeStats{stats: map[string]*domain.VideoStats{}} // 모든 fetch가 unavailable
	chat := &fakeMessenger{}
	obs := newFakeObservations()
	s := newTestScheduler(store, stats, chat, obs)

	lastRun := time.Now().Add(-2 * time.Hour)
	s.handleDueInterval(context.Background(), &domain.IntervalConfig{
		GuildID: "g1", VideoID: "unavailVid01", PeriodMinutes: 60,
		LastRunAt: &lastRun, LastViews: 500_000,
	}, time.Now())

	if len(store.markedRuns) != 0 {
		t.Fatalf("expected no interval run recorded, got %v", store.markedRuns)
	}
	if len(chat.sent) != 0 {
		t.Fatalf("expected no messages, got %d", len(chat.sent))
	}
	if obs.sets != 0 {
		t.Fatalf("expected no observation writes, got %d", obs.sets)
	}
}

func TestHandleDueIntervalPersistsAfterFailedSend(t *testing.T) {
	store := newFakeStore()
	store.videos[storeKey("g1", "dQw4w9WgXcQ")] = &domain.TrackedVideo{
		GuildID: "g1", VideoID: "dQw4w9WgXcQ", Title: "video", ChannelID: "chan1",
	}
	stats := &fakeStats{stats: map[string]*domain.VideoStats{
		"dQw4w9WgXcQ": {VideoID: "dQw4w9WgXcQ", Views: 750_000, Likes: 10_000, FetchedAt: time.Now()},
	}}
	chat := &fakeMessenger{err: fmt.Errorf("channel gone")}
	obs := newFakeObservations()
	s := newTestScheduler(store, stats, chat, obs)

	s.handleDueInterval(context.Background(), &domain.IntervalConfig{
		GuildID: "g1", VideoID: "dQw4w9WgXcQ", PeriodMinutes: 30,
	}, time.Now())

	// 발송 시도 후에는 실패했더라도 last_run/last_views가 전진한다
	if len(store.markedRuns) != 1 {
		t.Fatalf("expected interval run recorded after send attempt, got %v", store.markedRuns)
	}
	if store.markRunViews[storeKey("g1", "dQw4w9WgXcQ")] != 750_000 {
		t.Fatalf("unexpected persisted views: %d", store.markRunViews[storeKey("g1", "dQw4w9WgXcQ")])
	}
}

func TestHandleDueIntervalRejectsNotDueConfig(t *testing.T) {
	store := newFakeStore()
	store.videos[storeKey("g1", "dQw4w9WgXcQ")] = &domain.TrackedVideo{
		GuildID: "g1", VideoID: "dQw4w9WgXcQ", Title: "video", ChannelID: "chan1",
	}
	stats := &fakeStats{stats: map[string]*domain.VideoStats{
		"dQw4w9WgXcQ": {VideoID: "dQw4w9WgXcQ", Views: 750_000, FetchedAt: time.Now()},
	}}
	chat := &fakeMessenger{}
	s := newTestScheduler(store, stats, chat, newFakeObservations())

	now := time.Now()
	halfPeriodAgo := now.Add(-30 * time.Minute)
	s.handleDueInterval(context.Background(), &domain.IntervalConfig{
		GuildID: "g1", VideoID: "dQw4w9WgXcQ", PeriodMinutes: 60,
		LastRunAt: &halfPeriodAgo,
	}, now)

	if len(chat.sent) != 0 {
		t.Fatalf("expected no message for interval that is not yet due, got %d", len(chat.sent))
	}
	if len(store.markedRuns) != 0 {
		t.Fatalf("expected no interval run recorded, got %v", store.markedRuns)
	}

	// 정확히 주기가 경과한 시점은 포함 경계로 실행된다
	exactlyPeriodAgo := now.Add(-60 * time.Minute)
	s.handleDueInterval(context.Background(), &domain.IntervalConfig{
		GuildID: "g1", VideoID: "dQw4w9WgXcQ", PeriodMinutes: 60,
		LastRunAt: &exactlyPeriodAgo,
	}, now)

	if len(store.markedRuns) != 1 {
		t.Fatalf("expected interval run at inclusive boundary, got %v", store.markedRuns)
	}
}

func TestNewSchedulerTickInterval(t *testing.T) {
	store := newFakeStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewScheduler(store, &fakeStats{}, &fakeMessenger{}, newFakeObservations(), 30*time.Second, logger)
	if s.tick != 30*time.Second {
		t.Fatalf("expected configured tick 30s, got %v", s.tick)
	}

	s = NewScheduler(store, &fakeStats{}, &fakeMessenger{}, newFakeObservations(), 0, logger)
	if s.tick != constants.ScheduleConfig.TickInterval {
		t.Fatalf("expected default tick, got %v", s.tick)
	}
}

func TestCheckMilestoneAdvancesWithoutChannel(t *testing.T) {
	store := newFakeStore()
	video := &domain.TrackedVideo{GuildID: "g1", VideoID: "dQw4w9WgXcQ", Title: "video"}
	store.milestones[storeKey("g1", "dQw4w9WgXcQ")] = &domain.MilestoneConfig{
		GuildID: "g1", VideoID: "dQw4w9WgXcQ", LastCrossedTier: 0,
	}
	chat := &fakeMessenger{}
	s := newTestScheduler(store, &fakeStats{}, chat, newFakeObservations())

	s.checkMilestone(context.Background(), video, &domain.VideoStats{
		VideoID: "dQw4w9WgXcQ", Views: 1_200_000,
	})

	if len(chat.sent) != 0 {
		t.Fatalf("expected no message without alert channel, got %d", len(chat.sent))
	}
	if store.advancedTiers[storeKey("g1", "dQw4w9WgXcQ")] != 1 {
		t.Fatalf("expected tier advanced to 1, got %d", store.advancedTiers[storeKey("g1", "dQw4w9WgXcQ")])
	}
}

func TestCheckMilestoneMultiTierJumpAnnouncesOnce(t *testing.T) {
	store := newFakeStore()
	video := &domain.TrackedVideo{GuildID: "g1", VideoID: "dQw4w9WgXcQ", Title: "video"}
	store.milestones[storeKey("g1", "dQw4w9WgXcQ")] = &domain.MilestoneConfig{
		GuildID: "g1", VideoID: "dQw4w9WgXcQ", AlertChannelID: "alerts", LastCrossedTier: 0,
	}
	chat := &fakeMessenger{}
	s := newTestScheduler(store, &fakeStats{}, chat, newFakeObservations())

	// 950K → 2.3M 점프: 최종 티어 2 하나만 발표
	s.checkMilestone(context.Background(), video, &domain.VideoStats{
		VideoID: "dQw4w9WgXcQ", Views: 2_300_000,
	})

	if len(chat.sent) != 1 {
		t.Fatalf("expected exactly one announcement, got %d", len(chat.sent))
	}
	if !strings.Contains(chat.sent[0].Content, "2,000,000") {
		t.Fatalf("expected final tier in message, got %q", chat.sent[0].Content)
	}
	if store.advancedTiers[storeKey("g1", "dQw4w9WgXcQ")] != 2 {
		t.Fatalf("expected tier 2, got %d", store.advancedTiers[storeKey("g1", "dQw4w9WgXcQ")])
	}
}

func TestRunFixedPhaseSendsStatsAndDigest(t *testing.T) {
	store := newFakeStore()
	store.videos[storeKey("g1", "videoAAAAAA1")] = &domain.TrackedVideo{
		GuildID: "g1", VideoID: "videoAAAAAA1", Title: "close to million", ChannelID: "stats-chan",
	}
	store.upcoming = []*domain.GuildUpcomingConfig{
		{GuildID: "g1", ChannelID: "digest-chan"},
	}
	stats := &fakeStats{stats: map[string]*domain.VideoStats{
		"videoAAAAAA1": {VideoID: "videoAAAAAA1", Views: 950_000, Likes: 5_000, FetchedAt: time.Now()},
	}}
	chat := &fakeMessenger{}
	obs := newFakeObservations()
	s := newTestScheduler(store, stats, chat, obs)

	s.runFixedPhase(context.Background(), time.Now())

	var statsSent, digestSent bool
	for _, m := range chat.sent {
		switch m.ChannelID {
		case "stats-chan":
			statsSent = true
		case "digest-chan":
			digestSent = true
			if !strings.Contains(m.Content, "50,000") {
				t.Fatalf("expected remaining count in digest, got %q", m.Content)
			}
		}
	}
	if !statsSent || !digestSent {
		t.Fatalf("expected stats and digest messages, got %+v", chat.sent)
	}
	if obs.sets != 1 {
		t.Fatalf("expected observation snapshot write, got %d", obs.sets)
	}
}
