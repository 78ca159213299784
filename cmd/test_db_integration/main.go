package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/database"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/store"
	"github.com/kapu/youtube-tracker-bot-go/internal/util"
)

// 실제 PostgreSQL에 대해 저장소 SQL 경로를 검증하는 통합 점검 도구.
// 네 컬렉션의 업서트/삭제, 주기 due 경계(포함), 영상 삭제 캐스케이드를 확인한다.
// 점검용 행은 guild_id "itest-guild"로 격리하고 종료 시 정리한다.

const (
	testGuildID = "itest-guild"
	testVideoID = "itestVideo1"
)

func main() {
	logger := util.NewLoggerWithLevel("info")

	log.Println("=== Tracker Store Integration Test ===")
	log.Println()

	postgres, err := database.NewPostgresService(database.PostgresConfig{
		URL:      os.Getenv("DATABASE_URL"),
		Host:     envOrDefault("POSTGRES_HOST", constants.DatabaseDefaults.Host),
		Port:     envOrDefaultInt("POSTGRES_PORT", constants.DatabaseDefaults.Port),
		User:     envOrDefault("POSTGRES_USER", constants.DatabaseDefaults.User),
		Password: envOrDefault("POSTGRES_PASSWORD", constants.DatabaseDefaults.Password),
		Database: envOrDefault("POSTGRES_DB", constants.DatabaseDefaults.Database),
		SSLMode:  envOrDefault("POSTGRES_SSLMODE", "disable"),
	}, logger)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer postgres.Close()
	log.Println("PostgreSQL connected")

	repo, err := store.NewRepository(postgres, logger)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}
	log.Println("Repository created (schema migrated)")

	ctx := context.Background()
	cleanup(ctx, repo)
	defer cleanup(ctx, repo)

	// Test 1: tracked video upsert + re-register updates title
	video := &domain.TrackedVideo{
		GuildID: testGuildID, VideoID: testVideoID, Title: "first title", ChannelID: "chan-1",
	}
	if err := repo.UpsertVideo(ctx, video); err != nil {
		log.Fatalf("UpsertVideo failed: %v", err)
	}
	video.Title = "second title"
	if err := repo.UpsertVideo(ctx, video); err != nil {
		log.Fatalf("UpsertVideo (re-register) failed: %v", err)
	}
	got, err := repo.GetVideo(ctx, testGuildID, testVideoID)
	if err != nil || got == nil {
		log.Fatalf("GetVideo failed: %v (video=%v)", err, got)
	}
	if got.Title != "second title" {
		log.Fatalf("Upsert did not replace title: %q", got.Title)
	}
	log.Println("Tracked video upsert: OK")

	// Test 2: new interval row starts due (last_run_at NULL)
	if err := repo.SetInterval(ctx, testGuildID, testVideoID, 60); err != nil {
		log.Fatalf("SetInterval failed: %v", err)
	}
	now := time.Now().UTC()
	if !containsPair(mustListDue(ctx, repo, now)) {
		log.Fatal("New interval with NULL last_run_at should be due immediately")
	}
	log.Println("Interval NULL last_run due: OK")

	// Test 3: inclusive due boundary — due at exactly period elapsed, not one minute before
	if err := repo.MarkIntervalRun(ctx, testGuildID, testVideoID, now.Add(-59*time.Minute), 100); err != nil {
		log.Fatalf("MarkIntervalRun failed: %v", err)
	}
	if containsPair(mustListDue(ctx, repo, now)) {
		log.Fatal("Interval 1 minute short of period must not be due")
	}
	if err := repo.MarkIntervalRun(ctx, testGuildID, testVideoID, now.Add(-60*time.Minute), 100); err != nil {
		log.Fatalf("MarkIntervalRun failed: %v", err)
	}
	if !containsPair(mustListDue(ctx, repo, now)) {
		log.Fatal("Interval at exactly period elapsed must be due (inclusive boundary)")
	}
	log.Println("Interval due boundary (inclusive): OK")

	// Test 4: interval re-upsert keeps last_run history, disable keeps the row
	if err := repo.SetInterval(ctx, testGuildID, testVideoID, 120); err != nil {
		log.Fatalf("SetInterval (update) failed: %v", err)
	}
	intervals, err := repo.ListIntervals(ctx, testGuildID)
	if err != nil || len(intervals) != 1 {
		log.Fatalf("ListIntervals failed: %v (rows=%d)", err, len(intervals))
	}
	if intervals[0].PeriodMinutes != 120 || intervals[0].LastRunAt == nil {
		log.Fatalf("Interval update must keep last_run history: %+v", intervals[0])
	}
	if ok, err := repo.DisableInterval(ctx, testGuildID, testVideoID); err != nil || !ok {
		log.Fatalf("DisableInterval failed: %v (ok=%v)", err, ok)
	}
	log.Println("Interval upsert/disable history: OK")

	// Test 5: milestone re-upsert preserves last_crossed_tier, GREATEST blocks regression
	if err := repo.UpsertMilestone(ctx, &domain.MilestoneConfig{
		GuildID: testGuildID, VideoID: testVideoID, AlertChannelID: "alerts", LastCrossedTier: 2,
	}); err != nil {
		log.Fatalf("UpsertMilestone failed: %v", err)
	}
	if err := repo.UpsertMilestone(ctx, &domain.MilestoneConfig{
		GuildID: testGuildID, VideoID: testVideoID, AlertChannelID: "alerts-2", LastCrossedTier: 0,
	}); err != nil {
		log.Fatalf("UpsertMilestone (re-register) failed: %v", err)
	}
	ms, err := repo.GetMilestone(ctx, testGuildID, testVideoID)
	if err != nil || ms == nil {
		log.Fatalf("GetMilestone failed: %v", err)
	}
	if ms.LastCrossedTier != 2 || ms.AlertChannelID != "alerts-2" {
		log.Fatalf("Milestone re-upsert must keep tier and update channel: %+v", ms)
	}
	if err := repo.AdvanceMilestoneTier(ctx, testGuildID, testVideoID, 1); err != nil {
		log.Fatalf("AdvanceMilestoneTier failed: %v", err)
	}
	ms, _ = repo.GetMilestone(ctx, testGuildID, testVideoID)
	if ms.LastCrossedTier != 2 {
		log.Fatalf("Tier must not regress, got %d", ms.LastCrossedTier)
	}
	if err := repo.AdvanceMilestoneTier(ctx, testGuildID, testVideoID, 3); err != nil {
		log.Fatalf("AdvanceMilestoneTier failed: %v", err)
	}
	ms, _ = repo.GetMilestone(ctx, testGuildID, testVideoID)
	if ms.LastCrossedTier != 3 {
		log.Fatalf("Tier must advance to 3, got %d", ms.LastCrossedTier)
	}
	log.Println("Milestone tier preservation: OK")

	// Test 6: per-guild upcoming config upsert and removal
	if err := repo.UpsertUpcomingConfig(ctx, &domain.GuildUpcomingConfig{
		GuildID: testGuildID, ChannelID: "upcoming-chan",
	}); err != nil {
		log.Fatalf("UpsertUpcomingConfig failed: %v", err)
	}
	uc, err := repo.GetUpcomingConfig(ctx, testGuildID)
	if err != nil || uc == nil || uc.ChannelID != "upcoming-chan" {
		log.Fatalf("GetUpcomingConfig failed: %v (%+v)", err, uc)
	}
	if ok, err := repo.RemoveUpcomingConfig(ctx, testGuildID); err != nil || !ok {
		log.Fatalf("RemoveUpcomingConfig failed: %v (ok=%v)", err, ok)
	}
	log.Println("Upcoming config upsert/remove: OK")

	// Test 7: video removal cascades to interval and milestone rows
	if err := repo.SetInterval(ctx, testGuildID, testVideoID, 30); err != nil {
		log.Fatalf("SetInterval failed: %v", err)
	}
	removed, err := repo.RemoveVideo(ctx, testGuildID, testVideoID)
	if err != nil || !removed {
		log.Fatalf("RemoveVideo failed: %v (removed=%v)", err, removed)
	}
	if got, _ := repo.GetVideo(ctx, testGuildID, testVideoID); got != nil {
		log.Fatal("Video row must be gone after removal")
	}
	if intervals, _ := repo.ListIntervals(ctx, testGuildID); len(intervals) != 0 {
		log.Fatalf("Interval rows must cascade, got %d", len(intervals))
	}
	if ms, _ := repo.GetMilestone(ctx, testGuildID, testVideoID); ms != nil {
		log.Fatal("Milestone row must cascade")
	}
	log.Println("Remove video cascade: OK")

	log.Println()
	log.Println("=== ALL TESTS PASSED ===")
}

func mustListDue(ctx context.Context, repo *store.Repository, now time.Time) []*domain.IntervalConfig {
	due, err := repo.ListDueIntervals(ctx, now)
	if err != nil {
		log.Fatalf("ListDueIntervals failed: %v", err)
	}
	return due
}

func containsPair(due []*domain.IntervalConfig) bool {
	for _, cfg := range due {
		if cfg.GuildID == testGuildID && cfg.VideoID == testVideoID {
			return true
		}
	}
	return false
}

func cleanup(ctx context.Context, repo *store.Repository) {
	_, _ = repo.RemoveVideo(ctx, testGuildID, testVideoID)
	_, _ = repo.RemoveUpcomingConfig(ctx, testGuildID)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s (%s), using default %d", key, value, fallback)
		return fallback
	}
	return parsed
}
