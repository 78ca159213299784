package adapter

import (
	"strings"
	"testing"
	"time"

	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
)

func TestFormatETA(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{1, "약 1분 후"},
		{59, "약 59분 후"},
		{60, "약 1시간 후"},
		{90, "약 1시간 후"},
		{1440, "약 24시간 후"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.minutes); got != tt.want {
			t.Errorf("FormatETA(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestFormatStatsMessageWithDelta(t *testing.T) {
	obs := &domain.Observation{
		VideoID:       "dQw4w9WgXcQ",
		Title:         "테스트 영상",
		CurrentViews:  1_234_567,
		CurrentLikes:  45_000,
		PreviousViews: 1_200_000,
		HasPrevious:   true,
	}

	msg := FormatStatsMessage(obs)
	for _, want := range []string{
		"📊 **테스트 영상**",
		"조회수: 1,234,567회 (+34,567)",
		"좋아요: 45,000개",
		"https://youtube.com/watch?v=dQw4w9WgXcQ",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatStatsMessageWithoutPrevious(t *testing.T) {
	obs := &domain.Observation{
		VideoID:      "dQw4w9WgXcQ",
		CurrentViews: 500,
	}

	msg := FormatStatsMessage(obs)
	if strings.Contains(msg, "(+") {
		t.Errorf("first observation should not show delta:\n%s", msg)
	}
	// 제목이 비면 영상 ID로 대체한다
	if !strings.Contains(msg, "**dQw4w9WgXcQ**") {
		t.Errorf("expected video ID fallback label:\n%s", msg)
	}
}

func TestFormatIntervalUpdateIncludesPeriod(t *testing.T) {
	obs := &domain.Observation{
		VideoID:      "dQw4w9WgXcQ",
		Title:        "주기 체크",
		CurrentViews: 100_000,
	}

	msg := FormatIntervalUpdate(obs, 30)
	if !strings.Contains(msg, "(30분 주기)") {
		t.Errorf("message missing period:\n%s", msg)
	}
}

func TestFormatMilestoneReached(t *testing.T) {
	msg := FormatMilestoneReached("밀리언 달성곡", "dQw4w9WgXcQ", 2, 2_000_153)
	for _, want := range []string{
		"🎉 **밀리언 달성곡**",
		"**2,000,000회** 돌파!",
		"현재 2,000,153회",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatUpcomingDigest(t *testing.T) {
	entries := []*domain.UpcomingEntry{
		{VideoID: "vidAAAAAAA1", Title: "첫째", CurrentViews: 980_000, NextTarget: 1_000_000, Remaining: 20_000, ETAMinutes: 45},
		{VideoID: "vidBBBBBBB2", Title: "둘째", CurrentViews: 2_950_000, NextTarget: 3_000_000, Remaining: 50_000, ETAMinutes: 300},
	}

	msg := FormatUpcomingDigest(entries)
	for _, want := range []string{
		"🎯 **백만 돌파 임박 영상** (2건)",
		"1. **첫째**",
		"20,000회 남음 · 약 45분 후",
		"2. **둘째**",
		"50,000회 남음 · 약 5시간 후",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("digest missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatVideoList(t *testing.T) {
	if got := FormatVideoList(nil); !strings.Contains(got, "없습니다") {
		t.Errorf("empty list message unexpected: %q", got)
	}

	videos := []*domain.TrackedVideo{
		{VideoID: "vidAAAAAAA1", Title: "채널 알림", ChannelID: "1234"},
		{VideoID: "vidBBBBBBB2"},
	}
	msg := FormatVideoList(videos)
	for _, want := range []string{
		"(2건)",
		"1. 채널 알림 (`vidAAAAAAA1`) → <#1234>",
		"2. vidBBBBBBB2 (`vidBBBBBBB2`)",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("list missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatIntervalList(t *testing.T) {
	lastRun := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	configs := []*domain.IntervalConfig{
		{VideoID: "vidAAAAAAA1", PeriodMinutes: 30, LastRunAt: &lastRun},
		{VideoID: "vidBBBBBBB2", PeriodMinutes: 120},
	}
	titles := map[string]string{"vidAAAAAAA1": "자주 보는 영상"}

	msg := FormatIntervalList(configs, titles)
	for _, want := range []string{
		"1. 자주 보는 영상 — 30분마다 (마지막 체크:",
		"2. vidBBBBBBB2 — 120분마다 (아직 체크 전)",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("interval list missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatReachedMilestones(t *testing.T) {
	milestones := []*domain.ReachedMilestone{
		{VideoID: "vidAAAAAAA1", Title: "돌파곡", Tier: 5},
	}
	msg := FormatReachedMilestones(milestones)
	if !strings.Contains(msg, "돌파곡 — 5,000,000회 돌파") {
		t.Errorf("unexpected milestone list:\n%s", msg)
	}
}

func TestFormatGuildStats(t *testing.T) {
	msg := FormatGuildStats(&domain.GuildStats{Videos: 7, ActiveIntervals: 2, Milestones: 3})
	for _, want := range []string{"추적 영상: 7건", "활성 주기: 2건", "마일스톤 추적: 3건"} {
		if !strings.Contains(msg, want) {
			t.Errorf("stats missing %q:\n%s", want, msg)
		}
	}
}
