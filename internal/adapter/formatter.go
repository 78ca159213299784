// Package adapter: 봇의 응답 메시지를 생성하는 포맷터 계층.
// 디스코드 마크다운을 사용하며 사용자 노출 문구는 여기서만 만든다.
package adapter

import (
	"fmt"
	"strings"

	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
	"github.com/kapu/youtube-tracker-bot-go/internal/util"
)

func videoLabel(title, videoID string) string {
	if strings.TrimSpace(title) == "" {
		return videoID
	}
	return title
}

func formatDelta(delta int64) string {
	if delta >= 0 {
		return fmt.Sprintf(" (+%s)", util.FormatCount(uint64(delta)))
	}
	return fmt.Sprintf(" (-%s)", util.FormatCount(uint64(-delta)))
}

// FormatETA: 도달 예상 시간을 사람이 읽을 문구로 변환한다.
// 1시간 미만은 분 단위, 이상은 시간 단위(내림)로 표기한다.
func FormatETA(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("약 %d분 후", minutes)
	}
	return fmt.Sprintf("약 %d시간 후", minutes/60)
}

// FormatStatsMessage: 고정 체크포인트의 영상 통계 메시지를 생성한다.
func FormatStatsMessage(obs *domain.Observation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 **%s**\n", videoLabel(obs.Title, obs.VideoID))
	fmt.Fprintf(&b, "조회수: %s회", util.FormatCount(obs.CurrentViews))
	if obs.HasPrevious {
		b.WriteString(formatDelta(obs.ViewDelta()))
	}
	fmt.Fprintf(&b, "\n좋아요: %s개\n", util.FormatCount(obs.CurrentLikes))
	fmt.Fprintf(&b, "🔗 %s", util.VideoURL(obs.VideoID))

	return b.String()
}

// FormatIntervalUpdate: 커스텀 주기 체크 메시지를 생성한다.
func FormatIntervalUpdate(obs *domain.Observation, periodMinutes int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "⏱️ **%s** (%d분 주기)\n", videoLabel(obs.Title, obs.VideoID), periodMinutes)
	fmt.Fprintf(&b, "조회수: %s회", util.FormatCount(obs.CurrentViews))
	if obs.HasPrevious {
		b.WriteString(formatDelta(obs.ViewDelta()))
	}
	fmt.Fprintf(&b, "\n좋아요: %s개\n", util.FormatCount(obs.CurrentLikes))
	fmt.Fprintf(&b, "🔗 %s", util.VideoURL(obs.VideoID))

	return b.String()
}

// FormatMilestoneReached: 백만 단위 마일스톤 달성 메시지를 생성한다.
func FormatMilestoneReached(title, videoID string, tier, views uint64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🎉 **%s**\n", videoLabel(title, videoID))
	fmt.Fprintf(&b, "**%d,000,000회** 돌파! (현재 %s회)\n", tier, util.FormatCount(views))
	fmt.Fprintf(&b, "🔗 %s", util.VideoURL(videoID))

	return b.String()
}

// FormatUpcomingDigest: 백만 목표 임박 영상 다이제스트 메시지를 생성한다.
func FormatUpcomingDigest(entries []*domain.UpcomingEntry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🎯 **백만 돌파 임박 영상** (%d건)\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, videoLabel(e.Title, e.VideoID))
		fmt.Fprintf(&b, "   %s회 → %s회까지 %s회 남음 · %s\n",
			util.FormatCount(e.CurrentViews),
			util.FormatCount(e.NextTarget),
			util.FormatCount(e.Remaining),
			FormatETA(e.ETAMinutes))
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatVideoList: 길드의 추적 영상 목록 메시지를 생성한다.
func FormatVideoList(videos []*domain.TrackedVideo) string {
	if len(videos) == 0 {
		return "📋 추적 중인 영상이 없습니다."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 **추적 중인 영상** (%d건)\n", len(videos))
	for i, v := range videos {
		fmt.Fprintf(&b, "%d. %s (`%s`)", i+1, videoLabel(v.Title, v.VideoID), v.VideoID)
		if v.ChannelID != "" {
			fmt.Fprintf(&b, " → <#%s>", v.ChannelID)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatIntervalList: 길드의 활성 주기 설정 목록 메시지를 생성한다.
func FormatIntervalList(configs []*domain.IntervalConfig, titles map[string]string) string {
	if len(configs) == 0 {
		return "⏱️ 설정된 체크 주기가 없습니다."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⏱️ **커스텀 체크 주기** (%d건)\n", len(configs))
	for i, c := range configs {
		fmt.Fprintf(&b, "%d. %s — %d분마다", i+1, videoLabel(titles[c.VideoID], c.VideoID), c.PeriodMinutes)
		if c.LastRunAt != nil {
			fmt.Fprintf(&b, " (마지막 체크: %s)", util.FormatKST(*c.LastRunAt, "01/02 15:04"))
		} else {
			b.WriteString(" (아직 체크 전)")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatReachedMilestones: 길드에서 달성한 마일스톤 목록 메시지를 생성한다.
func FormatReachedMilestones(milestones []*domain.ReachedMilestone) string {
	if len(milestones) == 0 {
		return "🏆 아직 달성한 마일스톤이 없습니다."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 **달성 마일스톤** (%d건)\n", len(milestones))
	for i, m := range milestones {
		fmt.Fprintf(&b, "%d. %s — %d,000,000회 돌파\n",
			i+1, videoLabel(m.Title, m.VideoID), m.Tier)
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatGuildStats: 길드의 추적 현황 요약 메시지를 생성한다.
func FormatGuildStats(stats *domain.GuildStats) string {
	var b strings.Builder

	b.WriteString("📈 **서버 추적 현황**\n")
	fmt.Fprintf(&b, "추적 영상: %d건\n", stats.Videos)
	fmt.Fprintf(&b, "활성 주기: %d건\n", stats.ActiveIntervals)
	fmt.Fprintf(&b, "마일스톤 추적: %d건", stats.Milestones)

	return b.String()
}

// ErrorMessage: 에러 메시지를 사용자 친화적인 포맷으로 변환한다.
func ErrorMessage(message string) string {
	return "❌ " + message
}

// ConfirmMessage: 작업 완료 확인 메시지를 생성한다.
func ConfirmMessage(message string) string {
	return "✅ " + message
}
