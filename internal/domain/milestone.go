package domain

// MilestoneConfig: 영상별 마일스톤(100만 조회수 티어) 알림 설정.
// LastCrossedTier는 단조 증가하며, 알림 발송 시도 이후에만 전진한다.
type MilestoneConfig struct {
	GuildID         string `json:"guild_id"`
	VideoID         string `json:"video_id"`
	AlertChannelID  string `json:"alert_channel_id"`
	PingText        string `json:"ping_text"`
	LastCrossedTier uint64 `json:"last_crossed_tier"`
}

// Notifiable: 알림을 발송할 채널이 설정되어 있는지 여부.
// 채널 미설정 상태에서도 티어는 전진한다 (나중에 채널을 설정해도 소급 발송 없음).
func (m *MilestoneConfig) Notifiable() bool {
	return m != nil && m.AlertChannelID != ""
}

// GuildUpcomingConfig: 길드당 하나뿐인 업커밍 다이제스트 알림 설정.
type GuildUpcomingConfig struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	PingText  string `json:"ping_text"`
}

// UpcomingEntry: 다음 티어 도달이 임박한 영상 한 건의 다이제스트 항목.
type UpcomingEntry struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	CurrentViews uint64 `json:"current_views"`
	NextTarget   uint64 `json:"next_target"`
	Remaining    uint64 `json:"remaining"`
	ETAMinutes   int    `json:"eta_minutes"`
}

// ReachedMilestone: 길드 조회 명령 응답용, 영상별 마지막 달성 티어.
type ReachedMilestone struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Tier    uint64 `json:"tier"`
	Views   uint64 `json:"views"` // 티어 경계값 (tier * 1,000,000)
}

// GuildStats: 길드 요약 통계 (서버 체크 명령 응답용).
type GuildStats struct {
	GuildID         string `json:"guild_id"`
	Videos          int    `json:"videos"`
	ActiveIntervals int    `json:"active_intervals"`
	Milestones      int    `json:"milestones"`
}
