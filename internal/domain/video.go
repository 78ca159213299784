package domain

import "time"

// TrackedVideo: 길드(서버)별로 추적 중인 YouTube 영상.
// (GuildID, VideoID) 쌍이 복합 키이며 모든 부가 설정의 루트 엔티티다.
type TrackedVideo struct {
	GuildID   string `json:"guild_id"`
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	ChannelID string `json:"channel_id"` // 고정 스케줄/강제 체크 알림이 전송되는 기본 채널
}

// IntervalConfig: 영상별 커스텀 체크 주기 설정.
// PeriodMinutes가 0이면 비활성 상태이며 이력(LastRunAt, LastViews)은 유지된다.
type IntervalConfig struct {
	GuildID       string     `json:"guild_id"`
	VideoID       string     `json:"video_id"`
	PeriodMinutes int        `json:"period_minutes"`
	LastRunAt     *time.Time `json:"last_run_at"`
	LastViews     uint64     `json:"last_views"`
}

// Active: 주기 체크 대상인지 여부를 반환한다.
func (c *IntervalConfig) Active() bool {
	return c != nil && c.PeriodMinutes > 0
}

// IsDue: 마지막 실행 이후 설정 주기가 경과했는지 판정한다.
// 한 번도 실행된 적 없으면 즉시 due이며, 경계 비교는 포함(>=)이다.
func (c *IntervalConfig) IsDue(now time.Time) bool {
	if !c.Active() {
		return false
	}
	if c.LastRunAt == nil {
		return true
	}
	return !now.Before(c.LastRunAt.Add(time.Duration(c.PeriodMinutes) * time.Minute))
}

// VideoStats: StatsFetcher가 반환하는 단일 영상의 현재 통계.
type VideoStats struct {
	VideoID   string    `json:"video_id"`
	Title     string    `json:"title"`
	Views     uint64    `json:"views"`
	Likes     uint64    `json:"likes"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Observation: 한 번의 fetch-and-compare 사이클이 만들어내는 관측 스냅샷.
// 평가 패스 내부에서만 존재하는 임시 값이다.
type Observation struct {
	GuildID       string
	VideoID       string
	Title         string
	CurrentViews  uint64
	CurrentLikes  uint64
	PreviousViews uint64
	HasPrevious   bool
}

// ViewDelta: 이전 관측 대비 조회수 증가량을 반환한다. 이전 관측이 없으면 0.
func (o *Observation) ViewDelta() int64 {
	if !o.HasPrevious {
		return 0
	}
	return int64(o.CurrentViews) - int64(o.PreviousViews)
}
