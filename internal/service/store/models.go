package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// trackedVideoModel: tracked_videos 테이블 스키마. (GuildID, VideoID) 복합 키.
type trackedVideoModel struct {
	GuildID   string `gorm:"column:guild_id;primaryKey;size:32"`
	VideoID   string `gorm:"column:video_id;primaryKey;size:16"`
	Title     string `gorm:"column:title;size:256"`
	ChannelID string `gorm:"column:channel_id;size:32"`
}

func (trackedVideoModel) TableName() string { return "tracked_videos" }

// videoIntervalModel: video_intervals 테이블 스키마.
// period_minutes = 0 은 비활성 상태를 뜻하며 이력 컬럼은 유지된다.
type videoIntervalModel struct {
	GuildID       string     `gorm:"column:guild_id;primaryKey;size:32"`
	VideoID       string     `gorm:"column:video_id;primaryKey;size:16"`
	PeriodMinutes int        `gorm:"column:period_minutes;not null;default:0"`
	LastRunAt     *time.Time `gorm:"column:last_run_at"`
	LastViews     uint64     `gorm:"column:last_views;not null;default:0"`
}

func (videoIntervalModel) TableName() string { return "video_intervals" }

// videoMilestoneModel: video_milestones 테이블 스키마.
type videoMilestoneModel struct {
	GuildID         string `gorm:"column:guild_id;primaryKey;size:32"`
	VideoID         string `gorm:"column:video_id;primaryKey;size:16"`
	AlertChannelID  string `gorm:"column:alert_channel_id;size:32"`
	PingText        string `gorm:"column:ping_text;size:256"`
	LastCrossedTier uint64 `gorm:"column:last_crossed_tier;not null;default:0"`
}

func (videoMilestoneModel) TableName() string { return "video_milestones" }

// guildUpcomingModel: guild_upcoming_settings 테이블 스키마. 길드당 한 행.
type guildUpcomingModel struct {
	GuildID   string `gorm:"column:guild_id;primaryKey;size:32"`
	ChannelID string `gorm:"column:channel_id;size:32"`
	PingText  string `gorm:"column:ping_text;size:256"`
}

func (guildUpcomingModel) TableName() string { return "guild_upcoming_settings" }

// Migrate: 트래커가 사용하는 네 개 테이블을 생성/갱신한다.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&trackedVideoModel{},
		&videoIntervalModel{},
		&videoMilestoneModel{},
		&guildUpcomingModel{},
	); err != nil {
		return fmt.Errorf("store migration failed: %w", err)
	}
	return nil
}
