package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
)

// UpsertMilestone: 마일스톤 추적을 등록한다. 신규 행은 현재 조회수 기준
// 티어로 시드해 과거 백만 단위에 대한 소급 알림을 막는다.
// 기존 행은 알림 채널만 갱신하고 티어 이력은 유지한다.
func (r *Repository) UpsertMilestone(ctx context.Context, cfg *domain.MilestoneConfig) error {
	query := `
		INSERT INTO video_milestones (guild_id, video_id, alert_channel_id, ping_text, last_crossed_tier)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, video_id) DO UPDATE
		SET alert_channel_id = EXCLUDED.alert_channel_id,
		    ping_text = EXCLUDED.ping_text
	`

	if err := r.execRetry(ctx, "upsert_milestone", pairKey(cfg.GuildID, cfg.VideoID), query,
		cfg.GuildID, cfg.VideoID, cfg.AlertChannelID, cfg.PingText, cfg.LastCrossedTier); err != nil {
		return err
	}

	r.logger.Debug("Milestone config saved",
		slog.String("guild", cfg.GuildID),
		slog.String("video", cfg.VideoID),
		slog.Uint64("tier", cfg.LastCrossedTier),
	)
	return nil
}

// RemoveMilestone: 마일스톤 추적을 해제한다. 행이 있었는지 여부를 반환한다.
func (r *Repository) RemoveMilestone(ctx context.Context, guildID, videoID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM video_milestones WHERE guild_id = $1 AND video_id = $2`, guildID, videoID)
	if err != nil {
		return false, fmt.Errorf("failed to remove milestone: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetMilestone: 단일 마일스톤 설정을 조회한다. 없으면 (nil, nil)을 반환한다.
func (r *Repository) GetMilestone(ctx context.Context, guildID, videoID string) (*domain.MilestoneConfig, error) {
	query := `
		SELECT guild_id, video_id, alert_channel_id, ping_text, last_crossed_tier
		FROM video_milestones
		WHERE guild_id = $1 AND video_id = $2
	`

	var cfg domain.MilestoneConfig
	err := r.db.QueryRowContext(ctx, query, guildID, videoID).Scan(
		&cfg.GuildID, &cfg.VideoID, &cfg.AlertChannelID, &cfg.PingText, &cfg.LastCrossedTier,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get milestone: %w", err)
	}
	return &cfg, nil
}

// ListMilestones: 길드의 마일스톤 설정을 영상 ID 순서로 조회한다.
func (r *Repository) ListMilestones(ctx context.Context, guildID string) ([]*domain.MilestoneConfig, error) {
	query := `
		SELECT guild_id, video_id, alert_channel_id, ping_text, last_crossed_tier
		FROM video_milestones
		WHERE guild_id = $1
		ORDER BY video_id
	`

	rows, err := r.db.QueryContext(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	defer rows.Close()

	var configs []*domain.MilestoneConfig
	for rows.Next() {
		var cfg domain.MilestoneConfig
		if err := rows.Scan(&cfg.GuildID, &cfg.VideoID, &cfg.AlertChannelID, &cfg.PingText, &cfg.LastCrossedTier); err != nil {
			r.logger.Warn("Failed to scan milestone row", slog.Any("error", err))
			continue
		}
		configs = append(configs, &cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return configs, nil
}

// AdvanceMilestoneTier: 도달 티어를 전진시킨다. GREATEST로 역행을 막아
// 동시 실행에서도 티어가 뒤로 가지 않는다.
func (r *Repository) AdvanceMilestoneTier(ctx context.Context, guildID, videoID string, tier uint64) error {
	query := `
		UPDATE video_milestones
		SET last_crossed_tier = GREATEST(last_crossed_tier, $3)
		WHERE guild_id = $1 AND video_id = $2
	`

	return r.execRetry(ctx, "advance_milestone_tier", pairKey(guildID, videoID), query,
		guildID, videoID, tier)
}
