package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
)

// SetInterval: 영상의 커스텀 체크 주기를 설정한다.
// 신규 행은 last_run_at NULL로 시작해 다음 틱에 즉시 첫 실행된다.
// 기존 행은 주기만 바꾸고 last_run_at/last_views 이력은 유지한다.
func (r *Repository) SetInterval(ctx context.Context, guildID, videoID string, periodMinutes int) error {
	query := `
		INSERT INTO video_intervals (guild_id, video_id, period_minutes, last_run_at, last_views)
		VALUES ($1, $2, $3, NULL, 0)
		ON CONFLICT (guild_id, video_id) DO UPDATE
		SET period_minutes = EXCLUDED.period_minutes
	`

	return r.execRetry(ctx, "set_interval", pairKey(guildID, videoID), query,
		guildID, videoID, periodMinutes)
}

// DisableInterval: 주기를 0으로 내려 비활성화한다. 이력(last_run_at/last_views)은 보존한다.
// 활성 행이 있었는지 여부를 반환한다.
func (r *Repository) DisableInterval(ctx context.Context, guildID, videoID string) (bool, error) {
	query := `
		UPDATE video_intervals
		SET period_minutes = 0
		WHERE guild_id = $1 AND video_id = $2 AND period_minutes > 0
	`

	result, err := r.db.ExecContext(ctx, query, guildID, videoID)
	if err != nil {
		return false, fmt.Errorf("failed to disable interval: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListIntervals: 길드의 활성 주기 설정을 영상 ID 순서로 조회한다.
func (r *Repository) ListIntervals(ctx context.Context, guildID string) ([]*domain.IntervalConfig, error) {
	query := `
		SELECT guild_id, video_id, period_minutes, last_run_at, last_views
		FROM video_intervals
		WHERE guild_id = $1 AND period_minutes > 0
		ORDER BY video_id
	`

	rows, err := r.db.QueryContext(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list intervals: %w", err)
	}
	defer rows.Close()

	return r.scanIntervals(rows)
}

// ListDueIntervals: 지금 실행해야 할 활성 주기 설정을 전 길드에서 조회한다.
// last_run_at이 NULL이거나 (last_run_at + 주기) <= now 인 행이 대상이다. (경계 포함)
func (r *Repository) ListDueIntervals(ctx context.Context, now time.Time) ([]*domain.IntervalConfig, error) {
	query := `
		SELECT i.guild_id, i.video_id, i.period_minutes, i.last_run_at, i.last_views
		FROM video_intervals i
		JOIN tracked_videos v ON v.guild_id = i.guild_id AND v.video_id = i.video_id
		WHERE i.period_minutes > 0
		  AND (i.last_run_at IS NULL
		       OR i.last_run_at + i.period_minutes * interval '1 minute' <= $1)
		ORDER BY i.guild_id, i.video_id
	`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due intervals: %w", err)
	}
	defer rows.Close()

	return r.scanIntervals(rows)
}

// MarkIntervalRun: 주기 체크 실행을 기록한다. 알림 발송 시도 후에만 호출해야
// at-least-once 전달이 보장된다.
func (r *Repository) MarkIntervalRun(ctx context.Context, guildID, videoID string, runAt time.Time, views uint64) error {
	query := `
		UPDATE video_intervals
		SET last_run_at = $3, last_views = $4
		WHERE guild_id = $1 AND video_id = $2
	`

	if err := r.execRetry(ctx, "mark_interval_run", pairKey(guildID, videoID), query,
		guildID, videoID, runAt, views); err != nil {
		return err
	}

	r.logger.Debug("Interval run recorded",
		slog.String("guild", guildID),
		slog.String("video", videoID),
		slog.Uint64("views", views),
	)
	return nil
}

func (r *Repository) scanIntervals(rows *sql.Rows) ([]*domain.IntervalConfig, error) {
	var configs []*domain.IntervalConfig
	for rows.Next() {
		var cfg domain.IntervalConfig
		if err := rows.Scan(&cfg.GuildID, &cfg.VideoID, &cfg.PeriodMinutes, &cfg.LastRunAt, &cfg.LastViews); err != nil {
			r.logger.Warn("Failed to scan interval row", slog.Any("error", err))
			continue
		}
		configs = append(configs, &cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return configs, nil
}
