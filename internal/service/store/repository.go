// Package store: 추적 영상, 주기 설정, 마일스톤 설정, 업커밍 설정 네 컬렉션의
// 영속 저장소다. 핫패스 쿼리는 raw SQL, 스키마 관리는 GORM AutoMigrate를 사용한다.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v4"

	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
	"github.com/kapu/youtube-tracker-bot-go/internal/service/database"
	"github.com/kapu/youtube-tracker-bot-go/pkg/errors"
)

// Repository: 네 컬렉션에 대한 복합 키 upsert/삭제/조회를 제공하는 저장소.
// 쓰기 작업은 제한 횟수만큼 재시도한 뒤 StoreError로 보고한다.
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository: 새로운 Repository 인스턴스를 생성하고 스키마를 마이그레이션한다.
func NewRepository(postgres *database.PostgresService, logger *slog.Logger) (*Repository, error) {
	if err := Migrate(postgres.GetGormDB()); err != nil {
		return nil, err
	}
	return &Repository{
		db:     postgres.GetDB(),
		logger: logger,
	}, nil
}

// execRetry: 쓰기 쿼리를 일정 간격으로 재시도한다.
// 일시적 커넥션 오류에 대비한 것으로, 최종 실패 시 StoreError를 반환한다.
func (r *Repository) execRetry(ctx context.Context, operation, key, query string, args ...any) error {
	bo := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(constants.StoreRetryConfig.Delay),
			constants.StoreRetryConfig.MaxRetries,
		),
		ctx,
	)

	err := backoff.Retry(func() error {
		_, execErr := r.db.ExecContext(ctx, query, args...)
		return execErr
	}, bo)
	if err != nil {
		return errors.NewStoreError(operation, key, err)
	}
	return nil
}

func pairKey(guildID, videoID string) string {
	return guildID + ":" + videoID
}

// UpsertVideo: 추적 영상을 등록하거나 제목/채널을 갱신한다. (full-row replace)
func (r *Repository) UpsertVideo(ctx context.Context, video *domain.TrackedVideo) error {
	query := `
		INSERT INTO tracked_videos (guild_id, video_id, title, channel_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id, video_id) DO UPDATE
		SET title = EXCLUDED.title,
		    channel_id = EXCLUDED.channel_id
	`

	if err := r.execRetry(ctx, "upsert_video", pairKey(video.GuildID, video.VideoID), query,
		video.GuildID, video.VideoID, video.Title, video.ChannelID); err != nil {
		return err
	}

	r.logger.Debug("Tracked video saved",
		slog.String("guild", video.GuildID),
		slog.String("video", video.VideoID),
	)
	return nil
}

// EnsureVideo: 추적 영상이 없으면 스텁 행을 생성한다. 이미 있으면 아무것도 하지 않는다.
// 마일스톤/주기 설정이 명시적 등록보다 먼저 들어온 경우의 "ensure exists" 처리다.
func (r *Repository) EnsureVideo(ctx context.Context, video *domain.TrackedVideo) error {
	query := `
		INSERT INTO tracked_videos (guild_id, video_id, title, channel_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id, video_id) DO NOTHING
	`

	return r.execRetry(ctx, "ensure_video", pairKey(video.GuildID, video.VideoID), query,
		video.GuildID, video.VideoID, video.Title, video.ChannelID)
}

// RemoveVideo: 추적 영상과 연관된 주기/마일스톤 설정을 트랜잭션으로 함께 삭제한다.
// 삭제된 행이 있었는지 여부를 반환한다.
func (r *Repository) RemoveVideo(ctx context.Context, guildID, videoID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.NewStoreError("remove_video", pairKey(guildID, videoID), err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM tracked_videos WHERE guild_id = $1 AND video_id = $2`, guildID, videoID)
	if err != nil {
		return false, errors.NewStoreError("remove_video", pairKey(guildID, videoID), err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM video_intervals WHERE guild_id = $1 AND video_id = $2`, guildID, videoID); err != nil {
		return false, errors.NewStoreError("remove_video_intervals", pairKey(guildID, videoID), err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM video_milestones WHERE guild_id = $1 AND video_id = $2`, guildID, videoID); err != nil {
		return false, errors.NewStoreError("remove_video_milestones", pairKey(guildID, videoID), err)
	}

	if err := tx.Commit(); err != nil {
		return false, errors.NewStoreError("remove_video_commit", pairKey(guildID, videoID), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetVideo: 단일 추적 영상을 조회한다. 없으면 (nil, nil)을 반환한다.
func (r *Repository) GetVideo(ctx context.Context, guildID, videoID string) (*domain.TrackedVideo, error) {
	query := `
		SELECT guild_id, video_id, title, channel_id
		FROM tracked_videos
		WHERE guild_id = $1 AND video_id = $2
	`

	var video domain.TrackedVideo
	err := r.db.QueryRowContext(ctx, query, guildID, videoID).Scan(
		&video.GuildID, &video.VideoID, &video.Title, &video.ChannelID,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracked video: %w", err)
	}
	return &video, nil
}

// ListVideos: 길드의 모든 추적 영상을 등록 키 순서로 조회한다.
func (r *Repository) ListVideos(ctx context.Context, guildID string) ([]*domain.TrackedVideo, error) {
	query := `
		SELECT guild_id, video_id, title, channel_id
		FROM tracked_videos
		WHERE guild_id = $1
		ORDER BY video_id
	`

	rows, err := r.db.QueryContext(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked videos: %w", err)
	}
	defer rows.Close()

	return r.scanVideos(rows)
}

// ListGuildIDs: 추적 영상이 하나 이상 있는 길드 ID 목록을 조회한다.
func (r *Repository) ListGuildIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT guild_id FROM tracked_videos ORDER BY guild_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild ids: %w", err)
	}
	defer rows.Close()

	var guilds []string
	for rows.Next() {
		var guildID string
		if err := rows.Scan(&guildID); err != nil {
			r.logger.Warn("Failed to scan guild id row", slog.Any("error", err))
			continue
		}
		guilds = append(guilds, guildID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return guilds, nil
}

// GetGuildStats: 길드의 추적 현황 요약(영상 수, 활성 주기 수, 마일스톤 수)을 조회한다.
func (r *Repository) GetGuildStats(ctx context.Context, guildID string) (*domain.GuildStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM tracked_videos WHERE guild_id = $1) AS videos,
			(SELECT COUNT(*) FROM video_intervals WHERE guild_id = $1 AND period_minutes > 0) AS intervals,
			(SELECT COUNT(*) FROM video_milestones WHERE guild_id = $1) AS milestones
	`

	stats := &domain.GuildStats{GuildID: guildID}
	err := r.db.QueryRowContext(ctx, query, guildID).Scan(
		&stats.Videos, &stats.ActiveIntervals, &stats.Milestones,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild stats: %w", err)
	}
	return stats, nil
}

func (r *Repository) scanVideos(rows *sql.Rows) ([]*domain.TrackedVideo, error) {
	var videos []*domain.TrackedVideo
	for rows.Next() {
		var video domain.TrackedVideo
		if err := rows.Scan(&video.GuildID, &video.VideoID, &video.Title, &video.ChannelID); err != nil {
			r.logger.Warn("Failed to scan tracked video row", slog.Any("error", err))
			continue
		}
		videos = append(videos, &video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return videos, nil
}
