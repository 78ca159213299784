package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
)

// UpsertUpcomingConfig: 길드의 업커밍 다이제스트 설정을 저장한다. (full-row replace)
func (r *Repository) UpsertUpcomingConfig(ctx context.Context, cfg *domain.GuildUpcomingConfig) error {
	query := `
		INSERT INTO guild_upcoming_settings (guild_id, channel_id, ping_text)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id) DO UPDATE
		SET channel_id = EXCLUDED.channel_id,
		    ping_text = EXCLUDED.ping_text
	`

	return r.execRetry(ctx, "upsert_upcoming", cfg.GuildID, query,
		cfg.GuildID, cfg.ChannelID, cfg.PingText)
}

// RemoveUpcomingConfig: 길드의 업커밍 설정을 삭제한다. 행이 있었는지 여부를 반환한다.
func (r *Repository) RemoveUpcomingConfig(ctx context.Context, guildID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM guild_upcoming_settings WHERE guild_id = $1`, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to remove upcoming config: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetUpcomingConfig: 길드의 업커밍 설정을 조회한다. 없으면 (nil, nil)을 반환한다.
func (r *Repository) GetUpcomingConfig(ctx context.Context, guildID string) (*domain.GuildUpcomingConfig, error) {
	query := `
		SELECT guild_id, channel_id, ping_text
		FROM guild_upcoming_settings
		WHERE guild_id = $1
	`

	var cfg domain.GuildUpcomingConfig
	err := r.db.QueryRowContext(ctx, query, guildID).Scan(&cfg.GuildID, &cfg.ChannelID, &cfg.PingText)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming config: %w", err)
	}
	return &cfg, nil
}

// ListUpcomingConfigs: 다이제스트 채널이 설정된 길드 설정을 전부 조회한다.
func (r *Repository) ListUpcomingConfigs(ctx context.Context) ([]*domain.GuildUpcomingConfig, error) {
	query := `
		SELECT guild_id, channel_id, ping_text
		FROM guild_upcoming_settings
		WHERE channel_id <> ''
		ORDER BY guild_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming configs: %w", err)
	}
	defer rows.Close()

	var configs []*domain.GuildUpcomingConfig
	for rows.Next() {
		var cfg domain.GuildUpcomingConfig
		if err := rows.Scan(&cfg.GuildID, &cfg.ChannelID, &cfg.PingText); err != nil {
			continue
		}
		configs = append(configs, &cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return configs, nil
}
