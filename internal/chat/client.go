// Package chat: Discord REST API를 통한 메시지 전송 계층.
// 글로벌 레이트 리밋과 429/5xx 재시도를 클라이언트 안에서 처리한다.
package chat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
	"github.com/kapu/youtube-tracker-bot-go/pkg/errors"
)

// Discord 메시지 본문 최대 길이.
const maxMessageLength = 2000

// Client: Discord REST API 클라이언트.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient: 봇 토큰으로 새 Discord 클라이언트를 생성한다.
func NewClient(token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: constants.DiscordConfig.APIBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: constants.DiscordConfig.SendTimeout,
		},
		limiter: rate.NewLimiter(
			rate.Limit(constants.DiscordConfig.RequestsPerSec),
			constants.DiscordConfig.Burst),
		logger: logger,
	}
}

type messagePayload struct {
	Content string `json:"content"`
}

type rateLimitResponse struct {
	RetryAfter float64 `json:"retry_after"`
}

// SendMessage: 지정된 채널에 텍스트 메시지를 전송한다.
// 429 응답은 retry_after를 존중해 재시도하고, 5xx는 지수 백오프로 재시도한다.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) error {
	if channelID == "" {
		return errors.NewDeliveryError(channelID, fmt.Errorf("empty channel id"))
	}
	if content == "" {
		return nil
	}
	if len([]rune(content)) > maxMessageLength {
		content = string([]rune(content)[:maxMessageLength])
	}

	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		return c.postMessage(ctx, channelID, content)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(constants.DiscordConfig.RetryBaseDelay)),
			constants.DiscordConfig.MaxRetries),
		ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return errors.NewDeliveryError(channelID, err)
	}
	return nil
}

func (c *Client) postMessage(ctx context.Context, channelID, content string) error {
	bodyBytes, err := json.Marshal(messagePayload{Content: content})
	if err != nil {
		return backoff.Permanent(fmt.Errorf("marshal body: %w", err))
	}

	url := c.baseURL + "/channels/" + channelID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode < 300:
		return nil

	case resp.StatusCode == http.StatusTooManyRequests:
		var rl rateLimitResponse
		if err := json.NewDecoder(resp.Body).Decode(&rl); err == nil && rl.RetryAfter > 0 {
			wait := time.Duration(rl.RetryAfter * float64(time.Second))
			c.logger.Warn("Discord rate limited",
				slog.String("channel", channelID),
				slog.Duration("retry_after", wait))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return backoff.Permanent(ctx.Err())
			}
		}
		return fmt.Errorf("rate limited (429)")

	case resp.StatusCode >= 500:
		return fmt.Errorf("server error %d", resp.StatusCode)

	default:
		// 4xx는 재시도해도 결과가 같다
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return backoff.Permanent(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}
}
