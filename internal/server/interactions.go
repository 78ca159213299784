package server

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/kapu/youtube-tracker-bot-go/internal/command"
)

// Discord 인터랙션 타입/응답 타입 상수.
const (
	interactionPing               = 1
	interactionApplicationCommand = 2

	responsePong                  = 1
	responseChannelMessage        = 4
	messageFlagEphemeral   uint64 = 1 << 6
)

type interactionOption struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type interactionRequest struct {
	Type int `json:"type"`
	Data struct {
		Name    string              `json:"name"`
		Options []interactionOption `json:"options"`
	} `json:"data"`
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	Member    struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"member"`
}

// handleInteractions: Discord 인터랙션 웹훅 엔드포인트.
// ed25519 서명 검증 후 PING에는 PONG으로, 슬래시 명령에는 레지스트리 실행
// 결과를 채널 메시지 응답으로 돌려준다.
func (s *Server) handleInteractions(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if !s.verifySignature(c.Request, body) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid request signature"})
		return
	}

	var req interactionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interaction payload"})
		return
	}

	switch req.Type {
	case interactionPing:
		c.JSON(http.StatusOK, gin.H{"type": responsePong})

	case interactionApplicationCommand:
		cmdCtx := &command.Context{
			GuildID:   req.GuildID,
			ChannelID: req.ChannelID,
			UserID:    req.Member.User.ID,
		}
		opts := normalizeOptions(req.Data.Options)

		reply, err := s.registry.Execute(c.Request.Context(), cmdCtx, req.Data.Name, opts)
		if err != nil {
			s.logger.Warn("Unknown interaction command",
				slog.String("command", req.Data.Name),
				slog.String("guild", req.GuildID))
			c.JSON(http.StatusOK, gin.H{
				"type": responseChannelMessage,
				"data": gin.H{"content": "알 수 없는 명령어입니다.", "flags": messageFlagEphemeral},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"type": responseChannelMessage,
			"data": gin.H{"content": reply},
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported interaction type"})
	}
}

// verifySignature: X-Signature-Ed25519 / X-Signature-Timestamp 헤더로
// timestamp||body 서명을 검증한다.
func (s *Server) verifySignature(r *http.Request, body []byte) bool {
	signature := r.Header.Get("X-Signature-Ed25519")
	timestamp := r.Header.Get("X-Signature-Timestamp")
	if signature == "" || timestamp == "" {
		return false
	}

	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	message := make([]byte, 0, len(timestamp)+len(body))
	message = append(message, timestamp...)
	message = append(message, body...)
	return ed25519.Verify(s.publicKey, message, sig)
}

// normalizeOptions: 인터랙션 옵션 값을 타입 무관하게 문자열로 펼친다.
func normalizeOptions(options []interactionOption) command.Options {
	if len(options) == 0 {
		return nil
	}
	opts := make(command.Options, len(options))
	for _, opt := range options {
		var str string
		if err := json.Unmarshal(opt.Value, &str); err == nil {
			opts[opt.Name] = str
			continue
		}
		var num float64
		if err := json.Unmarshal(opt.Value, &num); err == nil {
			opts[opt.Name] = formatNumber(num)
			continue
		}
		var b bool
		if err := json.Unmarshal(opt.Value, &b); err == nil {
			opts[opt.Name] = fmt.Sprintf("%t", b)
		}
	}
	return opts
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
