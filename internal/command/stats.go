package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/youtube-tracker-bot-go/internal/adapter"
	"github.com/kapu/youtube-tracker-bot-go/internal/health"
)

// ServerStatsCommand: 길드의 추적 현황 요약을 보여준다.
type ServerStatsCommand struct {
	deps *Dependencies
}

// NewServerStatsCommand: serverstats 명령 핸들러를 생성합니다.
func NewServerStatsCommand(deps *Dependencies) *ServerStatsCommand {
	return &ServerStatsCommand{deps: deps}
}

func (c *ServerStatsCommand) Name() string        { return "serverstats" }
func (c *ServerStatsCommand) Description() string { return "서버의 추적 현황 요약을 보여줍니다." }

func (c *ServerStatsCommand) Execute(ctx context.Context, cmdCtx *Context, _ Options) (string, error) {
	stats, err := c.deps.Tracker.GetServerStats(ctx, cmdCtx.GuildID)
	if err != nil {
		return "", err
	}
	return adapter.FormatGuildStats(stats), nil
}

// BotCheckCommand: 봇 프로세스의 상태(업타임, 리소스)를 보여준다.
type BotCheckCommand struct {
	deps *Dependencies
}

// NewBotCheckCommand: botcheck 명령 핸들러를 생성합니다.
func NewBotCheckCommand(deps *Dependencies) *BotCheckCommand {
	return &BotCheckCommand{deps: deps}
}

func (c *BotCheckCommand) Name() string        { return "botcheck" }
func (c *BotCheckCommand) Description() string { return "봇 상태를 점검합니다." }

func (c *BotCheckCommand) Execute(ctx context.Context, _ *Context, _ Options) (string, error) {
	stats, err := health.GetSystemStats(ctx)
	if err != nil {
		// 리소스 통계 실패는 기본 응답으로 대체한다
		return fmt.Sprintf("🤖 봇 정상 동작 중 (v%s, 업타임 %s)",
			health.GetVersion(), health.GetUptime()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🤖 **봇 상태** (v%s)\n", health.GetVersion())
	fmt.Fprintf(&b, "업타임: %s\n", stats.Uptime)
	fmt.Fprintf(&b, "CPU: %.1f%% · 메모리: %.1f%% (%.0fMB)\n",
		stats.CPUUsage, stats.MemoryUsage, float64(stats.MemoryUsed)/(1024*1024))
	fmt.Fprintf(&b, "고루틴: %d개", stats.Goroutines)
	return b.String(), nil
}
