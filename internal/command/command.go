// Package command: 슬래시 명령어 레지스트리와 핸들러.
// 각 핸들러는 tracker 서비스를 호출하고 adapter로 포맷한 응답 문자열을 돌려준다.
package command

import (
	"context"

	"log/slog"

	"github.com/kapu/youtube-tracker-bot-go/internal/service/tracker"
)

// Context: 명령이 실행된 위치 정보 (길드, 채널, 호출자)
type Context struct {
	GuildID   string
	ChannelID string
	UserID    string
}

// Options: 인터랙션 옵션의 이름→값 맵. 값은 문자열로 정규화되어 들어온다.
type Options map[string]string

// Get: 옵션 값을 조회한다. 없으면 빈 문자열.
func (o Options) Get(name string) string {
	if o == nil {
		return ""
	}
	return o[name]
}

// Command: 봇 명령어를 처리하는 인터페이스 정의 (이름, 설명, 실행 로직)
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, cmdCtx *Context, opts Options) (string, error)
}

// Dependencies: 명령어 실행에 필요한 서비스 의존성 모음
type Dependencies struct {
	Tracker *tracker.Service
	Logger  *slog.Logger
}
