package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kapu/youtube-tracker-bot-go/internal/adapter"
	"github.com/kapu/youtube-tracker-bot-go/pkg/errors"
)

// IntervalCommand: 영상의 커스텀 체크 주기를 설정한다.
type IntervalCommand struct {
	deps *Dependencies
}

// NewIntervalCommand: interval 명령 핸들러를 생성합니다.
func NewIntervalCommand(deps *Dependencies) *IntervalCommand {
	return &IntervalCommand{deps: deps}
}

func (c *IntervalCommand) Name() string        { return "interval" }
func (c *IntervalCommand) Description() string { return "영상의 체크 주기를 분 단위로 설정합니다." }

func (c *IntervalCommand) Execute(ctx context.Context, cmdCtx *Context, opts Options) (string, error) {
	minutes, err := strconv.Atoi(opts.Get("minutes"))
	if err != nil {
		return "", errors.NewValidationError("minutes", "주기는 숫자(분)로 입력해주세요.")
	}

	videoID, err := c.deps.Tracker.SetInterval(ctx, cmdCtx.GuildID, opts.Get("video"), minutes)
	if err != nil {
		return "", err
	}
	return adapter.ConfirmMessage(fmt.Sprintf("`%s` 체크 주기를 %d분으로 설정했습니다.", videoID, minutes)), nil
}

// IntervalOffCommand: 커스텀 체크 주기를 비활성화한다.
type IntervalOffCommand struct {
	deps *Dependencies
}

// NewIntervalOffCommand: intervaloff 명령 핸들러를 생성합니다.
func NewIntervalOffCommand(deps *Dependencies) *IntervalOffCommand {
	return &IntervalOffCommand{deps: deps}
}

func (c *IntervalOffCommand) Name() string        { return "intervaloff" }
func (c *IntervalOffCommand) Description() string { return "영상의 커스텀 체크 주기를 끕니다." }

func (c *IntervalOffCommand) Execute(ctx context.Context, cmdCtx *Context, opts Options) (string, error) {
	videoID, disabled, err := c.deps.Tracker.DisableInterval(ctx, cmdCtx.GuildID, opts.Get("video"))
	if err != nil {
		return "", err
	}
	if !disabled {
		return adapter.ErrorMessage(fmt.Sprintf("`%s`에 설정된 체크 주기가 없습니다.", videoID)), nil
	}
	return adapter.ConfirmMessage(fmt.Sprintf("`%s` 체크 주기를 껐습니다.", videoID)), nil
}

// ListIntervalsCommand: 길드의 활성 체크 주기 목록을 보여준다.
type ListIntervalsCommand struct {
	deps *Dependencies
}

// NewListIntervalsCommand: listintervals 명령 핸들러를 생성합니다.
func NewListIntervalsCommand(deps *Dependencies) *ListIntervalsCommand {
	return &ListIntervalsCommand{deps: deps}
}

func (c *ListIntervalsCommand) Name() string        { return "listintervals" }
func (c *ListIntervalsCommand) Description() string { return "설정된 체크 주기 목록을 보여줍니다." }

func (c *ListIntervalsCommand) Execute(ctx context.Context, cmdCtx *Context, _ Options) (string, error) {
	configs, titles, err := c.deps.Tracker.ListIntervals(ctx, cmdCtx.GuildID)
	if err != nil {
		return "", err
	}
	return adapter.FormatIntervalList(configs, titles), nil
}
