package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/youtube-tracker-bot-go/internal/adapter"
)

// TrackCommand: 영상을 추적 목록에 등록한다.
type TrackCommand struct {
	deps *Dependencies
}

// NewTrackCommand: track 명령 핸들러를 생성합니다.
func NewTrackCommand(deps *Dependencies) *TrackCommand {
	return &TrackCommand{deps: deps}
}

func (c *TrackCommand) Name() string        { return "track" }
func (c *TrackCommand) Description() string { return "YouTube 영상을 추적 목록에 등록합니다." }

func (c *TrackCommand) Execute(ctx context.Context, cmdCtx *Context, opts Options) (string, error) {
	video, err := c.deps.Tracker.RegisterVideo(ctx, cmdCtx.GuildID,
		opts.Get("video"), opts.Get("title"), opts.Get("channel"))
	if err != nil {
		return "", err
	}
	return adapter.ConfirmMessage(fmt.Sprintf("**%s** 추적을 시작합니다. (`%s`)", video.Title, video.VideoID)), nil
}

// UntrackCommand: 영상 추적을 해제한다.
type UntrackCommand struct {
	deps *Dependencies
}

// NewUntrackCommand: untrack 명령 핸들러를 생성합니다.
func NewUntrackCommand(deps *Dependencies) *UntrackCommand {
	return &UntrackCommand{deps: deps}
}

func (c *UntrackCommand) Name() string        { return "untrack" }
func (c *UntrackCommand) Description() string { return "영상 추적을 해제합니다." }

func (c *UntrackCommand) Execute(ctx context.Context, cmdCtx *Context, opts Options) (string, error) {
	videoID, removed, err := c.deps.Tracker.RemoveVideo(ctx, cmdCtx.GuildID, opts.Get("video"))
	if err != nil {
		return "", err
	}
	if !removed {
		return adapter.ErrorMessage(fmt.Sprintf("`%s`은(는) 추적 목록에 없습니다.", videoID)), nil
	}
	return adapter.ConfirmMessage(fmt.Sprintf("`%s` 추적을 해제했습니다.", videoID)), nil
}

// ListCommand: 길드의 추적 영상 목록을 보여준다.
type ListCommand struct {
	deps *Dependencies
}

// NewListCommand: list 명령 핸들러를 생성합니다.
func NewListCommand(deps *Dependencies) *ListCommand {
	return &ListCommand{deps: deps}
}

func (c *ListCommand) Name() string        { return "list" }
func (c *ListCommand) Description() string { return "추적 중인 영상 목록을 보여줍니다." }

func (c *ListCommand) Execute(ctx context.Context, cmdCtx *Context, _ Options) (string, error) {
	videos, err := c.deps.Tracker.ListVideos(ctx, cmdCtx.GuildID)
	if err != nil {
		return "", err
	}
	return adapter.FormatVideoList(videos), nil
}

// ViewsCommand: 단일 영상의 현재 조회수/좋아요를 즉석 조회한다.
type ViewsCommand struct {
	deps *Dependencies
}

// NewViewsCommand: views 명령 핸들러를 생성합니다.
func NewViewsCommand(deps *Dependencies) *ViewsCommand {
	return &ViewsCommand{deps: deps}
}

func (c *ViewsCommand) Name() string        { return "views" }
func (c *ViewsCommand) Description() string { return "영상의 현재 조회수를 조회합니다." }

func (c *ViewsCommand) Execute(ctx context.Context, cmdCtx *Context, opts Options) (string, error) {
	obs, err := c.deps.Tracker.GetVideoObservation(ctx, cmdCtx.GuildID, opts.Get("video"))
	if err != nil {
		return "", err
	}
	return adapter.FormatStatsMessage(obs), nil
}

// ViewsAllCommand: 추적 중인 모든 영상의 통계를 즉시 조회한다.
type ViewsAllCommand struct {
	deps *Dependencies
}

// NewViewsAllCommand: viewsall 명령 핸들러를 생성합니다.
func NewViewsAllCommand(deps *Dependencies) *ViewsAllCommand {
	return &ViewsAllCommand{deps: deps}
}

func (c *ViewsAllCommand) Name() string        { return "viewsall" }
func (c *ViewsAllCommand) Description() string { return "추적 중인 모든 영상의 통계를 즉시 조회합니다." }

func (c *ViewsAllCommand) Execute(ctx context.Context, cmdCtx *Context, _ Options) (string, error) {
	observations, err := c.deps.Tracker.ForceCheck(ctx, cmdCtx.GuildID)
	if err != nil {
		return "", err
	}
	if len(observations) == 0 {
		return adapter.ErrorMessage("조회할 수 있는 추적 영상이 없습니다."), nil
	}

	var b strings.Builder
	for i, obs := range observations {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(adapter.FormatStatsMessage(obs))
	}
	return b.String(), nil
}
