package command

import (
	"context"
	"fmt"

	"github.com/kapu/youtube-tracker-bot-go/internal/adapter"
)

// MilestoneCommand: 영상의 백만 단위 마일스톤 추적을 설정한다.
type MilestoneCommand struct {
	deps *Dependencies
}

// NewMilestoneCommand: milestone 명령 핸들러를 생성합니다.
func NewMilestoneCommand(deps *Dependencies) *MilestoneCommand {
	return &MilestoneCommand{deps: deps}
}

func (c *MilestoneCommand) Name() string        { return "milestone" }
func (c *MilestoneCommand) Description() string { return "영상의 백만 조회수 돌파 알림을 설정합니다." }

func (c *MilestoneCommand) Execute(ctx context.Context, cmdCtx *Context, opts Options) (string, error) {
	channelID := opts.Get("channel")
	if channelID == "" {
		channelID = cmdCtx.ChannelID
	}

	cfg, err := c.deps.Tracker.SetMilestone(ctx, cmdCtx.GuildID, opts.Get("video"), channelID, opts.Get("ping"))
	if err != nil {
		return "", err
	}

	next := (cfg.LastCrossedTier + 1)
	return adapter.ConfirmMessage(fmt.Sprintf(
		"`%s` 마일스톤 알림을 설정했습니다. 다음 목표: %d,000,000회", cfg.VideoID, next)), nil
}

// MilestoneOffCommand: 마일스톤 추적을 해제한다.
type MilestoneOffCommand struct {
	deps *Dependencies
}

// NewMilestoneOffCommand: milestoneoff 명령 핸들러를 생성합니다.
func NewMilestoneOffCommand(deps *Dependencies) *MilestoneOffCommand {
	return &MilestoneOffCommand{deps: deps}
}

func (c *MilestoneOffCommand) Name() string        { return "milestoneoff" }
func (c *MilestoneOffCommand) Description() string { return "영상의 마일스톤 알림을 해제합니다." }

func (c *MilestoneOffCommand) Execute(ctx context.Context, cmdCtx *Context, opts Options) (string, error) {
	videoID, removed, err := c.deps.Tracker.RemoveMilestoneAlert(ctx, cmdCtx.GuildID, opts.Get("video"))
	if err != nil {
		return "", err
	}
	if !removed {
		return adapter.ErrorMessage(fmt.Sprintf("`%s`에 설정된 마일스톤 알림이 없습니다.", videoID)), nil
	}
	return adapter.ConfirmMessage(fmt.Sprintf("`%s` 마일스톤 알림을 해제했습니다.", videoID)), nil
}

// MilestonesCommand: 길드에서 달성한 마일스톤 목록을 보여준다.
type MilestonesCommand struct {
	deps *Dependencies
}

// NewMilestonesCommand: milestones 명령 핸들러를 생성합니다.
func NewMilestonesCommand(deps *Dependencies) *MilestonesCommand {
	return &MilestonesCommand{deps: deps}
}

func (c *MilestonesCommand) Name() string        { return "milestones" }
func (c *MilestonesCommand) Description() string { return "달성한 마일스톤 목록을 보여줍니다." }

func (c *MilestonesCommand) Execute(ctx context.Context, cmdCtx *Context, _ Options) (string, error) {
	reached, err := c.deps.Tracker.GetReachedMilestones(ctx, cmdCtx.GuildID)
	if err != nil {
		return "", err
	}
	return adapter.FormatReachedMilestones(reached), nil
}

// UpcomingAlertCommand: 길드의 업커밍 다이제스트 채널을 설정하거나 해제한다.
type UpcomingAlertCommand struct {
	deps *Dependencies
}

// NewUpcomingAlertCommand: upcomingalert 명령 핸들러를 생성합니다.
func NewUpcomingAlertCommand(deps *Dependencies) *UpcomingAlertCommand {
	return &UpcomingAlertCommand{deps: deps}
}

func (c *UpcomingAlertCommand) Name() string { return "upcomingalert" }
func (c *UpcomingAlertCommand) Description() string {
	return "백만 돌파 임박 다이제스트 채널을 설정합니다. 채널 없이 호출하면 해제됩니다."
}

func (c *UpcomingAlertCommand) Execute(ctx context.Context, cmdCtx *Context, opts Options) (string, error) {
	channelID := opts.Get("channel")
	ok, err := c.deps.Tracker.SetUpcomingAlert(ctx, cmdCtx.GuildID, channelID, opts.Get("ping"))
	if err != nil {
		return "", err
	}

	if channelID == "" {
		if !ok {
			return adapter.ErrorMessage("설정된 다이제스트 채널이 없습니다."), nil
		}
		return adapter.ConfirmMessage("다이제스트 알림을 해제했습니다."), nil
	}
	return adapter.ConfirmMessage(fmt.Sprintf("다이제스트 채널을 <#%s>(으)로 설정했습니다.", channelID)), nil
}

// UpcomingCommand: 백만 목표 임박 영상 목록을 즉석 조회한다.
type UpcomingCommand struct {
	deps *Dependencies
}

// NewUpcomingCommand: upcoming 명령 핸들러를 생성합니다.
func NewUpcomingCommand(deps *Dependencies) *UpcomingCommand {
	return &UpcomingCommand{deps: deps}
}

func (c *UpcomingCommand) Name() string        { return "upcoming" }
func (c *UpcomingCommand) Description() string { return "백만 돌파가 임박한 영상을 보여줍니다." }

func (c *UpcomingCommand) Execute(ctx context.Context, cmdCtx *Context, _ Options) (string, error) {
	entries, err := c.deps.Tracker.GetUpcoming(ctx, cmdCtx.GuildID)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "🎯 백만 돌파가 임박한 영상이 없습니다.", nil
	}
	return adapter.FormatUpcomingDigest(entries), nil
}
