package command

// NewDefaultRegistry: 모든 기본 명령어 핸들러가 등록된 레지스트리를 생성한다.
func NewDefaultRegistry(deps *Dependencies) *Registry {
	registry := NewRegistry(deps.Logger)
	registry.Register(
		NewTrackCommand(deps),
		NewUntrackCommand(deps),
		NewListCommand(deps),
		NewViewsCommand(deps),
		NewViewsAllCommand(deps),
		NewIntervalCommand(deps),
		NewIntervalOffCommand(deps),
		NewListIntervalsCommand(deps),
		NewMilestoneCommand(deps),
		NewMilestoneOffCommand(deps),
		NewMilestonesCommand(deps),
		NewUpcomingAlertCommand(deps),
		NewUpcomingCommand(deps),
		NewServerStatsCommand(deps),
		NewBotCheckCommand(deps),
	)
	return registry
}
