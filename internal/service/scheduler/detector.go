// Package scheduler: 1분 틱 루프와 고정/주기 체크 평가기, 마일스톤 감지기,
// 업커밍 리포터를 담는다.
package scheduler

import (
	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
)

// Tier: 조회수가 속한 백만 단위 티어를 반환한다. (정수 나눗셈)
func Tier(views uint64) uint64 {
	return views / constants.MilestoneConfig.TierSize
}

// NextTarget: 다음 백만 단위 목표 조회수를 반환한다.
func NextTarget(views uint64) uint64 {
	return (Tier(views) + 1) * constants.MilestoneConfig.TierSize
}

// CrossedTier: 새 조회수가 마지막 통과 티어를 넘어섰는지 판정한다.
// 여러 티어를 한 번에 건너뛴 경우에도 최종 티어 하나만 보고한다.
// 넘지 않았으면 기존 티어를 그대로 돌려준다.
func CrossedTier(lastCrossedTier, views uint64) (uint64, bool) {
	tier := Tier(views)
	if tier > lastCrossedTier {
		return tier, true
	}
	return lastCrossedTier, false
}
