package scheduler

import (
	"slices"
	"time"

	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
	"github.com/kapu/youtube-tracker-bot-go/internal/util"
)

// NextFixedCheckpoint: 기준 시각 이후의 가장 가까운 고정 체크포인트(KST 0시,
// 12시, 17시 정각)를 반환한다. 경계는 제외한다. (after 자신은 후보가 아님)
func NextFixedCheckpoint(after time.Time) time.Time {
	kst := util.ToKST(after)

	hours := slices.Clone(constants.ScheduleConfig.FixedCheckHours)
	slices.Sort(hours)

	for dayOffset := 0; dayOffset <= 1; dayOffset++ {
		for _, hour := range hours {
			candidate := time.Date(kst.Year(), kst.Month(), kst.Day()+dayOffset,
				hour, 0, 0, 0, kst.Location())
			if candidate.After(after) {
				return candidate
			}
		}
	}

	// 도달 불가: 다음 날 후보 중 하나는 항상 미래다
	return kst.Add(24 * time.Hour)
}

// FixedCheckpointBetween: (prev, now] 구간에 고정 체크포인트가 있으면 그 시각을
// 반환한다. 틱이 밀려 체크포인트 정각을 놓쳐도 다음 틱에서 잡아낸다.
func FixedCheckpointBetween(prev, now time.Time) (time.Time, bool) {
	checkpoint := NextFixedCheckpoint(prev)
	if checkpoint.After(now) {
		return time.Time{}, false
	}
	return checkpoint, true
}
