package scheduler

import (
	"math"
	"slices"

	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
	"github.com/kapu/youtube-tracker-bot-go/internal/domain"
)

// UpcomingDistance: 다음 백만 목표까지의 거리와 다이제스트 포함 여부를 판정한다.
// 목표까지 100,000 이내(0 초과)인 영상만 포함된다.
func UpcomingDistance(views uint64) (target, remaining uint64, qualifies bool) {
	target = NextTarget(views)
	remaining = target - views
	qualifies = remaining > 0 && remaining <= constants.MilestoneConfig.UpcomingWindow
	return target, remaining, qualifies
}

// EstimateETAMinutes: 목표까지 남은 조회수를 시간당 성장률로 나눠 도달 예상
// 시간을 분 단위로 추정한다. 성장률은 직전 스냅샷과의 차이에서 계산하되
// 최소 시간당 10회로 바닥 처리해 0 나눗셈과 비현실적 ETA를 막는다.
func EstimateETAMinutes(remaining uint64, previous, current *domain.VideoStats) int {
	ratePerHour := constants.MilestoneConfig.MinRatePerHour

	if previous != nil && current != nil && current.Views > previous.Views {
		elapsed := current.FetchedAt.Sub(previous.FetchedAt)
		if elapsed > 0 {
			observed := float64(current.Views-previous.Views) / elapsed.Hours()
			if observed > ratePerHour {
				ratePerHour = observed
			}
		}
	}

	eta := int(math.Ceil(float64(remaining) / ratePerHour * 60))
	if eta < 1 {
		eta = 1
	}
	return eta
}

// BuildDigest: 업커밍 항목을 목표에 가까운 순으로 정렬하고 최대 개수로 자른다.
// 남은 조회수가 같으면 영상 ID 순으로 고정한다.
func BuildDigest(entries []*domain.UpcomingEntry) []*domain.UpcomingEntry {
	slices.SortFunc(entries, func(a, b *domain.UpcomingEntry) int {
		if a.Remaining != b.Remaining {
			if a.Remaining < b.Remaining {
				return -1
			}
			return 1
		}
		if a.VideoID < b.VideoID {
			return -1
		}
		if a.VideoID > b.VideoID {
			return 1
		}
		return 0
	})

	if len(entries) > constants.MilestoneConfig.DigestMaxEntries {
		entries = entries[:constants.MilestoneConfig.DigestMaxEntries]
	}
	return entries
}
