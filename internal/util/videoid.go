package util

import (
	"regexp"
	"strings"
)

// YouTube 영상 ID는 11자 고정 토큰이다.
var (
	videoURLRegex = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`)
	videoIDRegex  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

const maxVideoInputLength = 500

// ExtractVideoID: YouTube URL 또는 영상 ID 문자열에서 11자 영상 ID를 추출한다.
// 추출에 실패하면 빈 문자열을 반환한다.
func ExtractVideoID(input string) string {
	if input == "" || len(input) > maxVideoInputLength {
		return ""
	}

	trimmed := strings.TrimSpace(input)

	if m := videoURLRegex.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}
	if videoIDRegex.MatchString(trimmed) {
		return trimmed
	}
	return ""
}

// VideoURL: 영상 ID로 시청 URL을 생성한다.
func VideoURL(videoID string) string {
	return "https://youtube.com/watch?v=" + videoID
}
