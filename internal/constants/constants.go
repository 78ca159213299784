package constants

import "time"

// ScheduleConfig: 스케줄러 동작 관련 상수.
var ScheduleConfig = struct {
	TickInterval     time.Duration
	FixedCheckHours  []int
	MinIntervalMin   int
	MaxIntervalMin   int
	MaxFanOutWorkers int
}{
	TickInterval:     1 * time.Minute,
	FixedCheckHours:  []int{0, 12, 17}, // KST 고정 체크 시각 (자정/정오/오후 5시)
	MinIntervalMin:   1,
	MaxIntervalMin:   1440, // 24시간
	MaxFanOutWorkers: 8,
}

// MilestoneConfig: 마일스톤/업커밍 판정 상수.
var MilestoneConfig = struct {
	TierSize         uint64
	UpcomingWindow   uint64
	DigestMaxEntries int
	MinRatePerHour   float64
}{
	TierSize:         1_000_000, // 조회수 100만 단위 티어
	UpcomingWindow:   100_000,   // 다음 티어까지 10만 이내면 업커밍 대상
	DigestMaxEntries: 10,
	MinRatePerHour:   10, // ETA 계산 시 시간당 최소 증가량 (0 나눗셈 방지)
}

// YouTubeConfig: YouTube Data API 호출 및 Quota 관리 상수.
var YouTubeConfig = struct {
	FetchTimeout      time.Duration
	VideosQuotaCost   int
	DailyQuotaLimit   int
	QuotaSafetyMargin int
	MaxIDsPerCall     int
	TitleMaxLength    int
}{
	FetchTimeout:      10 * time.Second,
	VideosQuotaCost:   1,
	DailyQuotaLimit:   10000,
	QuotaSafetyMargin: 500,
	MaxIDsPerCall:     50,
	TitleMaxLength:    200,
}

// DiscordConfig: Discord REST 전송 관련 상수.
var DiscordConfig = struct {
	APIBaseURL     string
	SendTimeout    time.Duration
	RequestsPerSec float64
	Burst          int
	MaxRetries     uint64
	RetryBaseDelay time.Duration
}{
	APIBaseURL:     "https://discord.com/api/v10",
	SendTimeout:    10 * time.Second,
	RequestsPerSec: 5, // 채널 메시지 전송 글로벌 레이트 리밋 보다 보수적으로
	Burst:          5,
	MaxRetries:     3,
	RetryBaseDelay: 500 * time.Millisecond,
}

// DatabaseConfig: PostgreSQL 커넥션 풀 설정.
var DatabaseConfig = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}{
	MaxOpenConns:    20,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
}

// DatabaseDefaults: PostgreSQL 기본 접속 정보 (환경 변수 미설정 시)
var DatabaseDefaults = struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}{
	Host:     "localhost",
	Port:     5432,
	User:     "tracker",
	Password: "tracker",
	Database: "yt_tracker",
}

// StoreRetryConfig: 저장소 쓰기 재시도 설정.
var StoreRetryConfig = struct {
	MaxRetries uint64
	Delay      time.Duration
}{
	MaxRetries: 2, // 총 3회 시도
	Delay:      100 * time.Millisecond,
}

// ValkeyConfig: Valkey(캐시) 연결 설정 상수.
var ValkeyConfig = struct {
	ReadyTimeout      time.Duration
	BlockingPoolSize  int
	PipelineMultiplex int
	DialTimeout       time.Duration
	ConnWriteTimeout  time.Duration
}{
	ReadyTimeout:      5 * time.Second,
	BlockingPoolSize:  16,
	PipelineMultiplex: 2,
	DialTimeout:       5 * time.Second,
	ConnWriteTimeout:  5 * time.Second,
}

// CacheTTL: 캐시 키 종류별 TTL.
var CacheTTL = struct {
	LastObservation time.Duration
	VideoTitle      time.Duration
	UpcomingDigest  time.Duration
}{
	LastObservation: 48 * time.Hour, // 성장률 추정용 스냅샷
	VideoTitle:      24 * time.Hour,
	UpcomingDigest:  1 * time.Hour,
}

// RequestTimeout: 내부 작업별 타임아웃.
var RequestTimeout = struct {
	DatabasePing time.Duration
	StoreOp      time.Duration
	Delivery     time.Duration
}{
	DatabasePing: 5 * time.Second,
	StoreOp:      5 * time.Second,
	Delivery:     10 * time.Second,
}

// AppTimeout: 애플리케이션 수명주기 타임아웃.
var AppTimeout = struct {
	Build    time.Duration
	Shutdown time.Duration
}{
	Build:    30 * time.Second,
	Shutdown: 10 * time.Second,
}

// InputLimits: 명령어 입력 제한.
var InputLimits = struct {
	MaxVideoInputLength int
	MaxPingTextLength   int
}{
	MaxVideoInputLength: 500,
	MaxPingTextLength:   200,
}
