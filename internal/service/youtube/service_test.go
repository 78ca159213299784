package youtube

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
)

func newQuotaOnlyService() *Service {
	return &Service{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		quotaUsed:  0,
		quotaReset: time.Now().Add(24 * time.Hour),
	}
}

func TestCheckQuotaWithinLimit(t *testing.T) {
	ys := newQuotaOnlyService()

	if err := ys.checkQuota(constants.YouTubeConfig.VideosQuotaCost); err != nil {
		t.Fatalf("expected quota to be available: %v", err)
	}

	ys.consumeQuota(100)
	used, remaining, _ := ys.GetQuotaStatus()
	if used != 100 {
		t.Fatalf("expected 100 used, got %d", used)
	}
	if remaining != constants.YouTubeConfig.DailyQuotaLimit-100 {
		t.Fatalf("unexpected remaining: %d", remaining)
	}
}

func TestCheckQuotaExceeded(t *testing.T) {
	ys := newQuotaOnlyService()
	ys.quotaUsed = constants.YouTubeConfig.DailyQuotaLimit - constants.YouTubeConfig.QuotaSafetyMargin

	err := ys.checkQuota(1)
	if err == nil {
		t.Fatal("expected quota exceeded error")
	}
	quotaErr, ok := err.(*QuotaExceededError)
	if !ok {
		t.Fatalf("expected QuotaExceededError, got %T", err)
	}
	if quotaErr.Requested != 1 {
		t.Fatalf("unexpected requested cost: %d", quotaErr.Requested)
	}
}

func TestCheckQuotaAutoReset(t *testing.T) {
	ys := newQuotaOnlyService()
	ys.quotaUsed = constants.YouTubeConfig.DailyQuotaLimit
	ys.quotaReset = time.Now().Add(-time.Minute)

	if err := ys.checkQuota(1); err != nil {
		t.Fatalf("expected quota to reset after deadline: %v", err)
	}
	if ys.quotaUsed != 0 {
		t.Fatalf("expected usage reset, got %d", ys.quotaUsed)
	}
	if !ys.quotaReset.After(time.Now()) {
		t.Fatal("expected next reset to be in the future")
	}
}

func TestIsUnavailable(t *testing.T) {
	if !IsUnavailable(ErrVideoUnavailable) {
		t.Fatal("sentinel should match")
	}
	if IsUnavailable(nil) {
		t.Fatal("nil should not match")
	}
}
