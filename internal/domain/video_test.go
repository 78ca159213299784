package domain

import (
	"testing"
	"time"
)

func TestIntervalConfigIsDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ranAt := func(minutesAgo int) *time.Time {
		ts := now.Add(-time.Duration(minutesAgo) * time.Minute)
		return &ts
	}

	tests := []struct {
		name string
		cfg  IntervalConfig
		want bool
	}{
		{"never ran is due immediately", IntervalConfig{PeriodMinutes: 60}, true},
		{"one minute short is not due", IntervalConfig{PeriodMinutes: 60, LastRunAt: ranAt(59)}, false},
		{"exactly period elapsed is due", IntervalConfig{PeriodMinutes: 60, LastRunAt: ranAt(60)}, true},
		{"past period is due", IntervalConfig{PeriodMinutes: 60, LastRunAt: ranAt(61)}, true},
		{"disabled interval is never due", IntervalConfig{PeriodMinutes: 0, LastRunAt: ranAt(120)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsDue(now); got != tt.want {
				t.Fatalf("IsDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObservationViewDelta(t *testing.T) {
	obs := &Observation{CurrentViews: 1_000, PreviousViews: 400, HasPrevious: true}
	if obs.ViewDelta() != 600 {
		t.Fatalf("expected 600, got %d", obs.ViewDelta())
	}

	first := &Observation{CurrentViews: 1_000}
	if first.ViewDelta() != 0 {
		t.Fatalf("expected 0 without previous, got %d", first.ViewDelta())
	}

	dropped := &Observation{CurrentViews: 300, PreviousViews: 400, HasPrevious: true}
	if dropped.ViewDelta() != -100 {
		t.Fatalf("expected -100, got %d", dropped.ViewDelta())
	}
}
