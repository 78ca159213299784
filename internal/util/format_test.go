package util

import "testing"

func TestFormatCount(t *testing.T) {
	testCases := []struct {
		input uint64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{999999, "999,999"},
		{1000000, "1,000,000"},
		{2300000, "2,300,000"},
		{1234567890, "1,234,567,890"},
	}

	for _, tc := range testCases {
		if got := FormatCount(tc.input); got != tc.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello"},
		{"multibyte runes", "한국어제목입니다", 3, "한국어"},
		{"zero limit", "hello", 0, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateRunes(tc.input, tc.n); got != tc.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.n, got, tc.want)
			}
		})
	}
}
