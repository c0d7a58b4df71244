package utils

import (
	"testing"
	"time"
)

func TestMarketOpenClose(t *testing.T) {
	date := time.Date(2026, 2, 18, 12, 0, 0, 0, ET)

	open := MarketOpenTime(date)
	if open.Hour() != 9 || open.Minute() != 30 {
		t.Errorf("MarketOpenTime = %v, want 09:30", open)
	}

	close := MarketCloseTime(date)
	if close.Hour() != 16 || close.Minute() != 0 {
		t.Errorf("MarketCloseTime = %v, want 16:00", close)
	}
}

func TestIsMarketOpenAt(t *testing.T) {
	// Wednesday at 10:00 AM ET: should be open
	weekday := time.Date(2026, 2, 18, 10, 0, 0, 0, ET)
	if !IsMarketOpenAt(weekday) {
		t.Error("Expected market to be open on Wednesday 10:00 AM")
	}

	// Saturday: should be closed
	saturday := time.Date(2026, 2, 21, 10, 0, 0, 0, ET)
	if IsMarketOpenAt(saturday) {
		t.Error("Expected market to be closed on Saturday")
	}

	// Exactly at close: closed
	atClose := time.Date(2026, 2, 18, 16, 0, 0, 0, ET)
	if IsMarketOpenAt(atClose) {
		t.Error("Expected market to be closed at 16:00")
	}
}

func TestMarketStatusAt(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, 2, 18, 8, 0, 0, 0, ET), "Pre-Market"},
		{time.Date(2026, 2, 18, 11, 0, 0, 0, ET), "Open"},
		{time.Date(2026, 2, 18, 18, 0, 0, 0, ET), "After Hours"},
		{time.Date(2026, 2, 22, 11, 0, 0, 0, ET), "Closed (Weekend)"},
	}
	for _, tt := range tests {
		if got := MarketStatusAt(tt.at); got != tt.want {
			t.Errorf("MarketStatusAt(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestFileTimestamp(t *testing.T) {
	ts := time.Date(2025, 3, 7, 9, 5, 1, 0, time.UTC)
	if got := FileTimestamp(ts); got != "20250307_090501" {
		t.Errorf("FileTimestamp = %q", got)
	}
	if got := FormatDateTime(ts); got != "2025-03-07 09:05:01" {
		t.Errorf("FormatDateTime = %q", got)
	}
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2025, 3, 7, 15, 30, 0, 0, time.UTC)
	got := DaysAgo(now, 7)
	want := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DaysAgo = %v, want %v", got, want)
	}
}
