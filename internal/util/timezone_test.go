package util

import (
	"testing"
	"time"
)

func TestMonthWindow(t *testing.T) {
	loc, err := LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}

	// 2025-03-15 23:30 UTC is already March 16 in Seoul
	now := time.Date(2025, 3, 15, 23, 30, 0, 0, time.UTC)
	start, end := MonthWindow(now, loc)

	wantStart := time.Date(2025, 3, 1, 0, 0, 0, 0, loc)
	wantEnd := time.Date(2025, 4, 1, 0, 0, 0, 0, loc)

	if !start.Equal(wantStart) {
		t.Fatalf("start mismatch: got %v want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Fatalf("end mismatch: got %v want %v", end, wantEnd)
	}
}

func TestMonthWindowYearBoundary(t *testing.T) {
	start, end := MonthWindow(time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC), time.UTC)
	if start.Month() != time.December || start.Day() != 1 {
		t.Fatalf("unexpected start: %v", start)
	}
	if end.Year() != 2026 || end.Month() != time.January {
		t.Fatalf("unexpected end: %v", end)
	}
}

func TestLoadLocationEmptyDefaultsToUTC(t *testing.T) {
	loc, err := LoadLocation("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != time.UTC {
		t.Fatalf("expected UTC, got %v", loc)
	}
}
