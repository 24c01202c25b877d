package core_test

import (
	"testing"
	"time"

	"liftledger/internal/core"
)

func TestLivingAllowance(t *testing.T) {
	// 70 workers for all of July at 192/day.
	got := core.LivingAllowance(70, 31, d("192"))
	if !got.Equal(d("416640")) {
		t.Errorf("LivingAllowance(70, 31, 192) = %s, want 416640", got)
	}

	if !core.LivingAllowance(0, 31, d("192")).IsZero() {
		t.Error("LivingAllowance with zero workers should be zero")
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		month, year, want int
	}{
		{1, 2026, 31},
		{4, 2026, 30},
		{2, 2026, 28},
		{2, 2028, 29}, // leap year
	}
	for _, tt := range tests {
		if got := core.DaysInMonth(tt.month, tt.year); got != tt.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tt.month, tt.year, got, tt.want)
		}
	}
}

func TestMissingProductionDates(t *testing.T) {
	// June 2026 has 30 days. Record every day except the 7th, 14th and 20th.
	// The 7th and 14th are Sundays, the 20th is a Saturday.
	recorded := make(map[string]bool)
	for day := 1; day <= 30; day++ {
		if day == 7 || day == 14 || day == 20 {
			continue
		}
		recorded[time.Date(2026, 6, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")] = true
	}

	cutoff := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	missing := core.MissingProductionDates(6, 2026, cutoff, recorded)

	if len(missing) != 3 {
		t.Fatalf("got %d missing dates, want 3: %v", len(missing), missing)
	}
	sundays := 0
	for _, m := range missing {
		if m.IsSunday {
			sundays++
		}
	}
	if sundays != 2 {
		t.Errorf("got %d Sundays flagged, want 2", sundays)
	}
	if got := missing[0].Date.Day(); got != 7 {
		t.Errorf("first missing day = %d, want 7", got)
	}
}

func TestMissingProductionDates_CutoffLimitsWalk(t *testing.T) {
	// Nothing recorded, cutoff mid-month: only days up to the cutoff count.
	cutoff := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	missing := core.MissingProductionDates(6, 2026, cutoff, map[string]bool{})
	if len(missing) != 10 {
		t.Errorf("got %d missing dates, want 10", len(missing))
	}
}

func TestMonthBounds(t *testing.T) {
	first, last := core.MonthBounds(2, 2028)
	if first.Day() != 1 || first.Month() != 2 {
		t.Errorf("first = %s, want 2028-02-01", first.Format("2006-01-02"))
	}
	if last.Day() != 29 || last.Month() != 2 {
		t.Errorf("last = %s, want 2028-02-29", last.Format("2006-01-02"))
	}
}
