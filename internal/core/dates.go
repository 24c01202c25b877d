package core

import "time"

// MonthBounds returns the first and last calendar day of a month, both
// inclusive, in UTC.
func MonthBounds(month, year int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// DaysInMonth returns the number of calendar days in a month.
func DaysInMonth(month, year int) int {
	first, _ := MonthBounds(month, year)
	return first.AddDate(0, 1, -1).Day()
}

// MissingDate is a calendar day with no production entry. Sundays are flagged
// because a blank Sunday is usually a holiday rather than a data gap.
type MissingDate struct {
	Date     time.Time `json:"date"`
	IsSunday bool      `json:"is_sunday"`
}

// MissingProductionDates walks the month day by day, up to and including
// cutoff, and returns the days absent from recorded. Keys in recorded are
// YYYY-MM-DD strings as produced by ProductionService.RecordedDates.
func MissingProductionDates(month, year int, cutoff time.Time, recorded map[string]bool) []MissingDate {
	first, last := MonthBounds(month, year)
	if cutoff.Before(last) {
		last = cutoff
	}
	var out []MissingDate
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if recorded[d.Format("2006-01-02")] {
			continue
		}
		out = append(out, MissingDate{Date: d, IsSunday: d.Weekday() == time.Sunday})
	}
	return out
}
