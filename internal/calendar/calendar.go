// Package calendar provides the date arithmetic used by the resolution
// engine.  All functions operate on ISO "YYYY-MM-DD" strings and are
// timezone-naive: a date is interpreted by its calendar components alone,
// never through a localized clock.
package calendar

import "time"

// DateLayout is the ISO calendar date format used throughout the API.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date.  The result is anchored in UTC so
// weekday computation depends only on the calendar components.
func ParseDate(iso string) (time.Time, error) {
	return time.Parse(DateLayout, iso)
}

// WeekdayOf maps an ISO date to its weekday index, 0=Sunday .. 6=Saturday.
// The input is assumed valid; callers validate at the API boundary.
func WeekdayOf(iso string) int {
	d, _ := time.Parse(DateLayout, iso)
	return int(d.Weekday())
}

// DatesOfWeek returns the 7 consecutive calendar dates starting at
// weekStart, in order.
func DatesOfWeek(weekStart string) [7]string {
	d0, _ := time.Parse(DateLayout, weekStart)
	var dates [7]string
	for i := 0; i < 7; i++ {
		dates[i] = d0.AddDate(0, 0, i).Format(DateLayout)
	}
	return dates
}

// NextWeekStart returns the date exactly 7 days after weekStart.
func NextWeekStart(weekStart string) string {
	d0, _ := time.Parse(DateLayout, weekStart)
	return d0.AddDate(0, 0, 7).Format(DateLayout)
}
