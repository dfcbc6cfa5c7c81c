package calendar

import "testing"

func TestParseDate_Valid(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if got := d.Format(DateLayout); got != "2025-06-01" {
		t.Errorf("expected round-trip 2025-06-01, got %s", got)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "2025-6-1", "01-06-2025", "2025-13-01", "2025-02-30", "not-a-date"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestWeekdayOf(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2025-06-01", 0}, // Sunday
		{"2025-06-02", 1}, // Monday
		{"2025-06-07", 6}, // Saturday
		{"2024-02-29", 4}, // leap day, Thursday
	}
	for _, c := range cases {
		if got := WeekdayOf(c.date); got != c.want {
			t.Errorf("WeekdayOf(%s) = %d, want %d", c.date, got, c.want)
		}
	}
}

func TestDatesOfWeek_Consecutive(t *testing.T) {
	dates := DatesOfWeek("2025-06-01")
	if dates[0] != "2025-06-01" {
		t.Errorf("first date = %s, want the week start", dates[0])
	}
	if dates[6] != "2025-06-07" {
		t.Errorf("last date = %s, want 2025-06-07", dates[6])
	}
	for i := 1; i < 7; i++ {
		if dates[i] <= dates[i-1] {
			t.Errorf("dates not ascending at index %d: %s <= %s", i, dates[i], dates[i-1])
		}
	}
}

func TestDatesOfWeek_CrossesYearBoundary(t *testing.T) {
	dates := DatesOfWeek("2024-12-30")
	if dates[1] != "2024-12-31" {
		t.Errorf("expected 2024-12-31 at index 1, got %s", dates[1])
	}
	if dates[2] != "2025-01-01" {
		t.Errorf("expected 2025-01-01 at index 2, got %s", dates[2])
	}
	if dates[6] != "2025-01-05" {
		t.Errorf("expected 2025-01-05 at index 6, got %s", dates[6])
	}
}

func TestDatesOfWeek_CrossesLeapDay(t *testing.T) {
	dates := DatesOfWeek("2024-02-26")
	if dates[3] != "2024-02-29" {
		t.Errorf("expected leap day at index 3, got %s", dates[3])
	}
	if dates[4] != "2024-03-01" {
		t.Errorf("expected 2024-03-01 at index 4, got %s", dates[4])
	}
}

func TestNextWeekStart(t *testing.T) {
	if got := NextWeekStart("2025-06-01"); got != "2025-06-08" {
		t.Errorf("NextWeekStart(2025-06-01) = %s, want 2025-06-08", got)
	}
	if got := NextWeekStart("2024-12-30"); got != "2025-01-06" {
		t.Errorf("NextWeekStart(2024-12-30) = %s, want 2025-01-06", got)
	}
}
