package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParseFrom(t *testing.T) {
	today := New(2025, time.August, 15)

	testCases := []struct {
		input string
		want  Date
	}{
		{"2026-12-31", New(2026, time.December, 31)},
		{"2026-1-5", New(2026, time.January, 5)},
		{"2026-02", New(2026, time.February, 28)},
		{"+10d", New(2025, time.August, 25)},
		{"-2w", New(2025, time.August, 1)},
		{"+6m", New(2026, time.February, 15)},
		{"+1y", New(2026, time.August, 15)},
		{" 2025-09-01 ", New(2025, time.September, 1)},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseFrom(tc.input, today)
			if err != nil {
				t.Fatalf("ParseFrom(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseFrom(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}

	for _, bad := range []string{"", "tomorrow", "+3x", "2025-13-01"} {
		if _, err := ParseFrom(bad, today); err == nil {
			t.Errorf("ParseFrom(%q) expected an error", bad)
		}
	}
}

func TestMonthsUntil(t *testing.T) {
	from := New(2025, time.January, 15)

	testCases := []struct {
		name string
		to   Date
		want int
	}{
		{"past", New(2024, time.December, 1), 0},
		{"same day", from, 0},
		{"a few days", New(2025, time.January, 20), 1},
		{"exact month", New(2025, time.February, 15), 1},
		{"month and a day", New(2025, time.February, 16), 2},
		{"a year", New(2026, time.January, 15), 12},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := from.MonthsUntil(tc.to); got != tc.want {
				t.Errorf("MonthsUntil(%v) = %d, want %d", tc.to, got, tc.want)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	d := New(2026, time.June, 30)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `"2026-06-30"` {
		t.Errorf("Marshal() = %s, want %q", data, "2026-06-30")
	}
	var got Date
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got != d {
		t.Errorf("Unmarshal() = %v, want %v", got, d)
	}

	var zero Date
	if err := json.Unmarshal([]byte(`""`), &zero); err != nil || !zero.IsZero() {
		t.Errorf("Unmarshal(\"\") = %v, %v; want zero date", zero, err)
	}
}
