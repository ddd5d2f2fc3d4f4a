package store

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2014-11-02", Date{2014, 11, 2}, true},
		{"2000-02-29", Date{2000, 2, 29}, true},
		{"2024-02-29", Date{2024, 2, 29}, true},
		{"1900-02-29", Date{}, false},
		{"2023-02-29", Date{}, false},
		{"2014-04-31", Date{}, false},
		{"2014-13-01", Date{}, false},
		{"2014-00-10", Date{}, false},
		{"2014-1-2", Date{}, false},
		{"buy milk", Date{}, false},
		{"", Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if !tt.ok {
				if !errors.Is(err, ErrInvalidDate) {
					t.Fatalf("ParseDate(%q) error = %v, want ErrInvalidDate", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Fatalf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestDateCompareAndAddDays(t *testing.T) {
	a := Date{2014, 11, 1}
	b := Date{2014, 11, 2}
	if !a.Before(b) || b.Before(a) || a.Compare(a) != 0 {
		t.Fatal("Compare ordering is wrong")
	}
	if got := (Date{2024, 2, 28}).AddDays(1); got != (Date{2024, 2, 29}) {
		t.Fatalf("AddDays leap = %v", got)
	}
	if got := (Date{2014, 1, 1}).AddDays(-1); got != (Date{2013, 12, 31}) {
		t.Fatalf("AddDays back = %v", got)
	}
}

func TestToday(t *testing.T) {
	fixClock(t, time.Date(2020, 2, 29, 23, 59, 0, 0, time.Local))
	if got := Today(); got != (Date{2020, 2, 29}) {
		t.Fatalf("Today() = %v", got)
	}
}

func TestSortDatesNumeric(t *testing.T) {
	dates := []string{"2014-11-2", "2014-10-15", "garbage", "2014-11-01", "2013-12-31", "also bad"}
	sortDates(dates)
	want := []string{"2013-12-31", "2014-10-15", "2014-11-01", "2014-11-2", "garbage", "also bad"}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("sortDates = %v, want %v", dates, want)
		}
	}
}
