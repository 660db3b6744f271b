package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsWorkingDay_StandardWeek(t *testing.T) {
	c := NewStandardWeek("std")

	tests := []struct {
		name string
		d    time.Time
		want bool
	}{
		{"monday", date(2025, 11, 17), true},
		{"friday", date(2025, 11, 21), true},
		{"saturday", date(2025, 11, 22), false},
		{"sunday", date(2025, 11, 23), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsWorkingDay(tt.d); got != tt.want {
				t.Errorf("IsWorkingDay(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestIsWorkingDay_Holiday(t *testing.T) {
	c := New24x7()
	c.AddHoliday(date(2025, 12, 25))

	if c.IsWorkingDay(date(2025, 12, 25)) {
		t.Error("expected holiday to be non-working")
	}
	if !c.IsWorkingDay(date(2025, 12, 24)) {
		t.Error("expected day before holiday to be working")
	}
}

func TestAddWorkingDays_24x7(t *testing.T) {
	c := New24x7()
	got := c.AddWorkingDays(date(2025, 11, 15), 5)
	want := date(2025, 11, 20)
	if !got.Equal(want) {
		t.Errorf("AddWorkingDays = %v, want %v", got, want)
	}
}

func TestAddWorkingDays_SkipsWeekend(t *testing.T) {
	c := NewStandardWeek("std")
	// Friday 2025-11-21 + 1 working day should land on Monday 2025-11-24.
	got := c.AddWorkingDays(date(2025, 11, 21), 1)
	want := date(2025, 11, 24)
	if !got.Equal(want) {
		t.Errorf("AddWorkingDays = %v, want %v", got, want)
	}
}

func TestAddWorkingDays_ZeroIsNoop(t *testing.T) {
	c := New24x7()
	d := date(2025, 11, 15)
	got := c.AddWorkingDays(d, 0)
	if !got.Equal(d) {
		t.Errorf("AddWorkingDays(d, 0) = %v, want %v", got, d)
	}
}

func TestSubtractWorkingDays_RoundTrip(t *testing.T) {
	c := NewStandardWeek("std")
	required := date(2025, 11, 20)
	order := c.SubtractWorkingDays(required, 5)
	roundTrip := c.AddWorkingDays(order, 5)
	if !roundTrip.Equal(required) {
		t.Errorf("round trip = %v, want %v (order date %v)", roundTrip, required, order)
	}
}

func TestWorkingDaysBetween(t *testing.T) {
	c := New24x7()
	a := date(2025, 11, 15)
	b := date(2025, 11, 20)
	if got := c.WorkingDaysBetween(a, b); got != 5 {
		t.Errorf("WorkingDaysBetween = %d, want 5", got)
	}
}

func TestNextPreviousWorkingDay(t *testing.T) {
	c := NewStandardWeek("std")
	friday := date(2025, 11, 21)
	if next := c.NextWorkingDay(friday); !next.Equal(date(2025, 11, 24)) {
		t.Errorf("NextWorkingDay(friday) = %v, want Monday", next)
	}
	monday := date(2025, 11, 24)
	if prev := c.PreviousWorkingDay(monday); !prev.Equal(date(2025, 11, 21)) {
		t.Errorf("PreviousWorkingDay(monday) = %v, want Friday", prev)
	}
}
