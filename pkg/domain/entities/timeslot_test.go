package entities

import "testing"

func TestCalendar_AddWrapsIntoNextPeriod(t *testing.T) {
	cal, err := NewCalendar(3, 4)
	if err != nil {
		t.Fatalf("Expected valid calendar: %v", err)
	}

	testCases := []struct {
		name     string
		from     TimeSlot
		lead     int
		expected TimeSlot
	}{
		{"zero lead is same slot", TimeSlot{1, 2}, 0, TimeSlot{1, 2}},
		{"within period", TimeSlot{1, 1}, 2, TimeSlot{1, 3}},
		{"wraps to next period", TimeSlot{1, 2}, 2, TimeSlot{2, 1}},
		{"lands on last sub-period", TimeSlot{2, 1}, 2, TimeSlot{2, 3}},
		{"spans several periods", TimeSlot{1, 3}, 7, TimeSlot{4, 1}},
		{"exact period multiple", TimeSlot{1, 1}, 3, TimeSlot{2, 1}},
		{"beyond horizon still splits", TimeSlot{4, 3}, 1, TimeSlot{5, 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := cal.Add(tc.from, tc.lead)
			if got != tc.expected {
				t.Errorf("Expected %s + %d = %s, got %s", tc.from, tc.lead, tc.expected, got)
			}
		})
	}
}

func TestCalendar_RoundTrip(t *testing.T) {
	for _, s := range []int{1, 3, 5, 21} {
		cal := Calendar{SubPeriodsPerPeriod: s, Periods: 6}
		for idx := 0; idx < cal.Len(); idx++ {
			for lead := 0; lead <= 2*s+1; lead++ {
				order := cal.Slot(SlotIndex(idx))
				arrival := cal.Add(order, lead)

				if cal.Index(arrival) != cal.Index(order)+SlotIndex(lead) {
					t.Fatalf("S=%d: linearized(%s) = %d, want %d + %d",
						s, arrival, cal.Index(arrival), cal.Index(order), lead)
				}
				if arrival.SubPeriod < 1 || arrival.SubPeriod > s {
					t.Fatalf("S=%d: sub-period %d out of range for %s", s, arrival.SubPeriod, arrival)
				}
				if cal.Slot(cal.Index(arrival)) != arrival {
					t.Fatalf("S=%d: de-linearizing %s is not stable", s, arrival)
				}
			}
		}
	}
}

func TestCalendar_NegativeIndexSplits(t *testing.T) {
	cal := Calendar{SubPeriodsPerPeriod: 3, Periods: 2}
	got := cal.Slot(-1)
	if got != (TimeSlot{Period: 0, SubPeriod: 3}) {
		t.Errorf("Expected P0.3 for index -1, got %s", got)
	}
	if cal.Contains(-1) || cal.Contains(6) || !cal.Contains(5) {
		t.Errorf("Contains disagrees with horizon bounds")
	}
}

func TestTimeSlot_Ordering(t *testing.T) {
	a := TimeSlot{1, 3}
	b := TimeSlot{2, 1}
	if !a.Before(b) || b.Before(a) || a.Compare(a) != 0 {
		t.Errorf("Expected %s before %s", a, b)
	}
}

func TestCalendar_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		sub, period int
		expectError string
	}{
		{"zero sub-periods", 0, 1, "sub-periods per period must be positive, got 0"},
		{"negative periods", 21, -1, "periods must be positive, got -1"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCalendar(tc.sub, tc.period)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}

	cal := Calendar{SubPeriodsPerPeriod: 21, Periods: 2}
	if _, err := cal.ParseSlot(1, 22); err == nil {
		t.Errorf("Expected sub-period 22 to be rejected")
	}
	if _, err := cal.ParseSlot(3, 1); err == nil {
		t.Errorf("Expected period 3 to be rejected")
	}
}

func TestBusinessDays(t *testing.T) {
	testCases := map[int]int{0: 0, 1: 1, 3: 2, 7: 5, 14: 10, 30: 21, 45: 32}
	for cal, want := range testCases {
		if got := BusinessDays(cal); got != want {
			t.Errorf("BusinessDays(%d) = %d, want %d", cal, got, want)
		}
	}
}
