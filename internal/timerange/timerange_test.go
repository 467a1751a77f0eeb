package timerange

import (
	"errors"
	"testing"
	"time"
)

func TestResolve_Offsets(t *testing.T) {
	now := time.Date(2025, 7, 28, 15, 4, 5, 0, time.Local)
	today := time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		choice Choice
		days   int
	}{
		{Day, 1},
		{Month, 30},
		{Quarter, 90},
		{HalfYear, 180},
		{Year, 365},
	}
	for _, tt := range tests {
		r := Resolve(tt.choice, now)
		if !r.End.Equal(today) {
			t.Errorf("%s: expected end %v, got %v", tt.choice, today, r.End)
		}
		if want := today.AddDate(0, 0, -tt.days); !r.Start.Equal(want) {
			t.Errorf("%s: expected start %v, got %v", tt.choice, want, r.Start)
		}
		if r.Start.After(r.End) {
			t.Errorf("%s: start after end", tt.choice)
		}
		if r.Days() != tt.days {
			t.Errorf("%s: expected %d days, got %d", tt.choice, tt.days, r.Days())
		}
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("", Year)
	if err != nil || c != Year {
		t.Errorf("empty: expected default 1Y, got %q (%v)", c, err)
	}
	c, err = Parse("3M", Year)
	if err != nil || c != Quarter {
		t.Errorf("3M: got %q (%v)", c, err)
	}
	if _, err := Parse("2W", Year); !errors.Is(err, ErrUnknownChoice) {
		t.Errorf("2W: expected ErrUnknownChoice, got %v", err)
	}
}

func TestChoices_AllHaveOffsets(t *testing.T) {
	for _, c := range Choices() {
		if _, ok := offsets[c]; !ok {
			t.Errorf("choice %s has no offset", c)
		}
	}
	if Offset("bogus") != 365 {
		t.Error("unknown choice should fall back to a year")
	}
}
