// Package timerange maps the sidebar range choices onto fetch windows.
package timerange

import (
	"errors"
	"fmt"
	"time"

	"SRRStocks/internal/model"
)

// Choice is one of the fixed look-back ranges offered in the sidebar.
type Choice string

const (
	Day      Choice = "1D"
	Month    Choice = "1M"
	Quarter  Choice = "3M"
	HalfYear Choice = "6M"
	Year     Choice = "1Y"
)

// ErrUnknownChoice is returned by Parse for values outside Choices.
var ErrUnknownChoice = errors.New("unknown time range")

var offsets = map[Choice]int{
	Day:      1,
	Month:    30,
	Quarter:  90,
	HalfYear: 180,
	Year:     365,
}

// Choices returns the ranges in display order.
func Choices() []Choice {
	return []Choice{Day, Month, Quarter, HalfYear, Year}
}

// Parse validates s. An empty string yields def.
func Parse(s string, def Choice) (Choice, error) {
	if s == "" {
		return def, nil
	}
	c := Choice(s)
	if _, ok := offsets[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownChoice, s)
	}
	return c, nil
}

// Offset returns the look-back in days. Unknown choices fall back to a year.
func Offset(c Choice) int {
	if d, ok := offsets[c]; ok {
		return d
	}
	return offsets[Year]
}

// Resolve returns the window ending today (as seen from now) and starting Offset(c) days earlier.
func Resolve(c Choice, now time.Time) model.TimeRange {
	end := model.Date(now)
	return model.TimeRange{
		Start: end.AddDate(0, 0, -Offset(c)),
		End:   end,
	}
}
