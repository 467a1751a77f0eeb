package model

import "time"

// OHLCV represents a single daily bar. AdjClose is NaN when the provider does not report it.
type OHLCV struct {
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// Field names a per-symbol column of the price table.
type Field string

const (
	FieldOpen     Field = "Open"
	FieldHigh     Field = "High"
	FieldLow      Field = "Low"
	FieldClose    Field = "Close"
	FieldAdjClose Field = "AdjClose"
	FieldVolume   Field = "Volume"
)

// Fields lists the fields in the order providers emit them.
var Fields = []Field{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldAdjClose, FieldVolume}

// Value extracts the field from a bar.
func (b OHLCV) Value(f Field) float64 {
	switch f {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldClose:
		return b.Close
	case FieldAdjClose:
		return b.AdjClose
	case FieldVolume:
		return b.Volume
	}
	return 0
}

// TimeRange is a [Start, End) window of civil dates at UTC midnight.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the length of the window in days.
func (r TimeRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Date truncates t to its civil date at UTC midnight, keeping t's local calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateLayout is the layout used whenever a date is rendered as text.
const DateLayout = "2006-01-02"
