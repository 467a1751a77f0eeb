package calculator

import (
	"math"

	"SRRStocks/internal/model"
)

// Mean returns the arithmetic mean of the non-NaN values, or NaN when there are none.
func Mean(values []float64) float64 {
	sum := 0.0
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Range scans values and returns the high and low, skipping NaN.
// Both are NaN when no valid value exists.
func Range(values []float64) (high, low float64) {
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
	}
	if math.IsInf(high, -1) {
		return math.NaN(), math.NaN()
	}
	return high, low
}

// ChangePercent returns the percentage move from the first to the last valid value.
func ChangePercent(values []float64) float64 {
	first, last := math.NaN(), math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(first) {
			first = v
		}
		last = v
	}
	if math.IsNaN(first) || first == 0 {
		return math.NaN()
	}
	return (last - first) / first * 100
}

// Summary holds per-symbol statistics over the fetched window.
type Summary struct {
	Symbol        string
	Observations  int
	MeanClose     float64
	High          float64
	Low           float64
	LastClose     float64
	ChangePercent float64
}

// Summarize computes a Summary for every symbol with a close column in the table.
func Summarize(table *model.PriceTable, symbols []string) []Summary {
	out := make([]Summary, 0, len(symbols))
	for _, s := range symbols {
		closes, err := table.Series(model.FieldClose, s)
		if err != nil {
			continue
		}
		sum := Summary{Symbol: s, LastClose: math.NaN()}
		for _, v := range closes {
			if !math.IsNaN(v) {
				sum.Observations++
				sum.LastClose = v
			}
		}
		sum.MeanClose = Mean(closes)
		sum.ChangePercent = ChangePercent(closes)
		if highs, err := table.Series(model.FieldHigh, s); err == nil {
			sum.High, _ = Range(highs)
		} else {
			sum.High, _ = Range(closes)
		}
		if lows, err := table.Series(model.FieldLow, s); err == nil {
			_, sum.Low = Range(lows)
		} else {
			_, sum.Low = Range(closes)
		}
		out = append(out, sum)
	}
	return out
}
