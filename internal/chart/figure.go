// Package chart derives the Plotly figures drawn on the Stocks page.
package chart

import (
	"math"
	"strconv"
)

// Value is a chart ordinate. NaN and infinities encode as JSON null so Plotly leaves a gap.
type Value float64

func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

// Valid reports whether v is a finite number.
func (v Value) Valid() bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Trace is one plotted series.
type Trace struct {
	Type       string   `json:"type"`
	Mode       string   `json:"mode,omitempty"`
	Name       string   `json:"name"`
	X          []string `json:"x"`
	Y          []Value  `json:"y"`
	StackGroup string   `json:"stackgroup,omitempty"`
}

// Axis carries an axis title.
type Axis struct {
	Title string `json:"title"`
}

// Layout is the subset of Plotly layout the dashboard sets.
type Layout struct {
	XAxis      Axis   `json:"xaxis"`
	YAxis      Axis   `json:"yaxis"`
	ShowLegend bool   `json:"showlegend"`
	BarMode    string `json:"barmode,omitempty"`
}

// Figure is a complete Plotly figure.
type Figure struct {
	ID     string  `json:"-"`
	Title  string  `json:"-"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

func toValues(vals []float64) []Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = Value(v)
	}
	return out
}
