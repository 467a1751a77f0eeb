package chart

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"SRRStocks/internal/model"
)

func testTable() *model.PriceTable {
	tbl := model.NewPriceTable()
	tbl.Dates = []time.Time{
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC),
	}
	tbl.Symbols = []string{"AAPL", "TATASTEEL.NS", "EMPTY"}
	tbl.AddColumn("Close_AAPL", []float64{200, 210, 220})
	tbl.AddColumn("Volume_AAPL", []float64{1e6, 2e6, 3e6})
	tbl.AddColumn("Close_TATASTEEL.NS", []float64{150, math.NaN(), 160})
	tbl.AddColumn("Volume_TATASTEEL.NS", []float64{5e5, math.NaN(), 6e5})
	tbl.AddColumn("Close_EMPTY", []float64{math.NaN(), math.NaN(), math.NaN()})
	tbl.AddColumn("Volume_EMPTY", []float64{math.NaN(), math.NaN(), math.NaN()})
	return tbl
}

func TestClosingPrice_OneTracePerSymbol(t *testing.T) {
	fig, err := ClosingPrice(testTable(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fig.Data) != 1 || fig.Data[0].Name != "AAPL" {
		t.Fatalf("expected one AAPL series, got %+v", fig.Data)
	}
	tr := fig.Data[0]
	if tr.Type != "scatter" || tr.Mode != "lines" {
		t.Errorf("unexpected trace kind %s/%s", tr.Type, tr.Mode)
	}
	if tr.X[0] != "2025-07-01" || tr.Y[2] != 220 {
		t.Errorf("unexpected points x=%v y=%v", tr.X, tr.Y)
	}
	if fig.Layout.XAxis.Title != "Date" || fig.Layout.YAxis.Title != "Price" {
		t.Errorf("unexpected axis titles %+v", fig.Layout)
	}
}

func TestVolume_SharedStackGroup(t *testing.T) {
	fig, err := Volume(testTable(), []string{"AAPL", "TATASTEEL.NS"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tr := range fig.Data {
		if tr.StackGroup != StackGroup {
			t.Errorf("%s: expected stack group %q, got %q", tr.Name, StackGroup, tr.StackGroup)
		}
	}
}

func TestAverageClose(t *testing.T) {
	fig, err := AverageClose(testTable(), []string{"AAPL", "TATASTEEL.NS", "EMPTY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fig.Data) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(fig.Data))
	}
	if fig.Data[0].Y[0] != 210 {
		t.Errorf("expected AAPL mean 210, got %v", fig.Data[0].Y[0])
	}
	if fig.Data[1].Y[0] != 155 {
		t.Errorf("expected missing values skipped giving 155, got %v", fig.Data[1].Y[0])
	}
	if fig.Data[2].Y[0].Valid() {
		t.Errorf("expected undefined mean for EMPTY, got %v", fig.Data[2].Y[0])
	}

	// An undefined mean must still encode.
	out, err := json.Marshal(fig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"y":[null]`) {
		t.Errorf("expected null bar in %s", out)
	}
}

func TestMissingColumn(t *testing.T) {
	_, err := ClosingPrice(testTable(), []string{"AAPL", "MSFT"})
	if !errors.Is(err, model.ErrColumnMissing) {
		t.Errorf("expected ErrColumnMissing, got %v", err)
	}
	if _, err := All(testTable(), []string{"MSFT"}); !errors.Is(err, model.ErrColumnMissing) {
		t.Errorf("expected ErrColumnMissing from All, got %v", err)
	}
}

func TestValue_MarshalJSON(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Value(1.5), "1.5"},
		{Value(math.NaN()), "null"},
		{Value(math.Inf(1)), "null"},
		{Value(1e6), "1000000"},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.v)
		if err != nil {
			t.Fatalf("marshal %v: %v", tt.v, err)
		}
		if string(got) != tt.want {
			t.Errorf("expected %s, got %s", tt.want, got)
		}
	}
}

func TestAll_Order(t *testing.T) {
	figs, err := All(testTable(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"closing-price", "volume", "average-close"}
	for i, f := range figs {
		if f.ID != want[i] {
			t.Errorf("figure %d: expected %s, got %s", i, want[i], f.ID)
		}
	}
}
