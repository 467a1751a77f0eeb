package cache

import (
	"context"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"SRRStocks/internal/model"
)

func TestRedisCache_UnreachableIsAMiss(t *testing.T) {
	c := NewRedis("127.0.0.1:1", "", 0, time.Minute, zap.NewNop())
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.Ping(ctx); err == nil {
		t.Fatal("expected ping to fail against a closed port")
	}
	c.Set(ctx, "k", &model.PriceFrame{Symbols: []string{"AAPL"}})
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected a miss when redis is unreachable")
	}
	if c.Name() != "redis" {
		t.Errorf("unexpected name %q", c.Name())
	}
}

func TestFrameCodec_KeepsNaNCells(t *testing.T) {
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	frame := &model.PriceFrame{
		Dates: []time.Time{day, day.AddDate(0, 0, 1)},
		Columns: []model.FrameColumn{
			{Key: model.ColumnKey{Field: model.FieldClose, Symbol: "AAPL"}, Values: []float64{201.5, math.NaN()}},
			{Key: model.ColumnKey{Field: model.FieldVolume, Symbol: "AAPL"}, Values: []float64{math.NaN(), 1200}},
		},
		Symbols:  []string{"AAPL"},
		Failures: []model.SymbolFailure{{Symbol: "GONE", Reason: "no data returned"}},
	}

	data, err := encodeFrame(frame)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeFrame(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(got.Dates) != 2 || !got.Dates[1].Equal(frame.Dates[1]) {
		t.Errorf("dates not preserved: %v", got.Dates)
	}
	closes := got.Columns[0].Values
	if got.Columns[0].Key.Name() != "Close_AAPL" || closes[0] != 201.5 || !math.IsNaN(closes[1]) {
		t.Errorf("close column not preserved: %+v", got.Columns[0])
	}
	if !math.IsNaN(got.Columns[1].Values[0]) || got.Columns[1].Values[1] != 1200 {
		t.Errorf("volume column not preserved: %+v", got.Columns[1])
	}
	if len(got.Failures) != 1 || got.Failures[0].Symbol != "GONE" {
		t.Errorf("failures not preserved: %+v", got.Failures)
	}
}

func TestFrameCodec_RejectsGarbage(t *testing.T) {
	if _, err := decodeFrame([]byte("not gob")); err == nil {
		t.Error("expected a decode error")
	}
}
