package selector

import (
	"strings"
	"testing"
)

var candidates = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "NFLX", "IBM", "INTC",
	"TATASTEEL.NS", "RELIANCE.NS", "DIXON.NS", "INFY.NS", "NIFTYBEES.NS",
}

func TestFilter_Subset(t *testing.T) {
	queries := []string{"", "a", "ns", ".NS", "In", "zzz", "AAPL", " "}
	for _, q := range queries {
		got := Filter(q, candidates)
		for _, s := range got {
			if q != "" && !strings.Contains(s, strings.ToUpper(q)) {
				t.Errorf("query %q: %q does not contain query", q, s)
			}
			found := false
			for _, c := range candidates {
				if c == s {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("query %q: %q not in candidate list", q, s)
			}
		}
	}
}

func TestFilter_Cases(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", len(candidates)},
		{"ns", 5},
		{"in", 2}, // INTC, INFY.NS
		{"zzz", 0},
		{"aapl", 1},
		{" ", 0},
		{" aapl", 0},
	}
	for _, tt := range tests {
		if got := Filter(tt.query, candidates); len(got) != tt.want {
			t.Errorf("query %q: expected %d matches, got %d (%v)", tt.query, tt.want, len(got), got)
		}
	}
}

func TestFilter_EmptyQueryCopies(t *testing.T) {
	got := Filter("", candidates)
	got[0] = "CHANGED"
	if candidates[0] != "AAPL" {
		t.Fatal("Filter must not alias the candidate list")
	}
}

func TestSelect(t *testing.T) {
	options := Filter("a", candidates)
	got := Select([]string{"AAPL", "TATASTEEL.NS", "AAPL", "MSFT"}, options)
	if len(got) != 2 || got[0] != "AAPL" || got[1] != "TATASTEEL.NS" {
		t.Errorf("unexpected selection %v", got)
	}
	if got := Select(nil, options); len(got) != 0 {
		t.Errorf("expected empty selection, got %v", got)
	}
}
