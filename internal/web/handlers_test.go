package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"SRRStocks/internal/collector"
	"SRRStocks/internal/dashboard"
	"SRRStocks/internal/recorder"
)

var fixedNow = time.Date(2025, 7, 31, 15, 30, 0, 0, time.UTC)

type stubRecorder struct {
	recorder.NoopRecorder
	snaps map[string]recorder.Snapshot
}

func (s *stubRecorder) LatestSnapshots() (map[string]recorder.Snapshot, error) { return s.snaps, nil }

func newTestServer(t *testing.T, mock *collector.MockFetcher, rec recorder.Recorder) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, err := New(Options{
		Addr:      "127.0.0.1:0",
		Catalog:   dashboard.DefaultCatalog(),
		Collector: collector.NewCollector(mock, nil, nil, zap.NewNop()),
		Recorder:  rec,
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func do(t *testing.T, srv *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestRootRedirectsToStocks(t *testing.T) {
	srv := newTestServer(t, &collector.MockFetcher{}, nil)
	w := do(t, srv, http.MethodGet, "/", nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/stocks" {
		t.Errorf("expected redirect to /stocks, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestStocks_DefaultSelection(t *testing.T) {
	mock := &collector.MockFetcher{}
	srv := newTestServer(t, mock, nil)

	w := do(t, srv, http.MethodGet, "/stocks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"Close_AAPL", "Close_TATASTEEL.NS", "closing-price", "volume", "average-close", "Wallet Balance"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if mock.Calls() != 1 {
		t.Errorf("expected one fetch, got %d", mock.Calls())
	}
}

func TestStocks_EmptySelectionSkipsFetch(t *testing.T) {
	mock := &collector.MockFetcher{}
	srv := newTestServer(t, mock, nil)

	w := do(t, srv, http.MethodGet, "/stocks?submitted=1&range=1M", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.Calls() != 0 {
		t.Errorf("expected no fetch, got %d", mock.Calls())
	}
	body := w.Body.String()
	if strings.Contains(body, "Plotly.newPlot") {
		t.Error("no charts expected for an empty selection")
	}
	if !strings.Contains(body, "Select at least one stock") {
		t.Error("expected the empty selection notice")
	}
}

func TestStocks_SingleSymbolOneMonth(t *testing.T) {
	mock := &collector.MockFetcher{}
	srv := newTestServer(t, mock, nil)

	w := do(t, srv, http.MethodGet, "/stocks?submitted=1&symbols=AAPL&range=1M", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "2025-07-01 to 2025-07-31") {
		t.Error("expected the one month window in the preview caption")
	}
	if strings.Count(body, `"name":"AAPL"`) != 3 {
		t.Errorf("expected one AAPL series per chart, got %d", strings.Count(body, `"name":"AAPL"`))
	}
	if strings.Contains(body, "TATASTEEL.NS</td>") {
		t.Error("defaults must not apply once the sidebar was submitted")
	}
}

func TestStocks_SearchFiltersDefaults(t *testing.T) {
	mock := &collector.MockFetcher{}
	srv := newTestServer(t, mock, nil)

	w := do(t, srv, http.MethodGet, "/stocks?q=ns", nil)
	body := w.Body.String()
	if !strings.Contains(body, "Close_TATASTEEL.NS") {
		t.Error("expected TATASTEEL.NS to stay selected")
	}
	if strings.Contains(body, "Close_AAPL") {
		t.Error("AAPL is filtered out of the options and must not be fetched")
	}
}

func TestStocks_BlankSearchMatchesNothing(t *testing.T) {
	mock := &collector.MockFetcher{}
	srv := newTestServer(t, mock, nil)

	w := do(t, srv, http.MethodGet, "/stocks?q=+", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "<option value=") {
		t.Error("a blank-space query should leave no symbol options")
	}
	if mock.Calls() != 0 {
		t.Errorf("expected no fetch, got %d", mock.Calls())
	}
}

func TestStocks_MissingSymbolWarning(t *testing.T) {
	mock := &collector.MockFetcher{Missing: map[string]bool{"MSFT": true}}
	srv := newTestServer(t, mock, nil)

	w := do(t, srv, http.MethodGet, "/stocks?submitted=1&symbols=AAPL&symbols=MSFT&range=3M", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "No data for MSFT") {
		t.Error("expected a warning for MSFT")
	}
	if !strings.Contains(body, "Close_AAPL") || strings.Contains(body, `"name":"MSFT"`) {
		t.Error("expected AAPL charts only")
	}
}

func TestStocks_ProviderError(t *testing.T) {
	mock := &collector.MockFetcher{Err: errors.New("upstream unavailable")}
	srv := newTestServer(t, mock, nil)

	w := do(t, srv, http.MethodGet, "/stocks", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Could not load price history") {
		t.Error("expected the error panel")
	}
}

func TestStocks_UnknownRange(t *testing.T) {
	srv := newTestServer(t, &collector.MockFetcher{}, nil)
	w := do(t, srv, http.MethodGet, "/stocks?submitted=1&symbols=AAPL&range=2W", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Unknown time range") {
		t.Error("expected a warning for the unknown range")
	}
}

func TestTradeForm(t *testing.T) {
	mock := &collector.MockFetcher{}
	srv := newTestServer(t, mock, nil)

	w := do(t, srv, http.MethodPost, "/funds", url.Values{
		"form": {"trade"}, "action": {"Buy"}, "symbol": {"aapl"}, "quantity": {"5"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Buy order placed for 5 shares of AAPL (Simulated)") {
		t.Error("expected the order confirmation")
	}
	if mock.Calls() != 0 {
		t.Error("the funds section must not fetch prices")
	}

	w = do(t, srv, http.MethodPost, "/funds", url.Values{"form": {"trade"}, "action": {"Buy"}, "quantity": {"5"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for a missing symbol, got %d", w.Code)
	}
}

func TestSettingsForm(t *testing.T) {
	srv := newTestServer(t, &collector.MockFetcher{}, nil)

	w := do(t, srv, http.MethodPost, "/settings", url.Values{
		"form": {"settings"}, "bank_account": {"123"}, "dob": {"1990-01-02"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Settings saved (simulated).") || !strings.Contains(body, "GANGAFORGE") {
		t.Error("expected the confirmation and the past transactions table")
	}

	w = do(t, srv, http.MethodPost, "/watchlist", url.Values{"form": {"settings"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 outside the settings section, got %d", w.Code)
	}
}

func TestFundsPage(t *testing.T) {
	srv := newTestServer(t, &collector.MockFetcher{}, nil)
	body := do(t, srv, http.MethodGet, "/funds", nil).Body.String()
	if !strings.Contains(body, "Parag Parikh Flexi Cap Fund") || !strings.Contains(body, "Live NAV not connected") {
		t.Error("expected the funds table and NAV notice")
	}
}

func TestWatchlistPage(t *testing.T) {
	rec := &stubRecorder{snaps: map[string]recorder.Snapshot{
		"NVDA": {Symbol: "NVDA", Date: time.Date(2025, 7, 30, 0, 0, 0, 0, time.UTC), Close: 177.87, Volume: 1200},
	}}
	srv := newTestServer(t, &collector.MockFetcher{}, rec)

	body := do(t, srv, http.MethodGet, "/watchlist", nil).Body.String()
	for _, want := range []string{"DIXON.NS", "NIFTYBEES.NS", "177.87", "2025-07-30"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &collector.MockFetcher{}, nil)
	w := do(t, srv, http.MethodGet, "/api/health", nil)

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" || resp["provider"] != "mock" || resp["cache"] != "none" {
		t.Errorf("unexpected health %v", resp)
	}
}

func TestHistoryAPI(t *testing.T) {
	srv := newTestServer(t, &collector.MockFetcher{}, nil)

	w := do(t, srv, http.MethodGet, "/api/history?symbols=AAPL&range=1M", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Start   string                `json:"start"`
		End     string                `json:"end"`
		Dates   []string              `json:"dates"`
		Columns []string              `json:"columns"`
		Values  map[string][]*float64 `json:"values"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Start != "2025-07-01" || resp.End != "2025-07-31" {
		t.Errorf("unexpected window %s..%s", resp.Start, resp.End)
	}
	if len(resp.Values["Close_AAPL"]) != len(resp.Dates) || len(resp.Values["Volume_AAPL"]) != len(resp.Dates) {
		t.Errorf("expected Close_AAPL and Volume_AAPL aligned with dates, got columns %v", resp.Columns)
	}

	w = do(t, srv, http.MethodGet, "/api/history?symbols=UNKNOWN", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for symbols outside the catalog, got %d", w.Code)
	}
}

func TestExportParquet(t *testing.T) {
	srv := newTestServer(t, &collector.MockFetcher{}, nil)

	w := do(t, srv, http.MethodGet, "/stocks/export.parquet?symbols=AAPL,MSFT&range=1M", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PAR1")) {
		t.Error("expected a parquet payload")
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "srrstocks-1M-2025-07-31.parquet") {
		t.Errorf("unexpected content disposition %q", cd)
	}
}
