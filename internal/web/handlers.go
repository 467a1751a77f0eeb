package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"SRRStocks/internal/chart"
	"SRRStocks/internal/collector"
	"SRRStocks/internal/dashboard"
	"SRRStocks/internal/export"
	"SRRStocks/internal/model"
	"SRRStocks/internal/recorder"
	"SRRStocks/internal/timerange"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler builds every page from request input. It keeps no state between requests.
type Handler struct {
	catalog   dashboard.Catalog
	collector *collector.Collector
	recorder  recorder.Recorder
	logger    *zap.Logger
	now       func() time.Time
	templates *template.Template
}

// NewHandler parses the embedded templates and wires the dependencies.
func NewHandler(opts Options) (*Handler, error) {
	if opts.Collector == nil {
		return nil, errors.New("web: collector is required")
	}
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"money": func(d interface{ StringFixed(int32) string }) string { return d.StringFixed(2) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	h := &Handler{
		catalog:   opts.Catalog,
		collector: opts.Collector,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
		now:       opts.Now,
		templates: tmpl,
	}
	if h.recorder == nil {
		h.recorder = recorder.NewNoopRecorder()
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h, nil
}

// Page renders one section. POST requests additionally handle the simulated forms.
func (h *Handler) Page(id SectionID) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			c.String(http.StatusBadRequest, "invalid form: %v", err)
			return
		}
		form := c.Request.Form

		query, options, symbols, choice, rangeErr := selection(form, h.catalog)
		page := &Page{
			Title:   "SRRstocks",
			Section: id,
			Sidebar: buildSidebar(id, query, options, symbols, choice),
			Metrics: dashboard.Metrics(h.catalog),
			Catalog: h.catalog,
		}
		for _, tx := range h.catalog.Transactions {
			page.Transactions = append(page.Transactions, TransactionRow{
				Date: tx.Date, Stock: tx.Stock, Action: tx.Action, Qty: tx.Qty, Price: tx.Price.String(),
			})
		}

		status := http.StatusOK
		if c.Request.Method == http.MethodPost {
			status = h.handleForm(c, id, page)
		}

		switch id {
		case SectionStocks:
			view, err := h.buildStocks(c.Request.Context(), symbols, choice, h.now())
			if rangeErr != nil {
				view.Warnings = append(view.Warnings, fmt.Sprintf("Unknown time range %q, showing %s", form.Get("range"), choice))
			}
			page.Stocks = view
			if err != nil {
				_ = c.Error(err)
				if errors.Is(err, errProvider) {
					status = http.StatusBadGateway
				} else {
					status = http.StatusInternalServerError
				}
			}
		case SectionWatchlist:
			page.Watchlist = h.watchlist()
		}

		c.HTML(status, "layout.html", page)
	}
}

func (h *Handler) handleForm(c *gin.Context, id SectionID, page *Page) int {
	switch c.PostForm("form") {
	case "trade":
		order, err := dashboard.ParseTradeOrder(c.PostForm("action"), c.PostForm("symbol"), c.PostForm("quantity"))
		if err != nil {
			page.Trade.Error = err.Error()
			return http.StatusUnprocessableEntity
		}
		conf := dashboard.PlaceOrder(order)
		page.Trade = FormResult{Success: conf.Message, Reference: conf.Reference}
		h.logger.Info("Simulated order placed",
			zap.String("reference", conf.Reference),
			zap.String("action", order.Action),
			zap.String("symbol", order.Symbol),
			zap.Int64("quantity", order.Quantity))
	case "settings":
		if id != SectionSettings {
			page.Settings.Error = "settings can only be saved from the Settings section"
			return http.StatusBadRequest
		}
		settings, err := dashboard.ParseSettings(c.PostForm("bank_account"), c.PostForm("mobile"),
			c.PostForm("dob"), c.PostForm("nominee"))
		if err != nil {
			page.Settings.Error = err.Error()
			return http.StatusUnprocessableEntity
		}
		conf := dashboard.SaveSettings(settings)
		page.Settings = FormResult{Success: conf.Message, Reference: conf.Reference}
		h.logger.Info("Simulated settings saved", zap.String("reference", conf.Reference))
	default:
		page.Trade.Error = fmt.Sprintf("unknown form %q", c.PostForm("form"))
		return http.StatusBadRequest
	}
	return http.StatusOK
}

func (h *Handler) watchlist() []WatchRow {
	snaps, err := h.recorder.LatestSnapshots()
	if err != nil {
		h.logger.Warn("Load watchlist snapshots failed", zap.Error(err))
		snaps = nil
	}
	rows := make([]WatchRow, 0, len(h.catalog.Watchlist))
	for _, s := range h.catalog.Watchlist {
		row := WatchRow{Symbol: s}
		if snap, ok := snaps[s]; ok {
			row.Close = formatFloat(snap.Close, 2)
			row.Volume = formatFloat(snap.Volume, 0)
			row.Date = snap.Date.Format(model.DateLayout)
		}
		rows = append(rows, row)
	}
	return rows
}

// Health reports liveness and the configured backends.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"provider": h.collector.Fetcher.Name(),
		"cache":    h.collector.Cache.Name(),
		"time":     h.now().UTC().Format(time.RFC3339),
	})
}

type historyResponse struct {
	Symbols  []string                 `json:"symbols"`
	Range    timerange.Choice         `json:"range"`
	Start    string                   `json:"start"`
	End      string                   `json:"end"`
	Dates    []string                 `json:"dates"`
	Columns  []string                 `json:"columns"`
	Values   map[string][]chart.Value `json:"values"`
	Failures []model.SymbolFailure    `json:"failures,omitempty"`
}

// loadTable resolves symbols and range from the query string and collects the table.
// It writes the error response itself and returns ok=false when the request cannot be served.
func (h *Handler) loadTable(c *gin.Context) (table *model.PriceTable, symbols []string, choice timerange.Choice, window model.TimeRange, ok bool) {
	q := c.Request.URL.Query()
	q.Set("submitted", "1")
	_, _, symbols, choice, rangeErr := selection(q, h.catalog)
	if rangeErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": rangeErr.Error()})
		return nil, nil, "", window, false
	}
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no known symbols selected"})
		return nil, nil, "", window, false
	}

	window = timerange.Resolve(choice, h.now())
	table, err := h.collector.Collect(c.Request.Context(), symbols, window)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return nil, nil, "", window, false
	}
	return table, symbols, choice, window, true
}

// History returns the normalized table as JSON. Missing values encode as null.
func (h *Handler) History(c *gin.Context) {
	table, symbols, choice, window, ok := h.loadTable(c)
	if !ok {
		return
	}
	resp := historyResponse{
		Symbols:  symbols,
		Range:    choice,
		Start:    window.Start.Format(model.DateLayout),
		End:      window.End.Format(model.DateLayout),
		Dates:    table.DateStrings(),
		Columns:  table.Order,
		Values:   make(map[string][]chart.Value, len(table.Order)),
		Failures: table.Failures,
	}
	for _, name := range table.Order {
		vals := table.Columns[name]
		out := make([]chart.Value, len(vals))
		for i, v := range vals {
			out[i] = chart.Value(v)
		}
		resp.Values[name] = out
	}
	c.JSON(http.StatusOK, resp)
}

// ExportParquet streams the selected history as a long-format Parquet file.
func (h *Handler) ExportParquet(c *gin.Context) {
	table, symbols, choice, window, ok := h.loadTable(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, export.Rows(table, symbols)); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	name := fmt.Sprintf("srrstocks-%s-%s.parquet", choice, window.End.Format(model.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/vnd.apache.parquet", buf.Bytes())
}
