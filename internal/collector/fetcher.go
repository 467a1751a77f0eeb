package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"SRRStocks/internal/model"
)

// ErrNoData is reported for a symbol with no tradable history in the window.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for bulk historical price requests.
// Symbols without data are listed in PriceFrame.Failures rather than failing the call;
// an error is returned only when the request as a whole could not be served.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbols []string, window model.TimeRange) (*model.PriceFrame, error)
	Name() string
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
