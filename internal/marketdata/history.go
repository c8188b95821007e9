package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"github.com/quotelab/tickmark/internal/observability"
)

const (
	defaultBaseURL    = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultCacheSize  = 64
	defaultFetchLimit = 4
	historyUserAgent  = "tickmark/1.0"
)

// HistoryClient fetches historical candles over HTTP with retries and a
// small in-process cache keyed by symbol, interval and range.
type HistoryClient struct {
	base      string
	http      *retryablehttp.Client
	cache     *lru.Cache
	cacheSize int
	logger    *observability.CoreLogger
}

// HistoryOption customizes a HistoryClient.
type HistoryOption func(*HistoryClient)

// WithBaseURL points the client at a different chart endpoint. Useful for
// tests and self-hosted mirrors.
func WithBaseURL(base string) HistoryOption {
	return func(c *HistoryClient) { c.base = base }
}

// WithCacheSize bounds the response cache.
func WithCacheSize(size int) HistoryOption {
	return func(c *HistoryClient) { c.cacheSize = size }
}

// WithRetryMax caps the number of HTTP retries per request.
func WithRetryMax(n int) HistoryOption {
	return func(c *HistoryClient) { c.http.RetryMax = n }
}

// WithRetryWait bounds the retry wait window.
func WithRetryWait(min, max time.Duration) HistoryOption {
	return func(c *HistoryClient) {
		c.http.RetryWaitMin = min
		c.http.RetryWaitMax = max
	}
}

// WithHTTPTimeout bounds each underlying HTTP request.
func WithHTTPTimeout(timeout time.Duration) HistoryOption {
	return func(c *HistoryClient) { c.http.HTTPClient.Timeout = timeout }
}

// NewHistoryClient builds a client with retrying transport and cache.
func NewHistoryClient(logger *observability.CoreLogger, opts ...HistoryOption) (*HistoryClient, error) {
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = slog.NewLogLogger(logger.Handler(), slog.LevelDebug)

	c := &HistoryClient{
		base:      defaultBaseURL,
		http:      rc,
		cacheSize: defaultCacheSize,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	cache, err := lru.New(c.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("marketdata: history cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// chartResponse mirrors the chart API envelope. Null bars come through as
// nil pointers in the quote columns.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func column(col []*float64, i int) float64 {
	if i >= len(col) {
		return 0
	}
	return deref(col[i])
}

// Daily fetches up to days daily candles for symbol, most recent last.
func (c *HistoryClient) Daily(ctx context.Context, symbol string, days int) ([]Candle, error) {
	if days <= 0 {
		return nil, fmt.Errorf("marketdata: days must be positive, got %d", days)
	}
	candles, err := c.fetchChart(ctx, symbol, "1d", rangeForDays(days))
	if err != nil {
		return nil, err
	}
	if len(candles) > days {
		candles = candles[len(candles)-days:]
	}
	return candles, nil
}

// FetchAll fetches daily candles for every symbol concurrently. It fails
// fast on the first error and cancels the remaining fetches.
func (c *HistoryClient) FetchAll(ctx context.Context, symbols []string, days int) (map[string][]Candle, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultFetchLimit)

	var mu sync.Mutex
	out := make(map[string][]Candle, len(symbols))

	for _, symbol := range symbols {
		g.Go(func() error {
			candles, err := c.Daily(ctx, symbol, days)
			if err != nil {
				return fmt.Errorf("marketdata: %s: %w", symbol, err)
			}
			mu.Lock()
			out[symbol] = candles
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func rangeForDays(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}

func (c *HistoryClient) fetchChart(ctx context.Context, symbol, interval, rng string) ([]Candle, error) {
	key := symbol + "|" + interval + "|" + rng
	if cached, ok := c.cache.Get(key); ok {
		c.logger.Debug("marketdata: cache hit", "key", key)
		return append([]Candle(nil), cached.([]Candle)...), nil
	}

	u := fmt.Sprintf("%s/%s?interval=%s&range=%s",
		c.base, url.PathEscape(symbol), url.QueryEscape(interval), url.QueryEscape(rng))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("marketdata: build request: %w", err)
	}
	req.Header.Set("User-Agent", historyUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketdata: fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("marketdata: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketdata: %s: status %d: %s", symbol, resp.StatusCode, string(body))
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("marketdata: decode %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("marketdata: %s: api error: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("marketdata: %s: no data returned", symbol)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	candles := make([]Candle, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o := column(quote.Open, i)
		h := column(quote.High, i)
		l := column(quote.Low, i)
		cl := column(quote.Close, i)
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			// null bar, market holiday
			continue
		}
		candles = append(candles, Candle{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: column(quote.Volume, i),
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("marketdata: %s: no data returned", symbol)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })

	c.cache.Add(key, candles)
	return append([]Candle(nil), candles...), nil
}
