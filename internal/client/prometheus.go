package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// InstantQueryTimeout bounds instant queries; range queries scan far
	// more data and get the extended timeout.
	InstantQueryTimeout = 15 * time.Second
	RangeQueryTimeout   = 120 * time.Second

	errBodyLimit = 200
)

// PromClient issues instant and range queries against a Prometheus-compatible
// HTTP API.
type PromClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPromClient creates a Prometheus query client for the given base URL.
func NewPromClient(baseURL string) *PromClient {
	return &PromClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Instant executes an instant query evaluated at the given time and returns
// the raw response body. Callers parse it themselves so body decoding never
// lands inside their timed window.
func (c *PromClient) Instant(ctx context.Context, promql string, at time.Time) ([]byte, *http.Response, error) {
	params := url.Values{}
	params.Set("query", promql)
	params.Set("time", formatEpoch(at))
	return c.get(ctx, "/api/v1/query", params, InstantQueryTimeout)
}

// Range executes a range query over [start, end] with the given step in
// seconds. Start and end are sent as float epoch seconds.
func (c *PromClient) Range(ctx context.Context, promql string, start, end time.Time, stepSeconds int) ([]byte, *http.Response, error) {
	params := url.Values{}
	params.Set("query", promql)
	params.Set("start", formatEpoch(start))
	params.Set("end", formatEpoch(end))
	params.Set("step", strconv.Itoa(stepSeconds))
	return c.get(ctx, "/api/v1/query_range", params, RangeQueryTimeout)
}

func (c *PromClient) get(ctx context.Context, path string, params url.Values, timeout time.Duration) ([]byte, *http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating http request: %w", err)
	}
	req.URL.RawQuery = params.Encode()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("error making http request: %w", err)
	}

	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		return nil, res, fmt.Errorf("error reading response body: %w", err)
	}

	if res.StatusCode >= 300 {
		return nil, res, fmt.Errorf("query failed with status %d: %s", res.StatusCode, truncate(body, errBodyLimit))
	}

	return body, res, nil
}

func formatEpoch(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixNano())/float64(time.Second), 'f', 3, 64)
}

// truncate caps a response body for log output.
func truncate(body []byte, limit int) string {
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
