package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	healthTimeout = 5 * time.Second
	setupTimeout  = 10 * time.Second
	bulkTimeout   = 60 * time.Second
)

// ElasticClient talks to an Elasticsearch-compatible document backend: TSDS
// setup, bulk writes and ES|QL queries.
type ElasticClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewElasticClient creates a client for the given base URL.
func NewElasticClient(baseURL string) *ElasticClient {
	return &ElasticClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Health returns the cluster health status string ("green", "yellow", "red").
func (c *ElasticClient) Health(ctx context.Context) (string, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/_cluster/health", "", nil, healthTimeout)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("cluster health returned status %d: %s", status, truncate(body, errBodyLimit))
	}
	var health ClusterHealth
	if err := json.Unmarshal(body, &health); err != nil {
		return "", fmt.Errorf("error parsing cluster health: %w", err)
	}
	return health.Status, nil
}

// IndexExists reports whether an index (or stream) with the given name exists.
func (c *ElasticClient) IndexExists(ctx context.Context, name string) (bool, error) {
	_, status, err := c.do(ctx, http.MethodHead, "/"+name, "", nil, healthTimeout)
	if err != nil {
		return false, err
	}
	return status == http.StatusOK, nil
}

// IsDataStream reports whether name is registered as a data stream rather
// than a regular index.
func (c *ElasticClient) IsDataStream(ctx context.Context, name string) (bool, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/_data_stream", "", nil, healthTimeout)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("data stream listing returned status %d", status)
	}
	var info DataStreamInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return false, fmt.Errorf("error parsing data stream listing: %w", err)
	}
	for _, ds := range info.DataStreams {
		if ds.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// DeleteIndex removes a regular index.
func (c *ElasticClient) DeleteIndex(ctx context.Context, name string) error {
	body, status, err := c.do(ctx, http.MethodDelete, "/"+name, "", nil, healthTimeout)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("index delete returned status %d: %s", status, truncate(body, errBodyLimit))
	}
	return nil
}

// PutIndexTemplate installs (or overwrites) an index template.
func (c *ElasticClient) PutIndexTemplate(ctx context.Context, name string, template any) error {
	payload, err := json.Marshal(template)
	if err != nil {
		return fmt.Errorf("error encoding template: %w", err)
	}
	body, status, err := c.do(ctx, http.MethodPut, "/_index_template/"+name, "application/json", payload, setupTimeout)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("template create status %d: %s", status, truncate(body, errBodyLimit))
	}
	return nil
}

// HasIndexTemplate verifies that an index template is registered.
func (c *ElasticClient) HasIndexTemplate(ctx context.Context, name string) (bool, error) {
	_, status, err := c.do(ctx, http.MethodGet, "/_index_template/"+name, "", nil, healthTimeout)
	if err != nil {
		return false, err
	}
	return status == http.StatusOK, nil
}

// CreateDataStream explicitly creates a data stream. An already existing
// stream is treated as success.
func (c *ElasticClient) CreateDataStream(ctx context.Context, name string) error {
	body, status, err := c.do(ctx, http.MethodPut, "/_data_stream/"+name, "", nil, setupTimeout)
	if err != nil {
		return err
	}
	if status == http.StatusOK || status == http.StatusCreated {
		return nil
	}
	if status == http.StatusBadRequest && strings.Contains(strings.ToLower(string(body)), "resource_already_exists_exception") {
		return nil
	}
	return fmt.Errorf("data stream create status %d: %s", status, truncate(body, errBodyLimit))
}

// BackingIndices returns the number of backing indices behind a data stream.
func (c *ElasticClient) BackingIndices(ctx context.Context, name string) (int, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/_data_stream/"+name, "", nil, healthTimeout)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("data stream lookup returned status %d", status)
	}
	var info DataStreamInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return 0, fmt.Errorf("error parsing data stream info: %w", err)
	}
	if len(info.DataStreams) == 0 {
		return 0, nil
	}
	return len(info.DataStreams[0].Indices), nil
}

// Bulk writes an NDJSON bulk body to the given index.
func (c *ElasticClient) Bulk(ctx context.Context, index string, ndjson []byte) error {
	body, status, err := c.do(ctx, http.MethodPost, "/"+index+"/_bulk", "application/x-ndjson", ndjson, bulkTimeout)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("bulk error %d: %s", status, truncate(body, errBodyLimit))
	}
	return nil
}

// Refresh makes recently written documents searchable.
func (c *ElasticClient) Refresh(ctx context.Context, index string) error {
	_, status, err := c.do(ctx, http.MethodPost, "/"+index+"/_refresh", "", nil, healthTimeout)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("refresh returned status %d", status)
	}
	return nil
}

// Query executes an ES|QL query and returns the raw tabular JSON body.
// Callers parse it themselves so body decoding never lands inside their
// timed window. Queries carrying a range annotation get the extended
// timeout, mirroring the Prometheus side.
func (c *ElasticClient) Query(ctx context.Context, esql string, extended bool) ([]byte, *http.Response, error) {
	timeout := InstantQueryTimeout
	if extended {
		timeout = RangeQueryTimeout
	}

	payload, err := json.Marshal(map[string]string{"query": esql})
	if err != nil {
		return nil, nil, fmt.Errorf("error encoding query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/_query?format=json", bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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

func (c *ElasticClient) do(ctx context.Context, method, path, contentType string, payload []byte, timeout time.Duration) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating http request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error making http request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, fmt.Errorf("error reading response body: %w", err)
	}
	return body, res.StatusCode, nil
}
