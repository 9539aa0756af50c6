package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_cluster/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"yellow"}`))
	}))
	defer srv.Close()

	status, err := NewElasticClient(srv.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "yellow", status)
}

func TestHealthNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewElasticClient(srv.URL).Health(context.Background())
	assert.Error(t, err)
}

func TestCreateDataStreamToleratesAlreadyExists(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"created", http.StatusOK, `{"acknowledged":true}`, false},
		{"already exists", http.StatusBadRequest, `{"error":{"type":"resource_already_exists_exception"}}`, false},
		{"other bad request", http.StatusBadRequest, `{"error":{"type":"illegal_argument_exception"}}`, true},
		{"server error", http.StatusInternalServerError, `{}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/_data_stream/metrics-http", r.URL.Path)
				require.Equal(t, http.MethodPut, r.Method)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewElasticClient(srv.URL).CreateDataStream(context.Background(), "metrics-http")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPutIndexTemplate(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_index_template/metrics-http-template", r.URL.Path)
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	}))
	defer srv.Close()

	template := map[string]any{"index_patterns": []string{"metrics-http*"}}
	err := NewElasticClient(srv.URL).PutIndexTemplate(context.Background(), "metrics-http-template", template)
	require.NoError(t, err)
	assert.Contains(t, received, "index_patterns")
}

func TestBulk(t *testing.T) {
	var gotBody string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/metrics-http/_bulk", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"errors":false}`))
	}))
	defer srv.Close()

	payload := "{\"create\":{}}\n{\"@timestamp\":\"x\"}\n"
	err := NewElasticClient(srv.URL).Bulk(context.Background(), "metrics-http", []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "application/x-ndjson", gotContentType)
	assert.Equal(t, payload, gotBody)
}

func TestBulkNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer srv.Close()

	err := NewElasticClient(srv.URL).Bulk(context.Background(), "metrics-http", []byte("{}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	// Bodies are truncated in error messages.
	assert.Less(t, len(err.Error()), 300)
}

func TestQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_query", r.URL.Path)
		require.Equal(t, "json", r.URL.Query().Get("format"))

		var payload map[string]string
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Equal(t, "TS metrics-http | STATS AVG(http_requests_qps)", payload["query"])

		_, _ = w.Write([]byte(`{"columns":[{"name":"avg","type":"double"}],"values":[[42.0]]}`))
	}))
	defer srv.Close()

	respBody, res, err := NewElasticClient(srv.URL).Query(context.Background(), "TS metrics-http | STATS AVG(http_requests_qps)", false)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	// The body comes back undecoded; it parses into the response envelope.
	var resp ESQLResponse
	require.NoError(t, json.Unmarshal(respBody, &resp))
	require.Len(t, resp.Values, 1)
	assert.Equal(t, 42.0, resp.Values[0][0])
}

func TestBackingIndices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_data_stream/metrics-http", r.URL.Path)
		_, _ = w.Write([]byte(`{"data_streams":[{"name":"metrics-http","indices":[{"index_name":".ds-metrics-http-000001"},{"index_name":".ds-metrics-http-000002"}]}]}`))
	}))
	defer srv.Close()

	n, err := NewElasticClient(srv.URL).BackingIndices(context.Background(), "metrics-http")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestIsDataStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_data_stream", r.URL.Path)
		_, _ = w.Write([]byte(`{"data_streams":[{"name":"metrics-http","indices":[]}]}`))
	}))
	defer srv.Close()

	es := NewElasticClient(srv.URL)

	ok, err := es.IsDataStream(context.Background(), "metrics-http")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = es.IsDataStream(context.Background(), "other-index")
	require.NoError(t, err)
	assert.False(t, ok)
}
