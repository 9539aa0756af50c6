package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/abatsakis/metrics-bench/internal/client"
	"github.com/abatsakis/metrics-bench/internal/config"
	"github.com/abatsakis/metrics-bench/internal/metrics"
)

const (
	readyMaxWait      = 60 * time.Second
	readyPollInterval = 2 * time.Second

	setupAttempts   = 3
	setupRetryDelay = 2 * time.Second

	// Template registration is not instantaneous on the backend.
	templateSettleDelay = 500 * time.Millisecond
)

// Ingester produces one full sweep of synthetic samples per tick, updating
// the exposed gauge table and bulk-writing the same samples to the document
// backend.
type Ingester struct {
	cfg     *config.GeneratorConfig
	es      *client.ElasticClient
	metrics *metrics.Metrics
	space   SeriesSpace
	rng     *rand.Rand

	// Shortened in tests.
	retryDelay  time.Duration
	settleDelay time.Duration
}

// NewIngester creates an ingester over the configured series space.
func NewIngester(cfg *config.GeneratorConfig, es *client.ElasticClient, m *metrics.Metrics, rng *rand.Rand) *Ingester {
	return &Ingester{
		cfg:     cfg,
		es:      es,
		metrics: m,
		space: SeriesSpace{
			NumInstances: cfg.NumInstances,
			StatusCodes:  cfg.StatusCodes,
			Methods:      cfg.Methods,
		},
		rng:         rng,
		retryDelay:  setupRetryDelay,
		settleDelay: templateSettleDelay,
	}
}

type bulkDoc struct {
	Timestamp  string  `json:"@timestamp"`
	QPS        float64 `json:"http_requests_qps"`
	Job        string  `json:"job"`
	Instance   string  `json:"instance"`
	StatusCode string  `json:"status_code"`
	Method     string  `json:"method"`
}

var bulkAction = []byte(`{"create":{}}`)

// BuildBulkPayload sweeps the series space once: every label set gets a fresh
// value written to the gauge table and serialized as one create-action plus
// one document line. Every document in the tick shares the same timestamp.
func (i *Ingester) BuildBulkPayload(ts time.Time) ([]byte, error) {
	stamp := ts.UTC().Format(time.RFC3339Nano)

	var buf bytes.Buffer
	for ls := range i.space.All() {
		value := Value(ls, i.rng)

		i.metrics.HTTPRequestsQPS.WithLabelValues(ls.Job, ls.Instance, ls.StatusCode, ls.Method).Set(value)

		doc, err := json.Marshal(bulkDoc{
			Timestamp:  stamp,
			QPS:        value,
			Job:        ls.Job,
			Instance:   ls.Instance,
			StatusCode: ls.StatusCode,
			Method:     ls.Method,
		})
		if err != nil {
			return nil, fmt.Errorf("error encoding bulk document: %w", err)
		}

		buf.Write(bulkAction)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// WaitForElastic polls cluster health until the backend reports green or
// yellow, bounded by readyMaxWait. This is the only fatal startup condition.
func (i *Ingester) WaitForElastic(ctx context.Context) error {
	slog.Info("waiting for Elasticsearch", "url", i.cfg.ESURL)
	deadline := time.Now().Add(readyMaxWait)

	for time.Now().Before(deadline) {
		status, err := i.es.Health(ctx)
		if err == nil {
			if status == "green" || status == "yellow" {
				slog.Info("Elasticsearch is ready", "status", status)
				return nil
			}
			slog.Info("Elasticsearch is up but not ready, waiting", "status", status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readyPollInterval):
		}
	}
	return fmt.Errorf("Elasticsearch did not become ready within %s", readyMaxWait)
}

// EnsureIndex installs the TSDS index template and explicitly creates the
// backing data stream. Idempotent: an already existing template or stream is
// success. A regular index squatting on the stream name is deleted first so
// time-series mode can take over.
func (i *Ingester) EnsureIndex(ctx context.Context) error {
	i.deleteConflictingIndex(ctx)

	templateName := i.cfg.ESIndex + "-template"
	// The pattern must match both the stream name and its backing indices.
	template := map[string]any{
		"index_patterns": []string{i.cfg.ESIndex + "*"},
		"data_stream":    map[string]any{},
		"template": map[string]any{
			"settings": map[string]any{
				"index.mode":                   "time_series",
				"index.translog.durability":    "async",
				"index.translog.sync_interval": "10s",
				"index.refresh_interval":       "5s",
			},
			"mappings": map[string]any{
				"properties": map[string]any{
					"@timestamp": map[string]any{"type": "date"},
					"http_requests_qps": map[string]any{
						"type":               "double",
						"time_series_metric": "gauge",
					},
					"job":         map[string]any{"type": "keyword", "time_series_dimension": true},
					"instance":    map[string]any{"type": "keyword", "time_series_dimension": true},
					"status_code": map[string]any{"type": "keyword", "time_series_dimension": true},
					"method":      map[string]any{"type": "keyword", "time_series_dimension": true},
				},
			},
		},
	}

	if err := i.es.PutIndexTemplate(ctx, templateName, template); err != nil {
		return fmt.Errorf("failed to install TSDS template: %w", err)
	}

	ok, err := i.es.HasIndexTemplate(ctx, templateName)
	if err != nil || !ok {
		return fmt.Errorf("could not verify template %s: %w", templateName, err)
	}

	time.Sleep(i.settleDelay)

	if err := i.es.CreateDataStream(ctx, i.cfg.ESIndex); err != nil {
		slog.Warn("data stream create failed, will auto-create on first document", "stream", i.cfg.ESIndex, "error", err)
	}

	slog.Info("TSDS template and data stream ready", "index", i.cfg.ESIndex)
	return nil
}

// deleteConflictingIndex removes a pre-existing regular index with the stream
// name. Every error here is ignored: absence is the common case.
func (i *Ingester) deleteConflictingIndex(ctx context.Context) {
	exists, err := i.es.IndexExists(ctx, i.cfg.ESIndex)
	if err != nil || !exists {
		return
	}
	isStream, err := i.es.IsDataStream(ctx, i.cfg.ESIndex)
	if err != nil || isStream {
		return
	}
	slog.Info("deleting existing regular index to use TSDS", "index", i.cfg.ESIndex)
	if err := i.es.DeleteIndex(ctx, i.cfg.ESIndex); err != nil {
		slog.Warn("could not delete conflicting index", "index", i.cfg.ESIndex, "error", err)
	}
}

// Run blocks until the backend is ready, sets up the schema with bounded
// retries, then ticks forever: build payload for now, bulk write, sleep.
// Per-tick failures are logged and swallowed; the loop never aborts on them.
func (i *Ingester) Run(ctx context.Context) error {
	if err := i.WaitForElastic(ctx); err != nil {
		slog.Error("Elasticsearch not available, cannot proceed", "error", err)
		return err
	}

	for attempt := 1; attempt <= setupAttempts; attempt++ {
		err := i.EnsureIndex(ctx)
		if err == nil {
			break
		}
		if attempt < setupAttempts {
			slog.Warn("schema setup failed, retrying", "attempt", attempt, "max_attempts", setupAttempts, "retry_in", i.retryDelay, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(i.retryDelay):
			}
		} else {
			// Degraded mode: writes may not land in time-series mode.
			slog.Warn("schema setup failed after retries, continuing anyway", "error", err)
		}
	}

	slog.Info("ingest loop starting",
		"instances", i.cfg.NumInstances,
		"status_codes", i.cfg.StatusCodes,
		"methods", i.cfg.Methods,
		"tick", i.cfg.Tick())

	firstBatch := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		body, err := i.BuildBulkPayload(time.Now())
		if err != nil {
			slog.Error("error building bulk payload", "error", err)
		} else if err := i.es.Bulk(ctx, i.cfg.ESIndex, body); err != nil {
			slog.Error("error sending bulk", "error", err)
		} else if firstBatch {
			firstBatch = false
			i.verifyFirstBatch(ctx)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(i.cfg.Tick()):
		}
	}
}

// verifyFirstBatch refreshes the stream and logs how many backing indices it
// has after the first successful write. Failures here are warnings only.
func (i *Ingester) verifyFirstBatch(ctx context.Context) {
	if err := i.es.Refresh(ctx, i.cfg.ESIndex); err != nil {
		slog.Warn("could not refresh data stream", "stream", i.cfg.ESIndex, "error", err)
		return
	}
	n, err := i.es.BackingIndices(ctx, i.cfg.ESIndex)
	if err != nil {
		slog.Warn("could not verify data stream", "stream", i.cfg.ESIndex, "error", err)
		return
	}
	if n > 0 {
		slog.Info("data stream ready", "stream", i.cfg.ESIndex, "backing_indices", n)
	} else {
		slog.Warn("data stream exists but has no backing indices yet", "stream", i.cfg.ESIndex)
	}
}
