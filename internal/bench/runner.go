package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/abatsakis/metrics-bench/internal/client"
	"github.com/abatsakis/metrics-bench/internal/config"
)

// Result collects everything measured for one query definition: the two
// independent latency sequences, their summaries, and the first execution's
// parsed result per backend for optional display.
type Result struct {
	Definition QueryDefinition
	Skipped    bool

	PromLatencies []float64
	ESLatencies   []float64
	PromSummary   Summary
	ESSummary     Summary

	PromFirst *client.PromQueryResponse
	ESFirst   *client.ESQLResponse
}

// Runner executes the query catalogue sequentially against both backends.
// Failed calls are logged, their latency recorded, and the batch continues;
// a single bad call never aborts the run.
type Runner struct {
	cfg       *config.BenchConfig
	prom      *client.PromClient
	es        *client.ElasticClient
	catalogue []QueryDefinition
	out       io.Writer
}

// NewRunner creates a benchmark runner writing its report to out.
func NewRunner(cfg *config.BenchConfig, prom *client.PromClient, es *client.ElasticClient, catalogue []QueryDefinition, out io.Writer) *Runner {
	return &Runner{
		cfg:       cfg,
		prom:      prom,
		es:        es,
		catalogue: catalogue,
		out:       out,
	}
}

// Run benchmarks every non-skipped definition in catalogue order and returns
// the per-definition results after printing the report.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.catalogue))

	for _, def := range r.catalogue {
		fmt.Fprintf(r.out, "\n=== %s ===\n", def.Name)

		if def.Skip {
			fmt.Fprintln(r.out, "Skipping (skip=true)")
			results = append(results, Result{Definition: def, Skipped: true})
			continue
		}

		promLats, promFirst := r.benchProm(ctx, def)
		esLats, esFirst := r.benchES(ctx, def)

		res := Result{
			Definition:    def,
			PromLatencies: promLats,
			ESLatencies:   esLats,
			PromSummary:   Summarize(promLats),
			ESSummary:     Summarize(esLats),
			PromFirst:     promFirst,
			ESFirst:       esFirst,
		}

		if r.cfg.PrintResults {
			fmt.Fprintf(r.out, "\n[Prometheus Result]:\n%s\n", FormatPromResult(promFirst))
			fmt.Fprintf(r.out, "\n[Elasticsearch ES|QL Result]:\n%s\n\n", FormatESQLResult(esFirst))
		}

		fmt.Fprintf(r.out, "Prometheus: p50=%.1f ms, p95=%.1f ms\n", res.PromSummary.P50, res.PromSummary.P95)
		fmt.Fprintf(r.out, "Elasticsearch ES|QL: p50=%.1f ms, p95=%.1f ms\n", res.ESSummary.P50, res.ESSummary.P95)

		results = append(results, res)
	}

	return results
}

// benchProm executes the PromQL side NumRuns times. Ranged definitions go to
// query_range with start = now - range, end = now; the rest are instant
// queries at now.
func (r *Runner) benchProm(ctx context.Context, def QueryDefinition) ([]float64, *client.PromQueryResponse) {
	var rangeSeconds, stepSeconds int
	if def.Ranged() {
		var err error
		if rangeSeconds, err = ParseDuration(def.RangeDuration); err != nil {
			slog.Error("invalid range annotation", "query", def.Name, "error", err)
			return nil, nil
		}
		if stepSeconds, err = ParseDuration(def.Step); err != nil {
			slog.Error("invalid step annotation", "query", def.Name, "error", err)
			return nil, nil
		}
	}

	latencies := make([]float64, 0, r.cfg.NumRuns)
	var first *client.PromQueryResponse

	for run := 0; run < r.cfg.NumRuns; run++ {
		var (
			body []byte
			res  *http.Response
			err  error
		)

		// Only the HTTP exchange is timed; decoding the body happens after.
		start := time.Now()
		if def.Ranged() {
			end := time.Now()
			begin := end.Add(-time.Duration(rangeSeconds) * time.Second)
			body, res, err = r.prom.Range(ctx, def.PromQL, begin, end, stepSeconds)
		} else {
			body, res, err = r.prom.Instant(ctx, def.PromQL, time.Now())
		}
		latencies = append(latencies, toMillis(time.Since(start)))

		if err != nil {
			if res != nil {
				slog.Error("prometheus query failed", "query", def.Name, "status_code", res.StatusCode, "error", err)
			} else {
				slog.Error("prometheus query failed", "query", def.Name, "error", err)
			}
		} else if run == 0 {
			var parsed client.PromQueryResponse
			if uerr := json.Unmarshal(body, &parsed); uerr != nil {
				slog.Error("error parsing prometheus response", "query", def.Name, "error", uerr)
			} else {
				first = &parsed
			}
		}

		r.pause(ctx)
	}

	return latencies, first
}

// benchES executes the ES|QL side NumRuns times as raw-text POSTs, with the
// extended timeout whenever the definition carries a range annotation.
func (r *Runner) benchES(ctx context.Context, def QueryDefinition) ([]float64, *client.ESQLResponse) {
	latencies := make([]float64, 0, r.cfg.NumRuns)
	var first *client.ESQLResponse

	for run := 0; run < r.cfg.NumRuns; run++ {
		start := time.Now()
		body, res, err := r.es.Query(ctx, def.ESQL, def.HasRange())
		latencies = append(latencies, toMillis(time.Since(start)))

		if err != nil {
			if res != nil {
				slog.Error("esql query failed", "query", def.Name, "status_code", res.StatusCode, "error", err)
			} else {
				slog.Error("esql query failed", "query", def.Name, "error", err)
			}
		} else if run == 0 {
			var parsed client.ESQLResponse
			if uerr := json.Unmarshal(body, &parsed); uerr != nil {
				slog.Error("error parsing esql response", "query", def.Name, "error", uerr)
			} else {
				first = &parsed
			}
		}

		r.pause(ctx)
	}

	return latencies, first
}

// pause inserts the fixed inter-call delay so overlapping load does not skew
// measurements.
func (r *Runner) pause(ctx context.Context) {
	delay := r.cfg.Pause()
	if delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
