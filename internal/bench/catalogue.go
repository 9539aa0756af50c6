package bench

import "fmt"

// QueryDefinition pairs a PromQL query with its semantically-equivalent ES|QL
// query. RangeDuration and Step turn the Prometheus side into a range query
// and extend the timeout on both backends. Definitions are immutable after
// startup.
type QueryDefinition struct {
	Name          string
	PromQL        string
	ESQL          string
	RangeDuration string
	Step          string
	Skip          bool
}

// Ranged reports whether the definition dispatches as a Prometheus range
// query, which needs both the window and the step.
func (q QueryDefinition) Ranged() bool {
	return q.RangeDuration != "" && q.Step != ""
}

// HasRange reports whether the definition carries a range annotation at all.
// The document backend has no step concept, so its extended timeout keys off
// the window alone.
func (q QueryDefinition) HasRange() bool {
	return q.RangeDuration != ""
}

// Catalogue returns the fixed battery of equivalent query pairs run against
// both backends, targeting the given document index.
func Catalogue(index string) []QueryDefinition {
	return []QueryDefinition{
		{
			Name:   "Q1_avg_status_code_1_host",
			PromQL: `avg by (status_code) (avg_over_time(http_requests_qps{exported_instance="inst-00004"}[15m]))`,
			ESQL: fmt.Sprintf(`TS %s
| WHERE @timestamp >= NOW() - 15 MINUTES
  AND @timestamp <= NOW()
  AND instance == "inst-00004"
| STATS avg_qps = AVG(http_requests_qps) BY status_code`, index),
		},
		{
			Name:          "Q2_avg_status_code_100_hosts_wildcard",
			PromQL:        `avg by (status_code) (avg_over_time(http_requests_qps{exported_instance=~"inst-001.*"}[5m]))`,
			RangeDuration: "1h",
			Step:          "5m",
			ESQL: fmt.Sprintf(`TS %s
| WHERE @timestamp >= NOW() - 60 MINUTES
  AND @timestamp <= NOW()
  AND instance LIKE "inst-001%%"
| EVAL bucket = DATE_TRUNC(5 MINUTES, @timestamp)
| STATS avg_qps = AVG(http_requests_qps) BY bucket, status_code`, index),
		},
		{
			Name:          "Q3_avg_no_filter_sorted",
			PromQL:        `sort_desc(last_over_time(http_requests_qps[5m]))`,
			RangeDuration: "1h",
			Step:          "5m",
			ESQL: fmt.Sprintf(`TS %s
| WHERE @timestamp >= NOW() - 60 MINUTES
  AND @timestamp <= NOW()
| EVAL bucket = DATE_TRUNC(5 MINUTES, @timestamp)
| STATS avg_qps = AVG(http_requests_qps) BY bucket, instance, status_code, method, job
| SORT avg_qps DESC`, index),
		},
		{
			// Needs AVG_OVER_TIME/TBUCKET support on the document backend.
			Name:          "Q4_avg_status_code_4xx_5xx_wildcard",
			Skip:          true,
			PromQL:        `avg by (exported_instance) (avg_over_time(http_requests_qps[5m]))`,
			RangeDuration: "4h",
			Step:          "5m",
			ESQL: fmt.Sprintf(`TS %s*
| WHERE @timestamp >= NOW() - 240 MINUTES AND @timestamp <= NOW()
| STATS AVG(AVG_OVER_TIME(http_requests_qps)) BY instance, TBUCKET(5m)`, index),
		},
	}
}
