package bench

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/abatsakis/metrics-bench/internal/client"
)

// FormatPromResult renders the first Prometheus result in compact form, one
// line per series. Matrix results show the last point of each series.
func FormatPromResult(result *client.PromQueryResponse) string {
	if result == nil || result.Status != "success" {
		return "(Error or no data)"
	}
	if len(result.Data.Result) == 0 {
		return "(No results)"
	}

	var lines []string
	for _, r := range result.Data.Result {
		labelStr := formatLabels(r.Metric)

		if result.Data.ResultType == "matrix" || len(r.Values) > 0 {
			if len(r.Values) == 0 {
				lines = append(lines, fmt.Sprintf("  %s: (no values)", labelStr))
				continue
			}
			last := r.Values[len(r.Values)-1]
			lines = append(lines, fmt.Sprintf("  %s: %s (last of %d points)", labelStr, formatSample(last), len(r.Values)))
		} else {
			lines = append(lines, fmt.Sprintf("  %s: %s", labelStr, formatSample(r.Value)))
		}
	}

	if len(lines) == 0 {
		return "(No data)"
	}
	return strings.Join(lines, "\n")
}

// FormatESQLResult renders the tabular ES|QL result in compact form, one
// `{col=val, ...}` line per row.
func FormatESQLResult(result *client.ESQLResponse) string {
	if result == nil {
		return "(Error or no data)"
	}
	if len(result.Columns) == 0 || len(result.Values) == 0 {
		return "(No results)"
	}

	var lines []string
	for _, row := range result.Values {
		var parts []string
		for i, col := range result.Columns {
			if i >= len(row) || row[i] == nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%s", col.Name, formatCell(row[i])))
		}
		if len(parts) > 0 {
			lines = append(lines, fmt.Sprintf("  {%s}", strings.Join(parts, ", ")))
		}
	}

	if len(lines) == 0 {
		return "(No data)"
	}
	return strings.Join(lines, "\n")
}

func formatLabels(metric map[string]string) string {
	keys := make([]string, 0, len(metric))
	for k := range metric {
		if k != "__name__" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, metric[k]))
	}
	if len(pairs) == 0 {
		return ""
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// formatSample renders a [timestamp, value] Prometheus sample pair.
func formatSample(sample []any) string {
	if len(sample) < 2 {
		return "(no value)"
	}
	if s, ok := sample[1].(string); ok {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return fmt.Sprintf("%.6f", v)
		}
		return s
	}
	return fmt.Sprint(sample[1])
}

func formatCell(v any) string {
	switch val := v.(type) {
	case float64:
		return fmt.Sprintf("%.6f", val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
