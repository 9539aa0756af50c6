package client

// PromQueryResponse represents the response envelope of the Prometheus
// /api/v1/query and /api/v1/query_range endpoints.
type PromQueryResponse struct {
	Status string   `json:"status"`
	Data   PromData `json:"data"`
}

// PromData holds the typed result list of a Prometheus query.
type PromData struct {
	ResultType string       `json:"resultType"`
	Result     []PromResult `json:"result"`
}

// PromResult is one series in a Prometheus result. Instant queries populate
// Value; range queries populate Values.
type PromResult struct {
	Metric map[string]string `json:"metric"`
	Value  []any             `json:"value,omitempty"`
	Values [][]any           `json:"values,omitempty"`
}

// ESQLResponse represents the tabular JSON output of the Elasticsearch
// _query endpoint (format=json): column descriptors plus value rows.
type ESQLResponse struct {
	Columns []ESQLColumn `json:"columns"`
	Values  [][]any      `json:"values"`
}

// ESQLColumn describes one column of an ES|QL result table.
type ESQLColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ClusterHealth is the subset of the Elasticsearch cluster health response
// the generator cares about.
type ClusterHealth struct {
	Status string `json:"status"`
}

// DataStreamInfo is the subset of the _data_stream response used to verify
// that a stream has backing indices.
type DataStreamInfo struct {
	DataStreams []struct {
		Name    string `json:"name"`
		Indices []struct {
			IndexName string `json:"index_name"`
		} `json:"indices"`
	} `json:"data_streams"`
}
