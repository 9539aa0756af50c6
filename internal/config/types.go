package config

import "time"

// GeneratorConfig holds configuration for the cardinality generator process.
type GeneratorConfig struct {
	ESURL          string   `mapstructure:"es_url" validate:"required,url"`
	ESIndex        string   `mapstructure:"es_index" validate:"required"`
	ListenAddr     string   `mapstructure:"listen_addr" validate:"required"`
	NumInstances   int      `mapstructure:"num_instances" validate:"required,gte=1"`
	NumStatusCodes int      `mapstructure:"num_status_codes" validate:"required,gte=1"`
	NumMethods     int      `mapstructure:"num_methods" validate:"required,gte=1"`
	StatusCodes    []string `mapstructure:"status_codes" validate:"required,min=1"`
	Methods        []string `mapstructure:"methods" validate:"required,min=1"`
	TickSeconds    float64  `mapstructure:"tick_seconds" validate:"required,gt=0"`
}

// Tick returns the ingest tick interval as a duration.
func (c *GeneratorConfig) Tick() time.Duration {
	return time.Duration(c.TickSeconds * float64(time.Second))
}

// BenchConfig holds configuration for the query benchmark runner process.
type BenchConfig struct {
	PromURL      string  `mapstructure:"prom_url" validate:"required,url"`
	ESURL        string  `mapstructure:"es_url" validate:"required,url"`
	ESIndex      string  `mapstructure:"es_index" validate:"required"`
	NumRuns      int     `mapstructure:"num_runs" validate:"required,gte=1"`
	SleepBetween float64 `mapstructure:"sleep_between" validate:"gte=0"`
	PrintResults bool    `mapstructure:"print_results"`
}

// Pause returns the fixed delay inserted between individual query executions.
func (c *BenchConfig) Pause() time.Duration {
	return time.Duration(c.SleepBetween * float64(time.Second))
}
