package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var (
	validate *validator.Validate
)

func init() {
	validate = validator.New()
}

// generatorDefaults mirror the cardinality of a mid-sized HTTP fleet.
var generatorDefaults = map[string]any{
	"es_url":           "http://localhost:9200",
	"es_index":         "metrics-http",
	"listen_addr":      ":8000",
	"num_instances":    1000,
	"num_status_codes": 5,
	"num_methods":      2,
	"status_codes":     []string{"200", "500", "400", "404", "502"},
	"methods":          []string{"GET", "POST"},
	"tick_seconds":     1.0,
}

var benchDefaults = map[string]any{
	"prom_url":      "http://localhost:9090",
	"es_url":        "http://localhost:9200",
	"es_index":      "metrics-http",
	"num_runs":      5,
	"sleep_between": 0.5,
	"print_results": false,
}

// newViper builds a viper instance bound to the environment, with every
// known key registered so AutomaticEnv can resolve it.
func newViper(defaults map[string]any) *viper.Viper {
	v := viper.New()
	for key, def := range defaults {
		v.SetDefault(key, def)
		// Bind NUM_INSTANCES-style env names to their lowercase keys.
		_ = v.BindEnv(key, strings.ToUpper(key))
	}
	return v
}

func unmarshal(v *viper.Viper, out any) error {
	// Env values arrive as strings; viper's default decoder weak-types them
	// into numbers/bools and splits comma-separated lists into slices.
	return v.Unmarshal(out)
}

// LoadGenerator loads and validates the generator configuration from the
// environment.
func LoadGenerator() (*GeneratorConfig, error) {
	v := newViper(generatorDefaults)

	var cfg GeneratorConfig
	if err := unmarshal(v, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateStruct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// The configured counts truncate the fixed candidate lists.
	if cfg.NumStatusCodes > len(cfg.StatusCodes) {
		cfg.NumStatusCodes = len(cfg.StatusCodes)
	}
	cfg.StatusCodes = cfg.StatusCodes[:cfg.NumStatusCodes]
	if cfg.NumMethods > len(cfg.Methods) {
		cfg.NumMethods = len(cfg.Methods)
	}
	cfg.Methods = cfg.Methods[:cfg.NumMethods]

	return &cfg, nil
}

// LoadBench loads and validates the benchmark runner configuration from the
// environment.
func LoadBench() (*BenchConfig, error) {
	v := newViper(benchDefaults)

	var cfg BenchConfig
	if err := unmarshal(v, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateStruct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateStruct(cfg any) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError formats validator errors into a readable string
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var errMsgs []string
		for _, e := range validationErrors {
			errMsgs = append(errMsgs, fmt.Sprintf("field '%s' failed validation: %s", e.Field(), getValidationErrorMsg(e)))
		}
		return fmt.Errorf("%s", strings.Join(errMsgs, "; "))
	}
	return err
}

// getValidationErrorMsg returns a human-readable error message for validation errors
func getValidationErrorMsg(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "url":
		return "must be a valid URL"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "min":
		return fmt.Sprintf("must have at least %s items", e.Param())
	default:
		return fmt.Sprintf("failed validation tag: %s", e.Tag())
	}
}
