package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/abatsakis/metrics-bench/internal/bench"
	"github.com/abatsakis/metrics-bench/internal/client"
	"github.com/abatsakis/metrics-bench/internal/config"
)

func main() {
	cfg, err := config.LoadBench()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting query benchmark",
		"prom_url", cfg.PromURL,
		"es_url", cfg.ESURL,
		"runs", cfg.NumRuns,
		"sleep_between", cfg.Pause())

	prom := client.NewPromClient(cfg.PromURL)
	es := client.NewElasticClient(cfg.ESURL)

	runner := bench.NewRunner(cfg, prom, es, bench.Catalogue(cfg.ESIndex), os.Stdout)
	runner.Run(context.Background())
}
