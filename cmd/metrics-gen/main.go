package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abatsakis/metrics-bench/internal/client"
	"github.com/abatsakis/metrics-bench/internal/config"
	"github.com/abatsakis/metrics-bench/internal/generator"
	"github.com/abatsakis/metrics-bench/internal/metrics"
)

func main() {
	cfg, err := config.LoadGenerator()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	es := client.NewElasticClient(cfg.ESURL)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	ingester := generator.NewIngester(cfg, es, m, rng)
	go func() {
		if err := ingester.Run(context.Background()); err != nil {
			slog.Error("ingest loop exited", "error", err)
		}
	}()

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/-/healthy", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	slog.Info("metrics exposition listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
