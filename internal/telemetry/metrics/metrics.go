// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics provides opt-in Prometheus telemetry for the scheduler.
// It is safe to call from a hot tick loop: when disabled, every exported
// function is a no-op.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls whether metrics are recorded and, optionally, whether a
// standalone /metrics endpoint is started.
type Config struct {
	Enabled bool
	// MetricsAddr, when non-empty, starts a dedicated HTTP server serving
	// /metrics. Leave empty if the host process already exposes promhttp
	// on its own mux.
	MetricsAddr string
}

var (
	modEnabled atomic.Bool

	iterationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "swqps_iterations_total",
		Help: "Total propose/accept iterations run across all ticks",
	})
	matchedPairsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "swqps_matched_pairs_total",
		Help: "Total input/output pairs matched and graduated",
	})
	matchingSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "swqps_matching_size",
		Help:    "Distribution of matched-pair counts per graduation call",
		Buckets: prometheus.LinearBuckets(0, 8, 16),
	})
	maxVOQLength = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "swqps_max_voq_length",
		Help: "Largest single virtual output queue length observed at last sample",
	})
	stable = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "swqps_stable",
		Help: "1 if the scheduler's stability check passed at last sample, else 0",
	})
	overloaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "swqps_overloaded",
		Help: "1 if any VOQ has crossed MaxVOQLen at last sample, else 0",
	})
	droppedResidualsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "swqps_dropped_residuals_total",
		Help: "Total residual cells dropped by the frame batch engine after exhausting adaptive growth",
	})
	checkpointErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "swqps_checkpoint_errors_total",
		Help: "Total number of failed snapshot checkpoint commits",
	})
)

func init() {
	prometheus.MustRegister(iterationsTotal, matchedPairsTotal, matchingSize,
		maxVOQLength, stable, overloaded, droppedResidualsTotal, checkpointErrorsTotal)
}

// Enable configures the module. Safe to call multiple times.
func Enable(cfg Config) {
	modEnabled.Store(cfg.Enabled)
	if cfg.MetricsAddr != "" {
		startMetricsEndpoint(cfg.MetricsAddr)
	}
}

// Enabled reports whether metrics recording is active.
func Enabled() bool { return modEnabled.Load() }

// ObserveIteration records one propose/accept iteration.
func ObserveIteration() {
	if !modEnabled.Load() {
		return
	}
	iterationsTotal.Inc()
}

// ObserveGraduation records the outcome of one Graduate() call.
func ObserveGraduation(matched int) {
	if !modEnabled.Load() {
		return
	}
	matchedPairsTotal.Add(float64(matched))
	matchingSize.Observe(float64(matched))
}

// ObserveQueueState records the sampled VOQ occupancy and health flags.
func ObserveQueueState(maxLen int, isStable, isOverloaded bool) {
	if !modEnabled.Load() {
		return
	}
	maxVOQLength.Set(float64(maxLen))
	stable.Set(boolToFloat(isStable))
	overloaded.Set(boolToFloat(isOverloaded))
}

// ObserveDroppedResiduals records residual cells the frame engine could not
// place even after adaptive frame growth.
func ObserveDroppedResiduals(n int64) {
	if !modEnabled.Load() || n <= 0 {
		return
	}
	droppedResidualsTotal.Add(float64(n))
}

// ObserveCheckpointError records a failed snapshot commit.
func ObserveCheckpointError() {
	if !modEnabled.Load() {
		return
	}
	checkpointErrorsTotal.Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// startMetricsEndpoint exposes /metrics on addr in a background goroutine.
func startMetricsEndpoint(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = server.ListenAndServe()
	}()
}
