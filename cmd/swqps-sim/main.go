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

// Package main provides the entry point for the crossbar scheduler demo
// process. It wires a scheduler.Scheduler to a synthetic traffic generator
// on a fixed tick cadence, exposes Prometheus metrics, periodically
// checkpoints statistics snapshots through a persistence adapter, and
// serves the HTTP control surface so an external driver can inject
// arrivals and observe stability without linking against Go.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swqps/internal/api"
	"swqps/internal/persistence"
	"swqps/internal/scheduler"
	"swqps/internal/telemetry/checkpoint"
	"swqps/internal/telemetry/metrics"
	"swqps/internal/traffic"
)

func main() {
	n := flag.Int("n", scheduler.DefaultN, "Number of input/output ports")
	tSlots := flag.Int("t", scheduler.DefaultT, "Sliding window size in time slots")
	maxVOQLen := flag.Int("max_voq_len", scheduler.DefaultMaxVOQLen, "Per-VOQ capacity before overload is flagged")
	knockoutThresh := flag.Int("knockout_threshold", scheduler.DefaultKnockoutThresh, "Max proposals an acceptor ranks per iteration; lower-ranked proposals are dropped")
	frameSizeBlock := flag.Int("frame_size_block", scheduler.DefaultFrameSizeBlock, "Growth increment used by the batch engine's adaptive frame option")
	seed := flag.Int("seed", int(scheduler.DefaultSeed), "LFSR seed for sampling and traffic generation")
	acceptorWorkers := flag.Int("acceptor_workers", 1, "Number of worker shards the accept phase fans out across")
	allowRetryPrevious := flag.Bool("allow_retry_previous", false, "Let a losing proposal retry an earlier free slot in the same iteration (frame engine only)")
	allowAdaptiveFrame := flag.Bool("allow_adaptive_frame", false, "Let the frame engine grow the frame past T slots to place residuals")

	trafficPattern := flag.String("traffic", "uniform", "Traffic pattern: uniform, fullmesh, diagonal, hotcold")
	load := flag.Float64("load", 0.5, "Offered load (admission probability per input per tick)")
	hotFraction := flag.Float64("hot_fraction", 0.1, "Fraction of outputs considered hot, for the hotcold pattern")
	hotBias := flag.Float64("hot_bias", 0.9, "Probability traffic favors a hot output, for the hotcold pattern")

	tickInterval := flag.Duration("tick_interval", 10*time.Millisecond, "Wall-clock interval between simulated ticks")
	iterationsPerTick := flag.Int("iterations_per_tick", 2, "Propose/accept iterations run per tick before graduation")

	httpAddr := flag.String("http_addr", ":8080", "HTTP listen address for the control surface")
	metricsEnabled := flag.Bool("metrics", true, "Enable Prometheus metrics recording")
	metricsAddr := flag.String("metrics_addr", "", "If non-empty, expose Prometheus /metrics on this address (e.g. :9090)")

	checkpointInterval := flag.Duration("checkpoint_interval", time.Second, "How often to commit a statistics snapshot")
	persistAdapter := flag.String("persist_adapter", "mock", "Snapshot persistence adapter: mock, redis, kafka")
	redisAddr := flag.String("redis_addr", "", "Redis address for persist_adapter=redis; empty uses a logging demo client")
	kafkaTopic := flag.String("kafka_topic", "", "Kafka topic for persist_adapter=kafka")
	flag.Parse()

	cfg := scheduler.DefaultConfig()
	cfg.N = *n
	cfg.T = *tSlots
	cfg.MaxVOQLen = *maxVOQLen
	cfg.KnockoutThresh = *knockoutThresh
	cfg.FrameSizeBlock = *frameSizeBlock
	cfg.Seed = uint32(*seed)
	cfg.AcceptorWorkers = *acceptorWorkers
	cfg.AllowRetryPrevious = *allowRetryPrevious
	cfg.AllowAdaptiveFrame = *allowAdaptiveFrame

	sched, err := scheduler.New(cfg)
	if err != nil {
		log.Fatalf("scheduler.New: %v", err)
	}

	gen, err := buildTrafficGenerator(*trafficPattern, cfg.N, *load, *hotFraction, *hotBias, uint32(*seed)^0xA5A5A5A5)
	if err != nil {
		log.Fatalf("traffic generator: %v", err)
	}

	metrics.Enable(metrics.Config{Enabled: *metricsEnabled, MetricsAddr: *metricsAddr})

	persister, err := persistence.BuildPersister(*persistAdapter, persistence.DemoOptions{
		RedisAddr:  *redisAddr,
		KafkaTopic: *kafkaTopic,
	})
	if err != nil {
		log.Fatalf("persistence.BuildPersister: %v", err)
	}
	cp := checkpoint.New(sched, persister, *checkpointInterval, "swqps-sim")
	cp.Start()

	apiServer := api.NewServer(sched)
	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)
	httpServer := &http.Server{Addr: *httpAddr, Handler: mux}

	go func() {
		fmt.Printf("scheduler API server listening on %s\n", *httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not listen on %s: %v", *httpAddr, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()

	fmt.Printf("running scheduler: N=%d T=%d load=%.2f pattern=%s\n", cfg.N, cfg.T, *load, *trafficPattern)

runLoop:
	for {
		select {
		case <-ticker.C:
			sched.Arrivals(gen.Next())
			for i := 0; i < *iterationsPerTick; i++ {
				sched.Iterate()
				metrics.ObserveIteration()
			}
			result := sched.Graduate()
			metrics.ObserveGraduation(result.MatchingSize)
			metrics.ObserveQueueState(sched.MaxVOQLength(), sched.Stability(), sched.Overloaded())
		case <-stop:
			break runLoop
		}
	}

	fmt.Println("\nshutting down...")
	cp.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}
	fmt.Println("stopped.")
}

func buildTrafficGenerator(pattern string, n int, load, hotFraction, hotBias float64, seed uint32) (traffic.Generator, error) {
	switch pattern {
	case "uniform":
		return traffic.NewUniform(n, load, seed), nil
	case "fullmesh":
		return traffic.NewFullMesh(n), nil
	case "diagonal":
		return traffic.NewDiagonal(n, load, seed), nil
	case "hotcold":
		return traffic.NewHotCold(n, load, hotFraction, hotBias, seed), nil
	default:
		return nil, fmt.Errorf("unknown traffic pattern: %s", pattern)
	}
}
