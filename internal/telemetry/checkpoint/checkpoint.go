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

// Package checkpoint runs a background loop that periodically commits a
// point-in-time statistics snapshot of a scheduler through a
// persistence.SnapshotPersister. It never touches VOQ or calendar state
// directly; it only reads the counters a StatsSource already exposes.
package checkpoint

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"swqps/internal/persistence"
	"swqps/internal/telemetry/metrics"
)

// StatsSource is the read-only surface checkpoint needs from a scheduler.
// *scheduler.Scheduler satisfies this.
type StatsSource interface {
	Stats() (iterations, matchedPairs int64)
	Stability() bool
	Overloaded() bool
	MaxVOQLength() int
}

// Checkpoint periodically commits a Snapshot of its source's stats.
type Checkpoint struct {
	source     StatsSource
	persister  persistence.SnapshotPersister
	interval   time.Duration
	idPrefix   string
	stopChan   chan struct{}
	wg         sync.WaitGroup
	stopped    uint32
	tick       int64
	commitFail int64
}

// New builds a Checkpoint that commits every interval, tagging each
// snapshot's SnapshotID with idPrefix plus a monotonically increasing tick
// counter so retried commits are idempotent.
func New(source StatsSource, persister persistence.SnapshotPersister, interval time.Duration, idPrefix string) *Checkpoint {
	return &Checkpoint{
		source:    source,
		persister: persister,
		interval:  interval,
		idPrefix:  idPrefix,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the background commit loop.
func (c *Checkpoint) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.loop()
	}()
}

// Stop gracefully stops the loop after committing one final snapshot.
func (c *Checkpoint) Stop() {
	if !atomic.CompareAndSwapUint32(&c.stopped, 0, 1) {
		return
	}
	close(c.stopChan)
	c.wg.Wait()
}

func (c *Checkpoint) loop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.commitOnce()
		case <-c.stopChan:
			c.commitOnce()
			return
		}
	}
}

// commitOnce takes one snapshot and commits it, with a bounded timeout so a
// hung persister cannot block the loop indefinitely.
func (c *Checkpoint) commitOnce() {
	tick := atomic.AddInt64(&c.tick, 1)
	iterations, matched := c.source.Stats()
	snap := persistence.Snapshot{
		Tick:         tick,
		Iterations:   iterations,
		MatchedPairs: matched,
		MaxVOQLength: c.source.MaxVOQLength(),
		Stable:       c.source.Stability(),
		SnapshotID:   fmt.Sprintf("%s-%d", c.idPrefix, tick),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.persister.CommitSnapshots(ctx, []persistence.Snapshot{snap}); err != nil {
		atomic.AddInt64(&c.commitFail, 1)
		metrics.ObserveCheckpointError()
		return
	}
	metrics.ObserveQueueState(snap.MaxVOQLength, snap.Stable, c.source.Overloaded())
}

// Failures returns the number of commit attempts that returned an error.
func (c *Checkpoint) Failures() int64 {
	return atomic.LoadInt64(&c.commitFail)
}
