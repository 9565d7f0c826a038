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

// Package persistence provides idempotent adapters that commit periodic
// scheduler statistics snapshots to an external store, for hosts that want
// a durable record of throughput and stability over time. The scheduling
// core itself never touches these adapters directly; a host wires one in
// alongside a checkpoint loop.
//
// Every adapter commits with an idempotency key (SnapshotID). For the mock,
// Redis and Postgres adapters a retried commit (crash, timeout, duplicate
// delivery) applying the same snapshot again is a no-op; the Kafka adapter
// publishes the message again, keyed by SnapshotID for consumer dedup.
package persistence

import "context"

// Snapshot is the adapter-facing shape for one periodic statistics commit.
//
//   - Tick: the tick counter the snapshot was taken at.
//   - Iterations: total propose/accept iterations run so far.
//   - MatchedPairs: total matched pairs graduated so far.
//   - MaxVOQLength: the largest single VOQ length observed at commit time.
//   - Stable: the scheduler's stability query result at commit time.
//   - SnapshotID: globally unique idempotency key for this commit; reusing
//     the same id for a retried commit makes the operation idempotent.
type Snapshot struct {
	Tick         int64
	Iterations   int64
	MatchedPairs int64
	MaxVOQLength int
	Stable       bool
	SnapshotID   string
}

// SnapshotPersister is the minimal API supported by all adapters.
// Implementations must apply each snapshot atomically with respect to its
// SnapshotID, and the operation must be safe to retry: a duplicate
// SnapshotID must become a no-op.
type SnapshotPersister interface {
	CommitSnapshots(ctx context.Context, snapshots []Snapshot) error
}
