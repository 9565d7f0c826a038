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

package persistence

import (
	"context"
	"encoding/json"
	"fmt"
)

// KafkaProducer abstracts the minimal surface needed to publish a message.
// Implementations may wrap a real Kafka client, or in tests a channel-backed
// fake.
type KafkaProducer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// snapshotMessage is the wire shape published for each committed snapshot.
// Consumers dedupe on SnapshotID.
type snapshotMessage struct {
	Tick         int64  `json:"tick"`
	Iterations   int64  `json:"iterations"`
	MatchedPairs int64  `json:"matched_pairs"`
	MaxVOQLength int    `json:"max_voq_length"`
	Stable       bool   `json:"stable"`
	SnapshotID   string `json:"snapshot_id"`
}

// KafkaPersister publishes one JSON message per snapshot, keyed by
// SnapshotID. Kafka delivery is at-least-once; downstream consumers are
// expected to dedupe on the message key, matching the idempotency contract
// every other adapter enforces server-side.
type KafkaPersister struct {
	producer KafkaProducer
	topic    string
}

// NewKafkaPersister returns a persister that publishes to the given topic.
func NewKafkaPersister(producer KafkaProducer, topic string) *KafkaPersister {
	return &KafkaPersister{producer: producer, topic: topic}
}

// CommitSnapshots publishes each snapshot as an independent message.
func (k *KafkaPersister) CommitSnapshots(ctx context.Context, snapshots []Snapshot) error {
	for _, s := range snapshots {
		if s.SnapshotID == "" {
			return fmt.Errorf("persistence: Snapshot.SnapshotID must be set")
		}
		msg := snapshotMessage{
			Tick:         s.Tick,
			Iterations:   s.Iterations,
			MatchedPairs: s.MatchedPairs,
			MaxVOQLength: s.MaxVOQLength,
			Stable:       s.Stable,
			SnapshotID:   s.SnapshotID,
		}
		value, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal snapshot %s: %w", s.SnapshotID, err)
		}
		if err := k.producer.Produce(ctx, k.topic, []byte(s.SnapshotID), value); err != nil {
			return fmt.Errorf("produce snapshot %s: %w", s.SnapshotID, err)
		}
	}
	return nil
}
