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
	"testing"
)

func TestBuildPersister_DefaultMock(t *testing.T) {
	p, err := BuildPersister("", DemoOptions{})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if p == nil {
		t.Fatalf("expected non-nil persister")
	}
	if err := p.CommitSnapshots(context.Background(), []Snapshot{{Tick: 1, SnapshotID: "s"}}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
}

func TestBuildPersister_RedisLoggingAndReal(t *testing.T) {
	p, err := BuildPersister("redis", DemoOptions{RedisMarkerTTLSeconds: 3600})
	if err != nil || p == nil {
		t.Fatalf("unexpected: %v %v", p, err)
	}
	p2, err := BuildPersister("redis", DemoOptions{RedisAddr: "127.0.0.1:0"})
	if err != nil || p2 == nil {
		t.Fatalf("unexpected: %v %v", p2, err)
	}
}

func TestBuildPersister_Kafka(t *testing.T) {
	p, err := BuildPersister("kafka", DemoOptions{KafkaTopic: "t"})
	if err != nil || p == nil {
		t.Fatalf("unexpected: %v %v", p, err)
	}
}

func TestBuildPersister_PostgresReturnsError(t *testing.T) {
	p, err := BuildPersister("postgres", DemoOptions{})
	if err == nil || p != nil {
		t.Fatalf("expected error for postgres adapter")
	}
}

func TestBuildPersister_UnknownAdapter(t *testing.T) {
	_, err := BuildPersister("does-not-exist", DemoOptions{})
	if err == nil {
		t.Fatalf("expected error for unknown adapter")
	}
}
