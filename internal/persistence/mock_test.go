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

func TestMockPersister_DedupesBySnapshotID(t *testing.T) {
	m := NewMockPersister()
	snaps := []Snapshot{
		{Tick: 1, SnapshotID: "s1", MatchedPairs: 5},
		{Tick: 1, SnapshotID: "s1", MatchedPairs: 999}, // retried commit, must not overwrite
	}
	if err := m.CommitSnapshots(context.Background(), snaps); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	got := m.Snapshots()
	if len(got) != 1 {
		t.Fatalf("expected 1 distinct snapshot, got %d", len(got))
	}
	if got[0].MatchedPairs != 5 {
		t.Fatalf("expected first commit to win, got MatchedPairs=%d", got[0].MatchedPairs)
	}
}

func TestMockPersister_AccumulatesAcrossCalls(t *testing.T) {
	m := NewMockPersister()
	if err := m.CommitSnapshots(context.Background(), []Snapshot{{Tick: 1, SnapshotID: "a"}}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := m.CommitSnapshots(context.Background(), []Snapshot{{Tick: 2, SnapshotID: "b"}}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(m.Snapshots()) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(m.Snapshots()))
	}
}
