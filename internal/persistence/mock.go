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
	"sync"
)

// MockPersister accumulates committed snapshots in memory, deduping by
// SnapshotID. It is the default adapter for demos and tests that don't need
// a real store.
type MockPersister struct {
	mu        sync.Mutex
	committed map[string]Snapshot
}

// NewMockPersister returns an empty MockPersister.
func NewMockPersister() *MockPersister {
	return &MockPersister{committed: make(map[string]Snapshot)}
}

// CommitSnapshots implements SnapshotPersister.
func (m *MockPersister) CommitSnapshots(ctx context.Context, snapshots []Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range snapshots {
		if _, exists := m.committed[s.SnapshotID]; exists {
			continue
		}
		m.committed[s.SnapshotID] = s
	}
	return nil
}

// Snapshots returns a copy of every distinct snapshot committed so far.
func (m *MockPersister) Snapshots() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Snapshot, 0, len(m.committed))
	for _, s := range m.committed {
		out = append(out, s)
	}
	return out
}
