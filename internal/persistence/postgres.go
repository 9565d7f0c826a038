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
	"database/sql"
	"fmt"
)

// PostgresPersister commits snapshots inside a transaction per batch, using
// an idempotency table (applied_snapshots) to make retried commits no-ops
// even if the caller resends the same batch.
//
// Expected schema:
//
//	CREATE TABLE applied_snapshots (
//	    snapshot_id TEXT PRIMARY KEY,
//	    applied_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE TABLE scheduler_stats (
//	    tick           BIGINT PRIMARY KEY,
//	    iterations     BIGINT NOT NULL,
//	    matched_pairs  BIGINT NOT NULL,
//	    max_voq_length INT NOT NULL,
//	    stable         BOOLEAN NOT NULL
//	);
type PostgresPersister struct {
	db *sql.DB
}

// NewPostgresPersister returns a persister backed by db.
func NewPostgresPersister(db *sql.DB) *PostgresPersister {
	return &PostgresPersister{db: db}
}

// CommitSnapshots applies the whole batch inside one transaction. Each
// snapshot is inserted into applied_snapshots ON CONFLICT DO NOTHING; only
// snapshots that actually inserted (i.e. were not already applied) get their
// stats row upserted, so a retried batch commits nothing twice.
func (p *PostgresPersister) CommitSnapshots(ctx context.Context, snapshots []Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, s := range snapshots {
		if s.SnapshotID == "" {
			return fmt.Errorf("persistence: Snapshot.SnapshotID must be set")
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO applied_snapshots (snapshot_id) VALUES ($1) ON CONFLICT DO NOTHING`,
			s.SnapshotID)
		if err != nil {
			return fmt.Errorf("insert applied_snapshots %s: %w", s.SnapshotID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected %s: %w", s.SnapshotID, err)
		}
		if n == 0 {
			continue // already applied
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scheduler_stats (tick, iterations, matched_pairs, max_voq_length, stable)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (tick) DO UPDATE SET
			   iterations = EXCLUDED.iterations,
			   matched_pairs = EXCLUDED.matched_pairs,
			   max_voq_length = EXCLUDED.max_voq_length,
			   stable = EXCLUDED.stable`,
			s.Tick, s.Iterations, s.MatchedPairs, s.MaxVOQLength, s.Stable); err != nil {
			return fmt.Errorf("upsert scheduler_stats tick=%d: %w", s.Tick, err)
		}
	}
	return tx.Commit()
}
