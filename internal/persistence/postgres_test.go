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
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
)

// Minimal fake SQL driver to exercise PostgresPersister's transaction and
// exec paths without a real database.

type fakeDB struct {
	execs         []string
	failBegin     error
	failCommit    error
	failExecAt    map[int]error // 1-based index of exec call -> error
	rowsAffected  map[int]int64 // 1-based index of exec call -> RowsAffected
	commitCount   int
	rollbackCount int
}

type fakeDriver struct{}
type fakeConn struct{ db *fakeDB }
type fakeTx struct {
	db     *fakeDB
	closed bool
}
type fakeResult struct{ n int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.n, nil }

func (fakeDriver) Open(name string) (driver.Conn, error) { return &fakeConn{db: testFakeDB}, nil }

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("not supported")
}
func (c *fakeConn) Close() error { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}
func (c *fakeConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if c.db.failBegin != nil {
		return nil, c.db.failBegin
	}
	return &fakeTx{db: c.db}, nil
}
func (c *fakeConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.db.execs = append(c.db.execs, query)
	idx := len(c.db.execs)
	if c.db.failExecAt != nil {
		if err, ok := c.db.failExecAt[idx]; ok {
			return nil, err
		}
	}
	n := int64(1)
	if c.db.rowsAffected != nil {
		if v, ok := c.db.rowsAffected[idx]; ok {
			n = v
		}
	}
	return fakeResult{n: n}, nil
}

func (t *fakeTx) Commit() error {
	if t.closed {
		return errors.New("already closed")
	}
	t.db.commitCount++
	t.closed = true
	if t.db.failCommit != nil {
		return t.db.failCommit
	}
	return nil
}
func (t *fakeTx) Rollback() error {
	if t.closed {
		return nil
	}
	t.db.rollbackCount++
	t.closed = true
	return nil
}

var testFakeDB *fakeDB

func init() {
	sql.Register("fakesql-swqps", fakeDriver{})
}

func newSQLDBWithFake(db *fakeDB) *sql.DB {
	testFakeDB = db
	d, _ := sql.Open("fakesql-swqps", "")
	return d
}

func TestPostgresPersister_Empty(t *testing.T) {
	db := newSQLDBWithFake(&fakeDB{})
	p := NewPostgresPersister(db)
	if err := p.CommitSnapshots(context.Background(), nil); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestPostgresPersister_MissingSnapshotID_RollsBack(t *testing.T) {
	f := &fakeDB{}
	db := newSQLDBWithFake(f)
	p := NewPostgresPersister(db)
	err := p.CommitSnapshots(context.Background(), []Snapshot{{Tick: 1}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if f.rollbackCount != 1 || f.commitCount != 0 {
		t.Fatalf("expected rollback only, got c=%d r=%d", f.commitCount, f.rollbackCount)
	}
}

func TestPostgresPersister_AppliesInsertAndUpsert(t *testing.T) {
	f := &fakeDB{}
	db := newSQLDBWithFake(f)
	p := NewPostgresPersister(db)
	snaps := []Snapshot{
		{Tick: 1, Iterations: 5, MatchedPairs: 3, MaxVOQLength: 2, Stable: true, SnapshotID: "s1"},
		{Tick: 2, Iterations: 6, MatchedPairs: 4, MaxVOQLength: 1, Stable: false, SnapshotID: "s2"},
	}
	if err := p.CommitSnapshots(context.Background(), snaps); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if f.commitCount != 1 || f.rollbackCount != 0 {
		t.Fatalf("commit/rollback mismatch: %d/%d", f.commitCount, f.rollbackCount)
	}
	var hasApplied, hasUpsert int
	for _, q := range f.execs {
		if strings.Contains(q, "INSERT INTO applied_snapshots") {
			hasApplied++
		}
		if strings.Contains(q, "INSERT INTO scheduler_stats") {
			hasUpsert++
		}
	}
	if hasApplied != 2 || hasUpsert != 2 {
		t.Fatalf("expected 2 applied inserts and 2 stats upserts, got %d/%d: %v", hasApplied, hasUpsert, f.execs)
	}
}

func TestPostgresPersister_AlreadyAppliedSkipsStatsUpsert(t *testing.T) {
	// First exec (applied_snapshots insert) reports 0 rows affected: already applied.
	f := &fakeDB{rowsAffected: map[int]int64{1: 0}}
	db := newSQLDBWithFake(f)
	p := NewPostgresPersister(db)
	if err := p.CommitSnapshots(context.Background(), []Snapshot{{Tick: 1, SnapshotID: "s1"}}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(f.execs) != 1 {
		t.Fatalf("expected only the applied_snapshots insert to run, got %v", f.execs)
	}
}

func TestPostgresPersister_ExecError_Rollback(t *testing.T) {
	f := &fakeDB{failExecAt: map[int]error{1: errors.New("boom")}}
	db := newSQLDBWithFake(f)
	p := NewPostgresPersister(db)
	err := p.CommitSnapshots(context.Background(), []Snapshot{{Tick: 1, SnapshotID: "s1"}})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.rollbackCount != 1 || f.commitCount != 0 {
		t.Fatalf("expected rollback only, got c=%d r=%d", f.commitCount, f.rollbackCount)
	}
}

func TestPostgresPersister_CommitError(t *testing.T) {
	f := &fakeDB{failCommit: errors.New("commit-fail")}
	db := newSQLDBWithFake(f)
	p := NewPostgresPersister(db)
	err := p.CommitSnapshots(context.Background(), []Snapshot{{Tick: 1, SnapshotID: "s1"}})
	if err == nil || err.Error() != "commit-fail" {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.commitCount != 1 {
		t.Fatalf("expected one commit attempt")
	}
}
