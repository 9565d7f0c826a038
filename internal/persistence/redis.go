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
	"errors"
	"fmt"
	"time"
)

// RedisEvaler abstracts the minimal surface needed from a Redis client.
// Implementations may wrap github.com/redis/go-redis/v9 (Cmdable.Eval) or
// any equivalent.
type RedisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// RedisPersister commits snapshots idempotently using a Lua script:
//  1. SETNX marker:<snapshot_id> 1
//  2. If set -> HSET stats:<tick> with the snapshot fields
//  3. EXPIRE the marker for leak protection
//
// If SETNX fails (already applied), the script is still a no-op.
type RedisPersister struct {
	client    RedisEvaler
	markerTTL time.Duration
}

// NewRedisPersister returns a persister with the given client and marker
// TTL. markerTTL guards against unbounded growth of commit markers; choose
// a duration comfortably larger than the maximum retry window.
func NewRedisPersister(client RedisEvaler, markerTTL time.Duration) *RedisPersister {
	if markerTTL <= 0 {
		markerTTL = 24 * time.Hour
	}
	return &RedisPersister{client: client, markerTTL: markerTTL}
}

const redisSnapshotScript = `
local statsKey = KEYS[1]
local markerKey = KEYS[2]
local ttlSeconds = tonumber(ARGV[1])
local set = redis.call('SETNX', markerKey, 1)
if set == 1 then
  redis.call('HSET', statsKey,
    'iterations', ARGV[2],
    'matched_pairs', ARGV[3],
    'max_voq_length', ARGV[4],
    'stable', ARGV[5])
  if ttlSeconds and ttlSeconds > 0 then
    redis.call('EXPIRE', markerKey, ttlSeconds)
  end
  return 1
else
  return 0
end
`

// RedisStatsKey returns the hash key holding one tick's snapshot fields.
func RedisStatsKey(tick int64) string { return fmt.Sprintf("swqps:stats:%d", tick) }

// RedisMarkerKey returns the idempotency marker key for a snapshot commit.
func RedisMarkerKey(snapshotID string) string { return fmt.Sprintf("swqps:commit:%s", snapshotID) }

// CommitSnapshots applies each snapshot using one EVAL per snapshot.
func (r *RedisPersister) CommitSnapshots(ctx context.Context, snapshots []Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	for _, s := range snapshots {
		if s.SnapshotID == "" {
			return errors.New("persistence: Snapshot.SnapshotID must be set")
		}
		keys := []string{RedisStatsKey(s.Tick), RedisMarkerKey(s.SnapshotID)}
		stable := 0
		if s.Stable {
			stable = 1
		}
		args := []interface{}{
			int(r.markerTTL.Seconds()),
			s.Iterations,
			s.MatchedPairs,
			s.MaxVOQLength,
			stable,
		}
		if _, err := r.client.Eval(ctx, redisSnapshotScript, keys, args...); err != nil {
			return fmt.Errorf("redis eval tick=%d snapshot=%s: %w", s.Tick, s.SnapshotID, err)
		}
	}
	return nil
}
