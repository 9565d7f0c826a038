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
	"errors"
	"fmt"
	"time"
)

// BuildPersister constructs a SnapshotPersister from a string selector.
// Supported adapters:
//   - "mock": in-process, dependency-free (default)
//   - "redis": idempotent Redis adapter; uses a real client when
//     opts.RedisAddr is set, otherwise a logging demo client
//   - "kafka": idempotent Kafka adapter using a logging producer
//   - "postgres": not wired here (needs a real *sql.DB); construct
//     NewPostgresPersister directly with one
func BuildPersister(adapter string, opts DemoOptions) (SnapshotPersister, error) {
	switch adapter {
	case "", "mock":
		return NewMockPersister(), nil
	case "redis":
		ttl := time.Duration(opts.RedisMarkerTTLSeconds) * time.Second
		var evaler RedisEvaler
		if opts.RedisAddr != "" {
			evaler = NewGoRedisEvaler(opts.RedisAddr)
		} else {
			evaler = LoggingRedisEvaler{}
		}
		return NewRedisPersister(evaler, ttl), nil
	case "kafka":
		topic := opts.KafkaTopic
		if topic == "" {
			topic = "swqps-snapshots"
		}
		return NewKafkaPersister(LoggingKafkaProducer{}, topic), nil
	case "postgres":
		return nil, errors.New("postgres adapter is not enabled by BuildPersister; construct NewPostgresPersister with a real *sql.DB")
	default:
		return nil, fmt.Errorf("unknown persistence adapter: %s", adapter)
	}
}
