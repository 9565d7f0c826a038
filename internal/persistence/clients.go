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
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// LoggingRedisEvaler is a dependency-free demo client that logs the Lua
// evaluation instead of talking to a real Redis instance. Not for
// production use.
type LoggingRedisEvaler struct{}

// Eval implements RedisEvaler.
func (LoggingRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	fmt.Printf("[redis-demo] EVAL script(len=%d) KEYS=%v ARGS=%v\n", len(script), keys, args)
	return int64(1), nil
}

// GoRedisEvaler wraps github.com/redis/go-redis/v9 to implement RedisEvaler
// against a real Redis server.
type GoRedisEvaler struct{ c *redis.Client }

// NewGoRedisEvaler dials addr (e.g. "127.0.0.1:6379").
func NewGoRedisEvaler(addr string) *GoRedisEvaler {
	return &GoRedisEvaler{c: redis.NewClient(&redis.Options{Addr: addr})}
}

// Eval implements RedisEvaler.
func (g *GoRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return g.c.Eval(ctx, script, keys, args...).Result()
}

// LoggingKafkaProducer is a dependency-free demo producer that logs the
// message it would have published. Not for production use.
type LoggingKafkaProducer struct{}

// Produce implements KafkaProducer.
func (LoggingKafkaProducer) Produce(ctx context.Context, topic string, key, value []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	fmt.Printf("[kafka-demo] TOPIC=%s KEY=%s VALUE=%s\n", topic, string(key), truncate(string(value), 256))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// DemoOptions holds the knobs BuildPersister needs to construct a demo
// adapter without external infrastructure.
type DemoOptions struct {
	RedisAddr             string
	RedisMarkerTTLSeconds int
	KafkaTopic            string
}
