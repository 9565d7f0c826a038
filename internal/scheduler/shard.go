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

package scheduler

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-rendezvous"
)

// AcceptorRouter rendezvous-hashes output ports across a fixed pool of
// worker shards, so the accept phase of one iteration can run in parallel
// across outputs without a central dispatcher. Growing or shrinking the
// worker pool is a deployment-time decision, not a per-tick one; rendezvous
// hashing keeps that resize from reshuffling every port's assignment, only
// the minimum necessary.
type AcceptorRouter struct {
	rv      *rendezvous.Rendezvous
	workers int
}

// NewAcceptorRouter builds a router over `workers` shards, numbered
// [0, workers). A single-shard router degenerates to fully sequential
// acceptance.
func NewAcceptorRouter(workers int) *AcceptorRouter {
	if workers < 1 {
		workers = 1
	}
	names := make([]string, workers)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return &AcceptorRouter{
		rv:      rendezvous.New(names, xxhash.Sum64String),
		workers: workers,
	}
}

// NumWorkers returns the configured shard count.
func (r *AcceptorRouter) NumWorkers() int { return r.workers }

// ShardFor returns which shard owns outputPort's acceptor for this run.
func (r *AcceptorRouter) ShardFor(outputPort int) int {
	name := r.rv.Lookup(strconv.Itoa(outputPort))
	idx, err := strconv.Atoi(name)
	if err != nil {
		return 0
	}
	return idx
}
