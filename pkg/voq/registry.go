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

// Package voq implements the Virtual Output Queue registry that backs one
// input port of a crossbar scheduler: a vector of per-destination queue
// lengths, their exact sum, and Queue-Proportional Sampling (QPS) over that
// vector. A registry is owned by exactly one input port and is never shared
// across goroutines; the scheduler package serializes all access to it.
package voq

// Invalid is the sentinel returned by Sample when there is nothing to
// sample, and is used throughout the scheduler as "no port".
const Invalid = -1

// Registry is the contract both sampler backends satisfy. Linear scan suits
// small N (full unrolling in hardware); the Fenwick/BST backend suits large
// N in software. Both draw port j with probability lengths[j] / sum.
type Registry interface {
	// Add increments the queue length for output by k, saturating at the
	// configured maximum. It never fails; overflow only sets the sticky
	// Overloaded flag.
	Add(output int, k int)

	// Remove decrements the queue length for output by one. It is a
	// deliberate no-op when the queue is already at zero.
	Remove(output int)

	// Length returns the current queue length for output, or 0 if output
	// is out of range.
	Length(output int) int

	// Total returns the exact sum of all queue lengths.
	Total() int

	// Sample draws an output port with probability proportional to its
	// queue length, using r as the source of randomness. It returns
	// Invalid iff Total() == 0.
	Sample(r uint64) int

	// Reset clears every queue length, the sum, and the overloaded flag.
	Reset()

	// Overloaded reports whether Add has ever had to saturate a queue at
	// the configured maximum since the last Reset.
	Overloaded() bool

	// N returns the number of destination ports this registry tracks.
	N() int
}

// Backend selects a Registry implementation. Both satisfy the identical
// sampling contract; the choice is purely a complexity/footprint trade-off.
type Backend int

const (
	// Linear is an O(N) scan sampler, adequate for small N with full
	// unrolling in hardware.
	Linear Backend = iota
	// Fenwick is an O(log N) binary-indexed-tree sampler, preferred for
	// large N in software.
	Fenwick
)

// New constructs a Registry for the given backend, tracking n destination
// ports with per-queue length capped at maxLen.
func New(backend Backend, n, maxLen int) Registry {
	switch backend {
	case Fenwick:
		return NewFenwick(n, maxLen)
	default:
		return NewLinear(n, maxLen)
	}
}
