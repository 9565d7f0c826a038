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

package voq

// LinearRegistry samples by a straight cumulative-sum scan over lengths.
// Sample is O(N) and Add/Remove are O(1); this is the reference
// implementation the Fenwick backend is checked against.
type LinearRegistry struct {
	lengths    []int
	sum        int
	maxLen     int
	overloaded bool
}

// NewLinear returns a LinearRegistry tracking n destination ports, each
// capped at maxLen.
func NewLinear(n, maxLen int) *LinearRegistry {
	return &LinearRegistry{
		lengths: make([]int, n),
		maxLen:  maxLen,
	}
}

func (r *LinearRegistry) N() int { return len(r.lengths) }

// Add increments lengths[output] by k, saturating at maxLen. Invalid ports
// and non-positive k are silently ignored.
func (r *LinearRegistry) Add(output int, k int) {
	if output < 0 || output >= len(r.lengths) || k <= 0 {
		return
	}
	room := r.maxLen - r.lengths[output]
	if k >= room {
		r.sum += room
		r.lengths[output] = r.maxLen
		if k > room {
			r.overloaded = true
		}
		return
	}
	r.lengths[output] += k
	r.sum += k
}

// Remove decrements lengths[output] by one; a no-op if already zero.
func (r *LinearRegistry) Remove(output int) {
	if output < 0 || output >= len(r.lengths) {
		return
	}
	if r.lengths[output] > 0 {
		r.lengths[output]--
		r.sum--
	}
}

func (r *LinearRegistry) Length(output int) int {
	if output < 0 || output >= len(r.lengths) {
		return 0
	}
	return r.lengths[output]
}

func (r *LinearRegistry) Total() int { return r.sum }

// Sample walks the cumulative sum until it passes target = r mod sum.
// Zero-length entries contribute nothing to the cumulative sum and are
// therefore skipped automatically.
func (r *LinearRegistry) Sample(rnd uint64) int {
	if r.sum == 0 {
		return Invalid
	}
	target := int(rnd % uint64(r.sum))
	cumsum := 0
	for j, length := range r.lengths {
		cumsum += length
		if target < cumsum {
			return j
		}
	}
	// Unreachable given sum accounting above, but mirrors the reference
	// sampler's defensive fallback instead of panicking.
	return len(r.lengths) - 1
}

func (r *LinearRegistry) Reset() {
	for i := range r.lengths {
		r.lengths[i] = 0
	}
	r.sum = 0
	r.overloaded = false
}

func (r *LinearRegistry) Overloaded() bool { return r.overloaded }
