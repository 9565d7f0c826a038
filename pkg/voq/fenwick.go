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

// FenwickRegistry is a binary-indexed-tree backed VOQ registry: point
// update and "find smallest index whose prefix sum exceeds r" both run in
// O(log N). Internal array length is the next power of two >= N; padding
// leaves are always zero and can never be sampled, matching the reference
// saber::BST tree used by the frame batch engine.
type FenwickRegistry struct {
	tree       []int // 1-indexed BIT over `size` leaves
	lengths    []int // 0-indexed logical lengths, len == n
	size       int   // next power of two >= n
	sum        int
	maxLen     int
	overloaded bool
}

// NewFenwick returns a FenwickRegistry tracking n destination ports, each
// capped at maxLen.
func NewFenwick(n, maxLen int) *FenwickRegistry {
	size := nextPow2(n)
	return &FenwickRegistry{
		tree:    make([]int, size+1),
		lengths: make([]int, n),
		size:    size,
		maxLen:  maxLen,
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	if p == 0 {
		p = 1
	}
	return p
}

func (f *FenwickRegistry) N() int { return len(f.lengths) }

// update applies delta to leaf i (0-indexed) across the BIT.
func (f *FenwickRegistry) update(i, delta int) {
	if delta == 0 {
		return
	}
	for idx := i + 1; idx <= f.size; idx += idx & (-idx) {
		f.tree[idx] += delta
	}
}

func (f *FenwickRegistry) Add(output int, k int) {
	if output < 0 || output >= len(f.lengths) || k <= 0 {
		return
	}
	room := f.maxLen - f.lengths[output]
	delta := k
	if k >= room {
		delta = room
		f.lengths[output] = f.maxLen
		if k > room {
			f.overloaded = true
		}
	} else {
		f.lengths[output] += k
	}
	if delta == 0 {
		return
	}
	f.sum += delta
	f.update(output, delta)
}

func (f *FenwickRegistry) Remove(output int) {
	if output < 0 || output >= len(f.lengths) {
		return
	}
	if f.lengths[output] > 0 {
		f.lengths[output]--
		f.sum--
		f.update(output, -1)
	}
}

func (f *FenwickRegistry) Length(output int) int {
	if output < 0 || output >= len(f.lengths) {
		return 0
	}
	return f.lengths[output]
}

func (f *FenwickRegistry) Total() int { return f.sum }

// Sample performs the classic Fenwick-tree binary-lifting search for the
// smallest 0-indexed leaf j such that the prefix sum over [0, j] exceeds
// target = r mod sum.
func (f *FenwickRegistry) Sample(r uint64) int {
	if f.sum == 0 {
		return Invalid
	}
	target := int(r % uint64(f.sum))
	pos, cur := 0, 0
	for pw := f.size; pw > 0; pw >>= 1 {
		next := pos + pw
		if next <= f.size && cur+f.tree[next] <= target {
			pos = next
			cur += f.tree[next]
		}
	}
	if pos >= len(f.lengths) {
		pos = len(f.lengths) - 1
	}
	return pos
}

func (f *FenwickRegistry) Reset() {
	for i := range f.tree {
		f.tree[i] = 0
	}
	for i := range f.lengths {
		f.lengths[i] = 0
	}
	f.sum = 0
	f.overloaded = false
}

func (f *FenwickRegistry) Overloaded() bool { return f.overloaded }
