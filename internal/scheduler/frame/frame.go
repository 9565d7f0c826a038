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

// Package frame implements the SB-QPS batch variant of the crossbar
// scheduler: instead of a rolling sliding window, an entire frame of T
// slots is scheduled with one QPS-1 attempt per slot, then a
// post-optimization pass colors leftover cells into any still-empty
// (input-slot, output-slot) position before the frame is flushed.
package frame

import "swqps/internal/scheduler"

// Invalid mirrors scheduler.Invalid: the output/input id -1 means
// "unmatched".
const Invalid = scheduler.Invalid

// candidate is one input's request to one output within a single slot.
type candidate struct {
	input  int
	voqLen int
}

// edge identifies one (input, output) pair carrying residual backlog.
type edge struct {
	input, output int
}

// cursor is the per-edge "resume scanning here" bookmark used by both the
// post-optimization coloring pass and the retry-previous path, so repeated
// scans do not re-walk the front of a mostly-full frame.
type cursor struct {
	nextSlot int
}
