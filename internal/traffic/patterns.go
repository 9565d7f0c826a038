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

package traffic

import "swqps/internal/scheduler"

// FullMesh admits, every tick, one cell from every input to every output,
// so every VOQ stays permanently backlogged -- the boundary condition used
// to check that matching size approaches N under saturating load.
type FullMesh struct {
	n int
}

// NewFullMesh builds a FullMesh generator over n ports.
func NewFullMesh(n int) *FullMesh { return &FullMesh{n: n} }

func (f *FullMesh) Next() []scheduler.Arrival {
	arrivals := make([]scheduler.Arrival, 0, f.n*f.n)
	for i := 0; i < f.n; i++ {
		for j := 0; j < f.n; j++ {
			arrivals = append(arrivals, scheduler.Arrival{InputPort: i, OutputPort: j, Valid: true})
		}
	}
	return arrivals
}

// Diagonal admits, with probability Load each tick, one cell from input i
// to output i and nowhere else -- the boundary condition that exercises
// whether the scheduler converges to matching[i] = i under load with no
// contention between distinct flows.
type Diagonal struct {
	n    int
	load float64
	rng  scheduler.LFSR
}

// NewDiagonal builds a Diagonal generator over n ports at the given
// admission probability.
func NewDiagonal(n int, load float64, seed uint32) *Diagonal {
	return &Diagonal{n: n, load: clampProb(load), rng: scheduler.NewLFSR(seed)}
}

func (d *Diagonal) Next() []scheduler.Arrival {
	arrivals := make([]scheduler.Arrival, 0, d.n)
	for i := 0; i < d.n; i++ {
		if lfsrUnit(&d.rng) < d.load {
			arrivals = append(arrivals, scheduler.Arrival{InputPort: i, OutputPort: i, Valid: true})
		}
	}
	return arrivals
}

// HotCold skews destinations: each input, when it admits a cell, sends it
// to one of HotFraction*N "hot" outputs with probability HotBias, and to a
// uniformly chosen output otherwise. It exercises QPS under non-uniform
// destination popularity, the regime linear-scan and Fenwick sampling are
// both expected to satisfy identically.
type HotCold struct {
	n          int
	load       float64
	hotBias    float64
	hotOutputs int
	rng        scheduler.LFSR
}

// NewHotCold builds a HotCold generator: hotFraction of the N outputs are
// "hot" and receive traffic with probability hotBias whenever an input
// admits a cell.
func NewHotCold(n int, load, hotFraction, hotBias float64, seed uint32) *HotCold {
	hotOutputs := int(float64(n) * clampProb(hotFraction))
	if hotOutputs < 1 {
		hotOutputs = 1
	}
	if hotOutputs > n {
		hotOutputs = n
	}
	return &HotCold{
		n:          n,
		load:       clampProb(load),
		hotBias:    clampProb(hotBias),
		hotOutputs: hotOutputs,
		rng:        scheduler.NewLFSR(seed),
	}
}

func (h *HotCold) Next() []scheduler.Arrival {
	arrivals := make([]scheduler.Arrival, 0, h.n)
	for i := 0; i < h.n; i++ {
		if lfsrUnit(&h.rng) >= h.load {
			continue
		}
		var out int
		if lfsrUnit(&h.rng) < h.hotBias {
			out = lfsrIntn(&h.rng, h.hotOutputs)
		} else {
			out = lfsrIntn(&h.rng, h.n)
		}
		arrivals = append(arrivals, scheduler.Arrival{InputPort: i, OutputPort: out, Valid: true})
	}
	return arrivals
}
