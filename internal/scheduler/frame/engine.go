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

package frame

import (
	"sort"

	"swqps/internal/scheduler"
	"swqps/pkg/voq"
)

// Result is one flushed frame: a completed schedule plus the count of
// non-Invalid entries in it, and how many slots it spans (equal to Config.T
// unless AllowAdaptiveFrame grew it).
type Result struct {
	Schedule     [][]int // Schedule[slot][input] = output, or Invalid
	MatchedPairs int
	Slots        int
}

// Engine drives the SB-QPS half-half acceptor and its end-of-frame
// post-optimization coloring pass. One Engine owns N VOQ registries (for
// QPS sampling weight) and an exact per-edge packet counter (for
// post-optimization bookkeeping), mirroring the two parallel pieces of
// state the batch scheduler needs: "how likely is this edge" and "exactly
// how many cells are still outstanding on it".
type Engine struct {
	cfg scheduler.Config

	voqs         []voq.Registry
	packetCounts [][]int

	matchFlagIn  [][]bool // [input][slot]
	matchFlagOut [][]bool // [output][slot]
	schedule     [][]int  // [slot][input] = output, or Invalid

	nextTryColor [][]cursor // [input][output]

	inputRNG []scheduler.LFSR

	frameSize   int
	currentSlot int

	totalIterations   int64
	totalMatchedPairs int64
	droppedResiduals  int64
}

// NewEngine constructs an Engine from an already-validated Config.
func NewEngine(cfg scheduler.Config) *Engine {
	e := &Engine{cfg: cfg}
	e.voqs = make([]voq.Registry, cfg.N)
	e.packetCounts = make([][]int, cfg.N)
	e.nextTryColor = make([][]cursor, cfg.N)
	e.inputRNG = make([]scheduler.LFSR, cfg.N)
	for i := 0; i < cfg.N; i++ {
		e.voqs[i] = voq.New(cfg.SamplerBackend, cfg.N, cfg.MaxVOQLen)
		e.packetCounts[i] = make([]int, cfg.N)
		e.nextTryColor[i] = make([]cursor, cfg.N)
		e.inputRNG[i] = scheduler.NewLFSR(cfg.Seed ^ uint32(i))
	}
	e.allocateFrame(cfg.T)
	return e
}

func (e *Engine) allocateFrame(size int) {
	e.frameSize = size
	e.schedule = make([][]int, size)
	for s := range e.schedule {
		e.schedule[s] = make([]int, e.cfg.N)
		for i := range e.schedule[s] {
			e.schedule[s][i] = Invalid
		}
	}
	e.matchFlagIn = make([][]bool, e.cfg.N)
	e.matchFlagOut = make([][]bool, e.cfg.N)
	for i := 0; i < e.cfg.N; i++ {
		e.matchFlagIn[i] = make([]bool, size)
		e.matchFlagOut[i] = make([]bool, size)
	}
	e.currentSlot = 0
}

func (e *Engine) growFrame(extra int) {
	newSize := e.frameSize + extra
	for s := e.frameSize; s < newSize; s++ {
		row := make([]int, e.cfg.N)
		for i := range row {
			row[i] = Invalid
		}
		e.schedule = append(e.schedule, row)
	}
	for i := 0; i < e.cfg.N; i++ {
		e.matchFlagIn[i] = append(e.matchFlagIn[i], make([]bool, extra)...)
		e.matchFlagOut[i] = append(e.matchFlagOut[i], make([]bool, extra)...)
	}
	e.frameSize = newSize
}

// Reset reinitializes every VOQ, counter, cursor and bitmap, and re-seeds
// every input's LFSR.
func (e *Engine) Reset() {
	for i := 0; i < e.cfg.N; i++ {
		e.voqs[i].Reset()
		for j := range e.packetCounts[i] {
			e.packetCounts[i][j] = 0
		}
		for j := range e.nextTryColor[i] {
			e.nextTryColor[i][j] = cursor{}
		}
		e.inputRNG[i] = scheduler.NewLFSR(e.cfg.Seed ^ uint32(i))
	}
	e.allocateFrame(e.cfg.T)
	e.totalIterations = 0
	e.totalMatchedPairs = 0
	e.droppedResiduals = 0
}

// AddArrival deposits one cell from input toward output, both in the QPS
// sampling registry and the exact packet counter that post-optimization
// reconciles against.
func (e *Engine) AddArrival(input, output int) {
	if input < 0 || input >= e.cfg.N || output < 0 || output >= e.cfg.N {
		return
	}
	e.voqs[input].Add(output, 1)
	e.packetCounts[input][output]++
}

// Tick applies one slot's arrivals, runs one QPS-1 iteration with the
// half-half acceptor rule for the current frame slot, and advances. When
// the advance wraps past the frame's last slot it runs post-optimization
// and returns the completed frame; every other call returns nil.
func (e *Engine) Tick(arrivals []scheduler.Arrival) *Result {
	for _, a := range arrivals {
		if a.Valid {
			e.AddArrival(a.InputPort, a.OutputPort)
		}
	}

	e.runSlot(e.currentSlot)
	e.totalIterations++
	e.currentSlot++

	if e.currentSlot < e.cfg.T {
		return nil
	}
	return e.flushFrame()
}

// runSlot performs one QPS-1 proposer pass followed by the half-half
// acceptor rule for absolute frame slot f.
func (e *Engine) runSlot(f int) {
	byOutput := make(map[int][]candidate, e.cfg.N)

	for i := 0; i < e.cfg.N; i++ {
		if e.voqs[i].Total() == 0 {
			continue
		}
		e.inputRNG[i] = e.inputRNG[i].Next()
		j := e.voqs[i].Sample(uint64(e.inputRNG[i].Value()))
		if j == Invalid {
			continue
		}
		byOutput[j] = append(byOutput[j], candidate{input: i, voqLen: e.voqs[i].Length(j)})
	}

	secondHalf := f+1 > e.cfg.T/2

	for j, cands := range byOutput {
		sort.SliceStable(cands, func(a, b int) bool {
			if cands[a].voqLen != cands[b].voqLen {
				return cands[a].voqLen > cands[b].voqLen
			}
			return cands[a].input < cands[b].input
		})

		primary := cands[0]
		e.commit(f, primary.input, j)

		rest := cands[1:]
		if secondHalf && len(rest) > 0 {
			secondary := rest[0]
			if e.placeBackward(secondary.input, j, f) {
				rest = rest[1:]
			}
		}

		if e.cfg.AllowRetryPrevious {
			for _, loser := range rest {
				e.placeBackward(loser.input, j, f)
			}
		}
	}
}

// commit assigns slot f of the frame to (input, output), the routine both
// the primary acceptance and post-optimization coloring funnel through.
func (e *Engine) commit(slot, input, output int) {
	e.schedule[slot][input] = output
	e.matchFlagIn[input][slot] = true
	e.matchFlagOut[output][slot] = true
	e.packetCounts[input][output]--
	e.voqs[input].Remove(output)
	e.totalMatchedPairs++
}

// placeBackward first-fits (input, output) into the earliest slot strictly
// before before that is still free for both sides, scanning forward from
// the edge's persisted cursor. It reports whether a slot was found.
func (e *Engine) placeBackward(input, output, before int) bool {
	c := e.nextTryColor[input][output].nextSlot
	for s := c; s < before; s++ {
		if !e.matchFlagIn[input][s] && !e.matchFlagOut[output][s] {
			e.commit(s, input, output)
			e.nextTryColor[input][output] = cursor{nextSlot: s + 1}
			return true
		}
	}
	return false
}

// flushFrame runs the end-of-frame post-optimization coloring pass (which
// places or drops every residual; none is carried into the next frame),
// packages the completed frame into a Result, and rearms state for the
// next frame.
func (e *Engine) flushFrame() *Result {
	e.postOptimization()

	result := &Result{Schedule: e.schedule, Slots: e.frameSize}
	for _, row := range e.schedule {
		for _, out := range row {
			if out != Invalid {
				result.MatchedPairs++
			}
		}
	}

	e.allocateFrame(e.cfg.T)
	for i := 0; i < e.cfg.N; i++ {
		for j := range e.nextTryColor[i] {
			e.nextTryColor[i][j] = cursor{}
		}
	}
	return result
}

// postOptimization colors every residual cell -- one still outstanding in
// packetCounts -- into the first still-free (input-slot, output-slot)
// position, growing the frame in FrameSizeBlock increments when
// AllowAdaptiveFrame is set and dropping (with a sticky flag) otherwise.
func (e *Engine) postOptimization() {
	residuals := e.collectResiduals()
	residuals = e.shuffleResiduals(residuals)

	// maxGrowthBlocks bounds how many FrameSizeBlock increments a single
	// frame may grow by; it guards against pathological residual patterns
	// growing the frame without bound.
	const maxGrowthBlocks = 64

	for _, r := range residuals {
		remaining := e.packetCounts[r.input][r.output]
		for k := 0; k < remaining; k++ {
			placed := e.colorOne(r.input, r.output)
			grown := 0
			for !placed && e.cfg.AllowAdaptiveFrame && grown < maxGrowthBlocks {
				e.growFrame(e.cfg.FrameSizeBlock)
				grown++
				placed = e.colorOne(r.input, r.output)
			}
			if !placed {
				e.dropResidual(r.input, r.output)
			}
		}
	}
}

// colorOne attempts to place one cell of (input, output) into the earliest
// still-free slot across the whole current frame.
func (e *Engine) colorOne(input, output int) bool {
	return e.placeBackward(input, output, e.frameSize)
}

// dropResidual discards one outstanding cell that post-optimization could
// not place, per the non-adaptive "drop with sticky flag" policy.
func (e *Engine) dropResidual(input, output int) {
	if e.packetCounts[input][output] <= 0 {
		return
	}
	e.packetCounts[input][output]--
	e.voqs[input].Remove(output)
	e.droppedResiduals++
}

func (e *Engine) collectResiduals() []edge {
	var residuals []edge
	for i := 0; i < e.cfg.N; i++ {
		for j := 0; j < e.cfg.N; j++ {
			if e.packetCounts[i][j] > 0 {
				residuals = append(residuals, edge{input: i, output: j})
			}
		}
	}
	return residuals
}

// shuffleResiduals applies a deterministic Fisher-Yates shuffle keyed off
// input 0's LFSR, so post-optimization does not always favor low-numbered
// edges when several compete for the same hole.
func (e *Engine) shuffleResiduals(residuals []edge) []edge {
	rng := e.inputRNG[0]
	for i := len(residuals) - 1; i > 0; i-- {
		rng = rng.Next()
		j := int(rng.Value()) % (i + 1)
		if j < 0 {
			j = -j
		}
		residuals[i], residuals[j] = residuals[j], residuals[i]
	}
	e.inputRNG[0] = rng
	return residuals
}

// Stats returns the running iteration, matched-pair and dropped-residual
// counters since construction or the last Reset.
func (e *Engine) Stats() (iterations, matchedPairs, droppedResiduals int64) {
	return e.totalIterations, e.totalMatchedPairs, e.droppedResiduals
}

// VOQLength exposes one queue length, mainly for tests and monitoring.
func (e *Engine) VOQLength(input, output int) int {
	if input < 0 || input >= e.cfg.N {
		return 0
	}
	return e.voqs[input].Length(output)
}
