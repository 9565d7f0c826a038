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

import "sync"

// Window is the Sliding-Window Manager: it owns the array of N Input-Port
// Proposers and N Output-Port Acceptors and drives the
// ARRIVALS -> ITERATE*k -> GRADUATE state machine, one tick at a time. It
// is the single mediator between inputs and outputs; neither side holds a
// reference to the other.
type Window struct {
	cfg     Config
	inputs  []*InputPort
	outputs []*OutputPort
	router  *AcceptorRouter

	totalIterations   int64
	totalMatchedPairs int64
}

// NewWindow constructs a Window from a validated Config.
func NewWindow(cfg Config) *Window {
	w := &Window{cfg: cfg}
	w.inputs = make([]*InputPort, cfg.N)
	w.outputs = make([]*OutputPort, cfg.N)
	for i := 0; i < cfg.N; i++ {
		w.inputs[i] = NewInputPort(i, cfg.N, cfg.T, cfg.MaxVOQLen, cfg.SamplerBackend, cfg.Seed)
	}
	for j := 0; j < cfg.N; j++ {
		w.outputs[j] = NewOutputPort(j, cfg.T, cfg.KnockoutThresh)
	}
	if cfg.AcceptorWorkers > 1 {
		w.router = NewAcceptorRouter(cfg.AcceptorWorkers)
	}
	return w
}

// Reset reinitializes every VOQ, calendar, bitmap and LFSR, and zeroes the
// running counters, per the `reset` control signal.
func (w *Window) Reset() {
	for _, in := range w.inputs {
		in.Reset(w.cfg.Seed)
	}
	for _, out := range w.outputs {
		out.Reset()
	}
	w.totalIterations = 0
	w.totalMatchedPairs = 0
}

// AddArrival applies one arrival to the addressed input's VOQ registry.
// Invalid ports (out of [0, N)) or invalid arrivals are silently skipped.
func (w *Window) AddArrival(a Arrival) {
	if !a.Valid {
		return
	}
	if a.InputPort < 0 || a.InputPort >= w.cfg.N {
		return
	}
	if a.OutputPort < 0 || a.OutputPort >= w.cfg.N {
		return
	}
	w.inputs[a.InputPort].AddArrival(a.OutputPort, 1)
}

// RunIteration executes one propose-accept pass: every input proposes at
// most once, every output accepts at most one proposal via First-Fit
// Accept, and every accept triggers an immediate virtual departure at its
// input. Proposers observe the VOQ state as of the start of this call;
// accepts from this call are only visible to the next RunIteration.
func (w *Window) RunIteration() {
	n := w.cfg.N
	perOutput := make([][]Proposal, n)
	for _, in := range w.inputs {
		prop := in.GenerateProposal(n)
		if prop.Valid && prop.OutputID >= 0 && prop.OutputID < n {
			perOutput[prop.OutputID] = append(perOutput[prop.OutputID], prop)
		}
	}

	accepts := w.runAcceptPhase(perOutput)

	for _, acc := range accepts {
		if acc.InputID >= 0 && acc.InputID < n {
			w.inputs[acc.InputID].ProcessAccept(acc)
		}
	}
	w.totalIterations++
}

// runAcceptPhase runs every output's ProcessProposals, sequentially by
// default or fanned out across AcceptorRouter shards when configured with
// more than one worker. Each output only ever touches its own Calendar, so
// the two execution modes produce identical per-output decisions; only
// their wall-clock behavior differs.
func (w *Window) runAcceptPhase(perOutput [][]Proposal) []Accept {
	n := w.cfg.N
	if w.router == nil || w.router.NumWorkers() <= 1 {
		accepts := make([]Accept, 0, n)
		for j := 0; j < n; j++ {
			if acc := w.outputs[j].ProcessProposals(perOutput[j]); acc.Valid {
				accepts = append(accepts, acc)
			}
		}
		return accepts
	}

	buckets := make(map[int][]int, w.router.NumWorkers())
	for j := 0; j < n; j++ {
		shard := w.router.ShardFor(j)
		buckets[shard] = append(buckets[shard], j)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepts := make([]Accept, 0, n)
	for _, outs := range buckets {
		outs := outs
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]Accept, 0, len(outs))
			for _, j := range outs {
				if acc := w.outputs[j].ProcessProposals(perOutput[j]); acc.Valid {
					local = append(local, acc)
				}
			}
			mu.Lock()
			accepts = append(accepts, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return accepts
}

// Graduate advances the window by one slot: every output's senior slot
// retires into the returned MatchingResult, and every calendar and every
// input schedule shifts left by one, opening a fresh junior slot. No VOQ
// decrement happens here -- that already happened at accept time
// (virtual departure).
func (w *Window) Graduate() MatchingResult {
	result := MatchingResult{Matching: make([]int, w.cfg.N)}
	for j, out := range w.outputs {
		senior := out.GraduateSlot()
		result.Matching[j] = senior
		if senior != Invalid {
			result.MatchingSize++
			w.totalMatchedPairs++
		}
	}
	for _, in := range w.inputs {
		in.GraduateSlot()
	}
	return result
}

// Stability reports true iff no single VOQ across any input exceeds
// MaxVOQLen/2.
func (w *Window) Stability() bool {
	threshold := w.cfg.MaxVOQLen / 2
	for _, in := range w.inputs {
		if in.MaxVOQLength() > threshold {
			return false
		}
	}
	return true
}

// Overloaded reports whether any input's VOQ registry has ever saturated.
func (w *Window) Overloaded() bool {
	for _, in := range w.inputs {
		if in.Overloaded() {
			return true
		}
	}
	return false
}

// Stats returns the running iteration and matched-pair counters.
func (w *Window) Stats() (iterations, matchedPairs int64) {
	return w.totalIterations, w.totalMatchedPairs
}

// MaxVOQLength returns the largest single VOQ length across every input,
// for monitoring.
func (w *Window) MaxVOQLength() int {
	max := 0
	for _, in := range w.inputs {
		if l := in.MaxVOQLength(); l > max {
			max = l
		}
	}
	return max
}

// VOQLength exposes the queue length from input toward output, for
// monitoring and tests.
func (w *Window) VOQLength(input, output int) int {
	if input < 0 || input >= len(w.inputs) {
		return 0
	}
	return w.inputs[input].VOQLength(output)
}
