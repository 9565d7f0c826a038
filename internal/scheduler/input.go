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

import "swqps/pkg/voq"

// InputPort owns one VOQ registry, one window-wide schedule of matched
// outputs, and a private LFSR. It never references any OutputPort or
// sibling InputPort directly; the Window mediates all communication via
// Proposal/Accept values.
type InputPort struct {
	portID int
	voqs   voq.Registry

	schedule     []int // schedule[slot] = matched output, or Invalid
	availability Bitmap
	rng          LFSR

	t int
}

// NewInputPort constructs an InputPort for portID, backed by a VOQ registry
// with the given sampler backend, seeded from seed XOR portID so that
// concurrent proposers decorrelate.
func NewInputPort(portID, n, t, maxVOQLen int, backend voq.Backend, seed uint32) *InputPort {
	p := &InputPort{
		portID:       portID,
		voqs:         voq.New(backend, n, maxVOQLen),
		schedule:     make([]int, t),
		availability: FullMask(t),
		rng:          NewLFSR(seed ^ uint32(portID)),
		t:            t,
	}
	p.resetSchedule()
	return p
}

func (p *InputPort) resetSchedule() {
	for i := range p.schedule {
		p.schedule[i] = Invalid
	}
	p.availability = FullMask(p.t)
}

// Reset reinitializes the VOQ registry, schedule, availability, and
// re-seeds the LFSR, per the `reset` control signal.
func (p *InputPort) Reset(seed uint32) {
	p.voqs.Reset()
	p.resetSchedule()
	p.rng = NewLFSR(seed ^ uint32(p.portID))
}

// AddArrival deposits k cells into the VOQ addressed to output.
func (p *InputPort) AddArrival(output, k int) { p.voqs.Add(output, k) }

// VOQLength returns the current queue length toward output.
func (p *InputPort) VOQLength(output int) int { return p.voqs.Length(output) }

// TotalBacklog returns the sum of all VOQ lengths at this input.
func (p *InputPort) TotalBacklog() int { return p.voqs.Total() }

// Availability returns the input's current per-slot free bitmap.
func (p *InputPort) Availability() Bitmap { return p.availability }

// isOutputMatched reports whether output already occupies a slot in this
// input's schedule, i.e. this input already has a pending match to it
// somewhere in the window.
func (p *InputPort) isOutputMatched(output int) bool {
	for _, o := range p.schedule {
		if o == output {
			return true
		}
	}
	return false
}

// GenerateProposal makes up to N attempts, each drawing a QPS sample and
// accepting the first one that is valid, has backlog, and is not already
// matched somewhere in this input's window.
func (p *InputPort) GenerateProposal(n int) Proposal {
	for attempt := 0; attempt < n; attempt++ {
		p.rng = p.rng.Next()
		sampled := p.voqs.Sample(uint64(p.rng.Value()))

		if sampled != Invalid && p.voqs.Length(sampled) > 0 && !p.isOutputMatched(sampled) {
			return Proposal{
				InputID:      p.portID,
				OutputID:     sampled,
				VOQLen:       p.voqs.Length(sampled),
				Availability: p.availability,
				Valid:        true,
			}
		}

		if p.voqs.Total() == 0 {
			break
		}
	}
	return Proposal{InputID: p.portID, OutputID: Invalid, Valid: false}
}

// ProcessAccept applies an Accept to this input: marks the slot occupied,
// records the match, and performs the virtual departure -- the VOQ cell is
// removed now, not at graduation.
func (p *InputPort) ProcessAccept(a Accept) {
	if !a.Valid || a.TimeSlot < 0 || a.TimeSlot >= p.t {
		return
	}
	p.availability = ClearBit(p.availability, a.TimeSlot)
	p.schedule[a.TimeSlot] = a.OutputID
	p.voqs.Remove(a.OutputID)
}

// GraduateSlot shifts the window left by one: the senior slot (index 0)
// retires, every later slot moves down one, and a fresh, fully-available
// junior slot appears at T-1. No VOQ decrement happens here; that already
// happened at accept time.
func (p *InputPort) GraduateSlot() {
	copy(p.schedule, p.schedule[1:])
	p.schedule[p.t-1] = Invalid
	p.availability = SetBit(p.availability>>1, p.t-1)
}

// Overloaded reports the sticky overflow flag from the underlying VOQ
// registry.
func (p *InputPort) Overloaded() bool { return p.voqs.Overloaded() }

// MaxVOQLength returns the largest single VOQ length at this input,
// used by Scheduler.Stability().
func (p *InputPort) MaxVOQLength() int {
	max := 0
	for j := 0; j < p.voqs.N(); j++ {
		if l := p.voqs.Length(j); l > max {
			max = l
		}
	}
	return max
}
