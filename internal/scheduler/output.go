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

import "sort"

// OutputPort owns one Calendar: a T-slot schedule of matched inputs plus
// the availability bitmap mirroring it. It never references any InputPort;
// the Window routes Proposal/Accept values between them.
type OutputPort struct {
	portID int
	t      int

	schedule     []int // schedule[slot] = matched input, or Invalid
	availability Bitmap

	knockoutThresh int
}

// NewOutputPort constructs an OutputPort for portID with a T-slot calendar.
func NewOutputPort(portID, t, knockoutThresh int) *OutputPort {
	o := &OutputPort{
		portID:         portID,
		t:              t,
		schedule:       make([]int, t),
		knockoutThresh: knockoutThresh,
	}
	o.Reset()
	return o
}

// Reset clears the calendar to all-INVALID/all-free, per the `reset`
// control signal.
func (o *OutputPort) Reset() {
	for i := range o.schedule {
		o.schedule[i] = Invalid
	}
	o.availability = FullMask(o.t)
}

// Availability returns the output's current per-slot free bitmap.
func (o *OutputPort) Availability() Bitmap { return o.availability }

// ProcessProposals ranks up to KnockoutThresh proposals by descending
// VOQLen (ties broken by ascending InputID), then walks them in order
// applying First-Fit Accept, stopping at the first successful accept.
func (o *OutputPort) ProcessProposals(props []Proposal) Accept {
	if len(props) == 0 {
		return Accept{}
	}

	top := selectTopK(props, o.knockoutThresh)

	for _, p := range top {
		if !p.Valid {
			continue
		}
		slot := FirstFitAccept(p.Availability, o.availability)
		if slot == Invalid {
			continue
		}
		o.schedule[slot] = p.InputID
		o.availability = ClearBit(o.availability, slot)
		return Accept{OutputID: o.portID, InputID: p.InputID, TimeSlot: slot, Valid: true}
	}
	return Accept{}
}

// selectTopK returns up to k proposals sorted by descending VOQLen, ties
// broken by ascending InputID. It never mutates props.
func selectTopK(props []Proposal, k int) []Proposal {
	sorted := make([]Proposal, len(props))
	copy(sorted, props)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].VOQLen != sorted[j].VOQLen {
			return sorted[i].VOQLen > sorted[j].VOQLen
		}
		return sorted[i].InputID < sorted[j].InputID
	})
	if k > 0 && len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

// GraduateSlot pops the senior slot (index 0), shifts the calendar left by
// one, and opens a fresh, fully-available junior slot at T-1. It returns
// the input that had been matched to the senior slot, or Invalid.
func (o *OutputPort) GraduateSlot() int {
	senior := o.schedule[0]
	copy(o.schedule, o.schedule[1:])
	o.schedule[o.t-1] = Invalid
	o.availability = SetBit(o.availability>>1, o.t-1)
	return senior
}
