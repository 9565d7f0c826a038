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

import "testing"

func TestOutputPort_ProcessProposalsNoneReturnsInvalid(t *testing.T) {
	o := NewOutputPort(0, 8, 3)
	acc := o.ProcessProposals(nil)
	if acc.Valid {
		t.Fatalf("expected invalid Accept for empty proposals, got %+v", acc)
	}
}

func TestOutputPort_ProcessProposalsPrefersLargerVOQLen(t *testing.T) {
	o := NewOutputPort(0, 8, 3)
	props := []Proposal{
		{InputID: 0, VOQLen: 2, Availability: FullMask(8), Valid: true},
		{InputID: 1, VOQLen: 9, Availability: FullMask(8), Valid: true},
	}
	acc := o.ProcessProposals(props)
	if !acc.Valid || acc.InputID != 1 {
		t.Fatalf("ProcessProposals() = %+v, want accept from input 1 (larger backlog)", acc)
	}
}

func TestOutputPort_ProcessProposalsTieBreaksByAscendingInputID(t *testing.T) {
	o := NewOutputPort(0, 8, 3)
	props := []Proposal{
		{InputID: 5, VOQLen: 4, Availability: FullMask(8), Valid: true},
		{InputID: 2, VOQLen: 4, Availability: FullMask(8), Valid: true},
	}
	acc := o.ProcessProposals(props)
	if !acc.Valid || acc.InputID != 2 {
		t.Fatalf("ProcessProposals() = %+v, want accept from input 2 (tie-break by ascending id)", acc)
	}
}

func TestOutputPort_ProcessProposalsRespectsKnockoutThreshold(t *testing.T) {
	o := NewOutputPort(0, 8, 1) // only the single best proposal is even considered
	props := []Proposal{
		{InputID: 0, VOQLen: 9, Availability: 0}, // best by VOQLen but zero availability
		{InputID: 1, VOQLen: 1, Availability: FullMask(8), Valid: true},
	}
	props[0].Valid = true
	acc := o.ProcessProposals(props)
	if acc.Valid {
		t.Fatalf("expected no accept: only proposal considered (KnockoutThresh=1) has no free slot, got %+v", acc)
	}
}

func TestOutputPort_ProcessProposalsFallsThroughOnNoOverlap(t *testing.T) {
	o := NewOutputPort(0, 8, 3)
	props := []Proposal{
		{InputID: 0, VOQLen: 9, Availability: 0, Valid: true},
		{InputID: 1, VOQLen: 1, Availability: FullMask(8), Valid: true},
	}
	acc := o.ProcessProposals(props)
	if !acc.Valid || acc.InputID != 1 {
		t.Fatalf("ProcessProposals() = %+v, want fallthrough accept from input 1", acc)
	}
}

func TestOutputPort_ProcessProposalsClearsAcceptedSlot(t *testing.T) {
	o := NewOutputPort(0, 8, 3)
	props := []Proposal{{InputID: 0, VOQLen: 1, Availability: FullMask(8), Valid: true}}
	acc := o.ProcessProposals(props)
	if HasBit(o.Availability(), acc.TimeSlot) {
		t.Fatal("accepted slot should be cleared from output availability")
	}
}

func TestOutputPort_GraduateSlotShiftsCalendar(t *testing.T) {
	o := NewOutputPort(0, 4, 3)
	props := []Proposal{{InputID: 7, VOQLen: 1, Availability: FullMask(4), Valid: true}}
	o.ProcessProposals(props) // matches into slot 0

	senior := o.GraduateSlot()
	if senior != 7 {
		t.Fatalf("GraduateSlot() = %d, want 7", senior)
	}
	if !HasBit(o.Availability(), 3) {
		t.Fatal("new junior slot should be available after graduation")
	}
}

func TestOutputPort_GraduateSlotOnEmptyCalendarReturnsInvalid(t *testing.T) {
	o := NewOutputPort(0, 4, 3)
	if got := o.GraduateSlot(); got != Invalid {
		t.Fatalf("GraduateSlot() = %d, want Invalid", got)
	}
}

func TestOutputPort_ResetClearsCalendar(t *testing.T) {
	o := NewOutputPort(0, 4, 3)
	props := []Proposal{{InputID: 0, VOQLen: 1, Availability: FullMask(4), Valid: true}}
	o.ProcessProposals(props)

	o.Reset()

	if o.Availability() != FullMask(4) {
		t.Fatalf("Availability() after Reset = %#x, want full mask", o.Availability())
	}
	if got := o.GraduateSlot(); got != Invalid {
		t.Fatalf("GraduateSlot() after Reset = %d, want Invalid", got)
	}
}
