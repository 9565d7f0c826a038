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

import "fmt"

// Scheduler is the public control surface over one Window: the four signals
// a caller drives it with are Arrivals, Iterate, Graduate and Reset. It
// holds no goroutines of its own; callers decide the cadence of ticks.
type Scheduler struct {
	cfg    Config
	window *Window
}

// New validates cfg and constructs a Scheduler, or returns an error if cfg
// is out of range. No partially-built Scheduler is ever returned.
func New(cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scheduler.New: %w", err)
	}
	return &Scheduler{cfg: cfg, window: NewWindow(cfg)}, nil
}

// Config returns the (possibly defaulted) configuration this Scheduler was
// constructed with.
func (s *Scheduler) Config() Config { return s.cfg }

// Arrivals applies a batch of arrivals, silently dropping any that fail
// validation (out-of-range port, or Valid == false).
func (s *Scheduler) Arrivals(arrivals []Arrival) {
	for _, a := range arrivals {
		s.window.AddArrival(a)
	}
}

// Iterate runs one propose/accept pass without advancing the calendar.
// Calling it k times per tick runs k rounds of the FFA loop against the
// same window state before Graduate retires the senior slot.
func (s *Scheduler) Iterate() {
	s.window.RunIteration()
}

// Graduate retires the senior slot of every output's calendar and shifts
// every input's schedule left by one, returning the resulting matching.
func (s *Scheduler) Graduate() MatchingResult {
	return s.window.Graduate()
}

// Tick runs iterations rounds of Iterate followed by one Graduate, the
// composite operation most callers actually want per time slot.
func (s *Scheduler) Tick(iterations int) MatchingResult {
	for i := 0; i < iterations; i++ {
		s.window.RunIteration()
	}
	return s.window.Graduate()
}

// Reset reinitializes all state to the configuration's build-time seed.
func (s *Scheduler) Reset() {
	s.window.Reset()
}

// Stability reports whether every VOQ across every input is currently at
// or below half of MaxVOQLen.
func (s *Scheduler) Stability() bool {
	return s.window.Stability()
}

// Overloaded reports whether any VOQ has ever saturated at MaxVOQLen.
func (s *Scheduler) Overloaded() bool {
	return s.window.Overloaded()
}

// Stats returns the running iteration and matched-pair counters since
// construction or the last Reset.
func (s *Scheduler) Stats() (iterations, matchedPairs int64) {
	return s.window.Stats()
}

// VOQLength exposes one queue length, mainly for tests and monitoring.
func (s *Scheduler) VOQLength(input, output int) int {
	return s.window.VOQLength(input, output)
}

// MaxVOQLength returns the largest single VOQ length across every input,
// for monitoring.
func (s *Scheduler) MaxVOQLength() int {
	return s.window.MaxVOQLength()
}
