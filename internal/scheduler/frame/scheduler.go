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
	"fmt"

	"swqps/internal/scheduler"
)

// Scheduler is the public control surface over one Engine, validated at
// construction the same way scheduler.Scheduler validates its Config.
type Scheduler struct {
	cfg    scheduler.Config
	engine *Engine
}

// New validates cfg and constructs a frame Scheduler, or returns an error
// if cfg is out of range.
func New(cfg scheduler.Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("frame.New: %w", err)
	}
	return &Scheduler{cfg: cfg, engine: NewEngine(cfg)}, nil
}

// Config returns the (possibly defaulted) configuration this Scheduler was
// constructed with.
func (s *Scheduler) Config() scheduler.Config { return s.cfg }

// Tick applies one slot's arrivals and advances the frame by one slot,
// returning the completed frame's Result once every T calls.
func (s *Scheduler) Tick(arrivals []scheduler.Arrival) *Result {
	return s.engine.Tick(arrivals)
}

// Reset reinitializes all state to the configuration's build-time seed.
func (s *Scheduler) Reset() {
	s.engine.Reset()
}

// Stats returns the running iteration, matched-pair and dropped-residual
// counters since construction or the last Reset.
func (s *Scheduler) Stats() (iterations, matchedPairs, droppedResiduals int64) {
	return s.engine.Stats()
}

// VOQLength exposes one queue length, mainly for tests and monitoring.
func (s *Scheduler) VOQLength(input, output int) int {
	return s.engine.VOQLength(input, output)
}
