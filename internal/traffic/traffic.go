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

// Package traffic generates the arrival patterns used to drive a scheduler
// under test: uniform Bernoulli, full-mesh, purely diagonal, and hot/cold
// skewed destinations. Every randomized generator is seeded deterministically
// off the same LFSR the scheduler package itself uses, and full-mesh uses no
// randomness, so a simulation run is reproducible end to end from one seed.
package traffic

import "swqps/internal/scheduler"

// Generator produces one tick's worth of arrivals for an N-port switch.
type Generator interface {
	// Next returns the arrivals for the next tick: at most one per input
	// for Uniform, Diagonal and HotCold, and N*N for FullMesh.
	Next() []scheduler.Arrival
}

// clampProb keeps a probability argument inside [0, 1] instead of silently
// producing an always-true or always-false generator on caller error.
func clampProb(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// lfsrUnit advances rng once and returns its state remapped to [0, 1).
func lfsrUnit(rng *scheduler.LFSR) float64 {
	*rng = rng.Next()
	return float64(rng.Value()) / float64(1<<32)
}

// lfsrIntn advances rng once and returns a value in [0, n).
func lfsrIntn(rng *scheduler.LFSR, n int) int {
	*rng = rng.Next()
	return int(rng.Value() % uint32(n))
}
