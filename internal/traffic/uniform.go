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

// Uniform is a Bernoulli arrival process: each input independently admits
// one cell with probability Load, destined for a uniformly random output.
type Uniform struct {
	n    int
	load float64
	rng  scheduler.LFSR
}

// NewUniform builds a Uniform generator over n ports at the given offered
// load (admission probability per input per tick), seeded deterministically.
func NewUniform(n int, load float64, seed uint32) *Uniform {
	return &Uniform{n: n, load: clampProb(load), rng: scheduler.NewLFSR(seed)}
}

func (u *Uniform) Next() []scheduler.Arrival {
	arrivals := make([]scheduler.Arrival, 0, u.n)
	for i := 0; i < u.n; i++ {
		if lfsrUnit(&u.rng) < u.load {
			arrivals = append(arrivals, scheduler.Arrival{
				InputPort:  i,
				OutputPort: lfsrIntn(&u.rng, u.n),
				Valid:      true,
			})
		}
	}
	return arrivals
}
