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

import (
	"fmt"
	"runtime"

	"swqps/pkg/voq"
)

// PortBits is the hardware id width a port identifier is assumed to fit in;
// a configuration with N > 2^PortBits-1 is rejected at construction.
const PortBits = 7

// Reference build-time defaults.
const (
	DefaultN              = 64
	DefaultT              = 16
	DefaultMaxVOQLen      = 1024
	DefaultKnockoutThresh = 3
	DefaultFrameSizeBlock = 128
	DefaultSeed           = uint32(12345)
)

// Config holds the build-time parameters a Scheduler is constructed with.
// All fields must be fixed before construction; nothing here can change at
// runtime except via a full Reset with the same Config.
type Config struct {
	N               int
	T               int
	MaxVOQLen       int
	KnockoutThresh  int
	FrameSizeBlock  int
	Seed            uint32
	SamplerBackend  voq.Backend
	AcceptorWorkers int

	// AllowRetryPrevious lets a proposal that lost its slot's primary/secondary
	// contest immediately attempt backward placement into an earlier,
	// still-free slot of the current frame. Only consulted by frame.Engine.
	AllowRetryPrevious bool
	// AllowAdaptiveFrame lets frame.Engine grow a frame past T slots, in
	// FrameSizeBlock increments, when the post-optimization pass cannot
	// color every residual into the nominal T slots.
	AllowAdaptiveFrame bool
}

// DefaultConfig returns the reference build-time configuration.
func DefaultConfig() Config {
	return Config{
		N:               DefaultN,
		T:               DefaultT,
		MaxVOQLen:       DefaultMaxVOQLen,
		KnockoutThresh:  DefaultKnockoutThresh,
		FrameSizeBlock:  DefaultFrameSizeBlock,
		Seed:            DefaultSeed,
		SamplerBackend:  voq.Linear,
		AcceptorWorkers: 1,
	}
}

// Validate rejects an out-of-range configuration loudly: no scheduler is
// constructed from a bad Config. It also fills in sane defaults for
// zero-valued optional fields.
func (c *Config) Validate() error {
	if c.N < 2 || c.N > 256 {
		return fmt.Errorf("scheduler: N=%d out of range [2, 256]", c.N)
	}
	if c.T < 2 || c.T > 64 {
		return fmt.Errorf("scheduler: T=%d out of range [2, 64]", c.T)
	}
	if maxPorts := (1 << PortBits) - 1; c.N > maxPorts {
		return fmt.Errorf("scheduler: N=%d exceeds 2^PORT_BITS-1=%d", c.N, maxPorts)
	}
	if c.MaxVOQLen <= 0 {
		return fmt.Errorf("scheduler: MaxVOQLen=%d must be positive", c.MaxVOQLen)
	}
	if c.KnockoutThresh <= 0 {
		return fmt.Errorf("scheduler: KnockoutThresh=%d must be positive", c.KnockoutThresh)
	}
	if c.FrameSizeBlock <= 0 {
		c.FrameSizeBlock = DefaultFrameSizeBlock
	}
	if c.AcceptorWorkers <= 0 {
		c.AcceptorWorkers = runtime.GOMAXPROCS(0)
	}
	if c.AcceptorWorkers > c.N {
		c.AcceptorWorkers = c.N
	}
	return nil
}

// Describe returns a human-readable snapshot of the configuration, for
// end-of-run reporting.
func (c Config) Describe() map[string]string {
	backend := "linear"
	if c.SamplerBackend == voq.Fenwick {
		backend = "fenwick"
	}
	return map[string]string{
		"N":                fmt.Sprintf("%d", c.N),
		"T":                fmt.Sprintf("%d", c.T),
		"max_voq_len":      fmt.Sprintf("%d", c.MaxVOQLen),
		"knockout_thresh":  fmt.Sprintf("%d", c.KnockoutThresh),
		"frame_size_block": fmt.Sprintf("%d", c.FrameSizeBlock),
		"seed":             fmt.Sprintf("0x%08X", c.Seed),
		"sampler_backend":  backend,
		"acceptor_workers": fmt.Sprintf("%d", c.AcceptorWorkers),
	}
}
