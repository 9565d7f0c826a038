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

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig() failed to validate: %v", err)
	}
}

func TestConfig_ValidateRejectsOutOfRangeN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.N = 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for N=1")
	}
	cfg.N = 257
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for N=257")
	}
}

func TestConfig_ValidateRejectsOutOfRangeT(t *testing.T) {
	cfg := DefaultConfig()
	cfg.T = 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for T=1")
	}
	cfg.T = 65
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for T=65")
	}
}

func TestConfig_ValidateRejectsNonPositiveFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxVOQLen = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for MaxVOQLen=0")
	}

	cfg = DefaultConfig()
	cfg.KnockoutThresh = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for KnockoutThresh=0")
	}
}

func TestConfig_ValidateFillsZeroedOptionalFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameSizeBlock = 0
	cfg.AcceptorWorkers = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.FrameSizeBlock != DefaultFrameSizeBlock {
		t.Errorf("FrameSizeBlock = %d, want default %d", cfg.FrameSizeBlock, DefaultFrameSizeBlock)
	}
	if cfg.AcceptorWorkers < 1 {
		t.Errorf("AcceptorWorkers = %d, want >= 1", cfg.AcceptorWorkers)
	}
}

func TestConfig_ValidateClampsAcceptorWorkersToN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.N = 4
	cfg.AcceptorWorkers = 999
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.AcceptorWorkers != 4 {
		t.Errorf("AcceptorWorkers = %d, want clamped to 4", cfg.AcceptorWorkers)
	}
}

func TestConfig_RejectsNExceedingPortBits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.N = (1 << PortBits) // one past the max representable port id
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for N exceeding 2^PortBits-1")
	}
}

func TestConfig_Describe(t *testing.T) {
	cfg := DefaultConfig()
	d := cfg.Describe()
	if d["sampler_backend"] != "linear" {
		t.Errorf("sampler_backend = %q, want linear", d["sampler_backend"])
	}
	if d["N"] == "" {
		t.Error("Describe() missing N")
	}
}
