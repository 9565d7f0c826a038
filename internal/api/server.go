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

// Package api implements the public-facing HTTP control surface for the
// scheduler. It lets a host process drive Arrivals/Tick/Reset and observe
// Stability/Stats without linking against the scheduler package directly.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"swqps/internal/scheduler"
)

// Core is the surface Server drives. *scheduler.Scheduler satisfies this.
type Core interface {
	Arrivals(arrivals []scheduler.Arrival)
	Iterate()
	Graduate() scheduler.MatchingResult
	Tick(iterations int) scheduler.MatchingResult
	Reset()
	Stability() bool
	Overloaded() bool
	Stats() (iterations, matchedPairs int64)
	MaxVOQLength() int
}

// Server exposes a Core over HTTP.
type Server struct {
	core Core
}

// NewServer configures a new API server over core.
func NewServer(core Core) *Server {
	return &Server{core: core}
}

// RegisterRoutes sets up the HTTP routes for the server on the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/arrivals", s.handleArrivals)
	mux.HandleFunc("/tick", s.handleTick)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/stability", s.handleStability)
	mux.HandleFunc("/stats", s.handleStats)
}

type arrivalRequest struct {
	InputPort  int `json:"input_port"`
	OutputPort int `json:"output_port"`
}

// handleArrivals accepts a JSON array of arrivals and injects them into the
// current window without advancing the calendar.
func (s *Server) handleArrivals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var reqs []arrivalRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	arrivals := make([]scheduler.Arrival, len(reqs))
	for i, a := range reqs {
		arrivals[i] = scheduler.Arrival{InputPort: a.InputPort, OutputPort: a.OutputPort, Valid: true}
	}
	s.core.Arrivals(arrivals)
	w.WriteHeader(http.StatusAccepted)
}

type tickRequest struct {
	Iterations int `json:"iterations"`
}

type matchingResponse struct {
	Matching     []int `json:"matching"`
	MatchingSize int   `json:"matching_size"`
}

// handleTick runs iterations rounds of the propose/accept loop followed by
// one graduation and returns the resulting matching. Iterations defaults to
// 1 when omitted or non-positive.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := tickRequest{Iterations: 1}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	if req.Iterations <= 0 {
		req.Iterations = 1
	}
	result := s.core.Tick(req.Iterations)
	writeJSON(w, http.StatusOK, matchingResponse{Matching: result.Matching, MatchingSize: result.MatchingSize})
}

// handleReset reinitializes all scheduler state.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.core.Reset()
	w.WriteHeader(http.StatusNoContent)
}

type stabilityResponse struct {
	Stable       bool `json:"stable"`
	Overloaded   bool `json:"overloaded"`
	MaxVOQLength int  `json:"max_voq_length"`
}

// handleStability reports the scheduler's current health flags.
func (s *Server) handleStability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, stabilityResponse{
		Stable:       s.core.Stability(),
		Overloaded:   s.core.Overloaded(),
		MaxVOQLength: s.core.MaxVOQLength(),
	})
}

type statsResponse struct {
	Iterations   int64 `json:"iterations"`
	MatchedPairs int64 `json:"matched_pairs"`
}

// handleStats reports the running iteration and matched-pair counters.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	iterations, matched := s.core.Stats()
	writeJSON(w, http.StatusOK, statsResponse{Iterations: iterations, MatchedPairs: matched})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe starts the HTTP server on the specified address.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	fmt.Printf("scheduler API server listening on %s\n", addr)
	return httpServer.ListenAndServe()
}
