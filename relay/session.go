// Copyright 2026 The SwitchEmu Project Contributors.
// SPDX-License-Identifier: Apache-2.0
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

package relay

import (
	"context"
	"sync"

	"github.com/google/uuid"

	joyrelay "github.com/switchemu/go-joyrelay"
)

// Session ties one relayed link to one interceptor for its whole
// lifetime. A session runs until the context is cancelled, either
// transport dies, or Close is called; it is not reusable afterwards.
type Session struct {
	id          string
	link        Link
	interceptor *joyrelay.Interceptor
	engine      *Engine

	closeOnce sync.Once
	done      chan struct{}
}

// NewSession creates a session relaying the given link through the given
// interceptor.
func NewSession(link Link, interceptor *joyrelay.Interceptor, config *Config) *Session {
	return &Session{
		id:          uuid.New().String(),
		link:        link,
		interceptor: interceptor,
		engine:      NewEngine(link, interceptor, config),
		done:        make(chan struct{}),
	}
}

// ID returns the session's unique identifier, used in logs and the
// capture file to correlate one link's traffic.
func (s *Session) ID() string {
	return s.id
}

// Metrics returns the engine's counters.
func (s *Session) Metrics() Metrics {
	return s.engine.GetMetrics()
}

// Run relays frames until the context is cancelled or the link drops.
// Both transports are closed and the interceptor reset before Run
// returns, so a caller can build a fresh session over new transports
// immediately. The returned error is the disconnect cause, nil on clean
// shutdown.
func (s *Session) Run(ctx context.Context) error {
	joyrelay.Debugf("session %s: relay started", s.id)
	joyrelay.CaptureComment("Session " + s.id + " started")

	err := s.engine.Run(ctx)

	s.Close()
	<-s.done

	m := s.engine.GetMetrics()
	joyrelay.Debugf("session %s: relay stopped (to host: %d, to peripheral: %d, substituted: %d, dropped: %d)",
		s.id, m.FramesToHost, m.FramesToPeripheral, m.Substituted, m.Dropped)
	joyrelay.CaptureComment("Session " + s.id + " stopped")
	return err
}

// Close tears the session down. Safe to call concurrently with Run and
// more than once; the first call closes both transports, which unblocks
// the engine's loops.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.link.Close()
		s.interceptor.Reset()
		close(s.done)
	})
}
