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

package joyrelay

import "github.com/switchemu/go-joyrelay/internal/syncutil"

// SessionState is the NFC session's polling state.
type SessionState int

const (
	// SessionIdle means no polling is in progress.
	SessionIdle SessionState = iota
	// SessionPolling means the host has started tag polling.
	SessionPolling
)

func (s SessionState) String() string {
	if s == SessionPolling {
		return "polling"
	}
	return "idle"
}

// NfcSession is the single piece of mutable state shared between the two
// relay directions: the polling state and the read cursor into the spoof
// payload. Exactly one session exists per relayed link; it is cleared on
// StopPolling and on disconnect, and never persists across links.
//
// ReadBlock offsets are relative to the cursor, so a host that re-issues
// the same request simply continues the read, matching how the real tag
// read sequence behaves.
type NfcSession struct {
	store        *PayloadStore
	mu           syncutil.Mutex
	state        SessionState
	cursor       int
	lastChunkLen int
}

// NewNfcSession creates a session over the given payload store. A nil
// store yields a session whose reads are never ready.
func NewNfcSession(store *PayloadStore) *NfcSession {
	return &NfcSession{store: store}
}

// StartPolling transitions Idle -> Polling and resets the read cursor.
func (s *NfcSession) StartPolling() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionPolling
	s.cursor = 0
	s.lastChunkLen = 0
}

// StopPolling returns to Idle from any state and clears the cursor.
func (s *NfcSession) StopPolling() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionIdle
	s.cursor = 0
	s.lastChunkLen = 0
}

// Reset clears the session; called on disconnect.
func (s *NfcSession) Reset() {
	s.StopPolling()
}

// State returns the current polling state.
func (s *NfcSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cursor returns the current read position into the payload.
func (s *NfcSession) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Remaining returns how many payload bytes are left past the cursor.
func (s *NfcSession) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil || s.state != SessionPolling {
		return 0
	}
	rem := s.store.Len() - s.cursor
	if rem < 0 {
		return 0
	}
	return rem
}

// ReadBlock serves the next chunk of the payload. The offset is added to
// the cursor, the chunk is clamped to the end of the payload, and the
// cursor advances past it. An empty chunk signals end-of-data. The second
// return is false when the session is not polling (the "not ready" case -
// a read before StartPolling or after StopPolling).
func (s *NfcSession) ReadBlock(offset, length int) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionPolling || s.store == nil {
		return []byte{}, false
	}
	if offset < 0 || length < 0 {
		return []byte{}, true
	}

	abs := s.cursor + offset
	chunk := s.store.Chunk(abs, length)
	s.cursor = abs + len(chunk)
	s.lastChunkLen = len(chunk)
	return chunk, true
}

// LastChunkLen returns the length of the most recently served chunk.
func (s *NfcSession) LastChunkLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastChunkLen
}
