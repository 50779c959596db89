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

import (
	"fmt"
	"os"

	"github.com/switchemu/go-joyrelay/internal/frame"
)

// PayloadStore owns the spoofed tag image. The buffer is loaded once
// before the relay starts and is immutable afterwards, so it is shared
// across both relay directions without locking.
type PayloadStore struct {
	data []byte
	path string
}

// LoadPayload reads a flat binary tag image. There is no header and no
// checksum; the file bytes are served verbatim.
func LoadPayload(path string) (*PayloadStore, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied spoof file path
	if err != nil {
		return nil, fmt.Errorf("failed to load spoof payload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPayloadEmpty, path)
	}
	return &PayloadStore{data: data, path: path}, nil
}

// NewPayloadStore wraps an in-memory tag image. The bytes are copied so
// the store stays immutable regardless of what the caller does with the
// slice afterwards.
func NewPayloadStore(data []byte) *PayloadStore {
	return &PayloadStore{data: append([]byte(nil), data...)}
}

// Len returns the total payload length in bytes.
func (p *PayloadStore) Len() int {
	return len(p.data)
}

// Path returns the file the payload was loaded from, if any.
func (p *PayloadStore) Path() string {
	return p.path
}

// Chunk returns a copy of the slice [offset, offset+maxLen) clamped to
// the end of the buffer. Once offset is at or past the end it returns an
// empty slice - that is the end-of-data signal, never an error.
func (p *PayloadStore) Chunk(offset, maxLen int) []byte {
	if offset < 0 || maxLen <= 0 || offset >= len(p.data) {
		return []byte{}
	}
	end := offset + maxLen
	if end > len(p.data) {
		end = len(p.data)
	}
	return append([]byte(nil), p.data[offset:end]...)
}

// UID assembles the 7-byte tag UID from the image, skipping the BCC byte
// the way the real MCU reports it. Images shorter than the UID region
// yield a zero-padded UID.
func (p *PayloadStore) UID() []byte {
	uid := make([]byte, 0, frame.UIDPart1Len+frame.UIDPart2Len)
	uid = append(uid, p.Chunk(frame.UIDPart1Offset, frame.UIDPart1Len)...)
	uid = append(uid, p.Chunk(frame.UIDPart2Offset, frame.UIDPart2Len)...)
	for len(uid) < frame.UIDPart1Len+frame.UIDPart2Len {
		uid = append(uid, 0)
	}
	return uid
}
