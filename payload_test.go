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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeImage builds a deterministic tag image of the given length.
func makeImage(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestLoadPayload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tag.bin")
	require.NoError(t, os.WriteFile(path, makeImage(540), 0o600))

	store, err := LoadPayload(path)
	require.NoError(t, err)
	assert.Equal(t, 540, store.Len())
	assert.Equal(t, path, store.Path())
}

func TestLoadPayload_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadPayload(filepath.Join(t.TempDir(), "nope.bin"))
		require.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "empty.bin")
		require.NoError(t, os.WriteFile(path, nil, 0o600))
		_, err := LoadPayload(path)
		require.ErrorIs(t, err, ErrPayloadEmpty)
	})
}

func TestPayloadStore_Chunk(t *testing.T) {
	t.Parallel()

	store := NewPayloadStore(makeImage(100))

	tests := []struct {
		name    string
		offset  int
		maxLen  int
		wantLen int
	}{
		{name: "full window", offset: 0, maxLen: 64, wantLen: 64},
		{name: "clamped at end", offset: 90, maxLen: 64, wantLen: 10},
		{name: "exactly at end", offset: 100, maxLen: 64, wantLen: 0},
		{name: "past end", offset: 150, maxLen: 64, wantLen: 0},
		{name: "negative offset", offset: -1, maxLen: 64, wantLen: 0},
		{name: "zero length", offset: 0, maxLen: 0, wantLen: 0},
		{name: "whole payload", offset: 0, maxLen: 1000, wantLen: 100},
	}

	for _, tt := range tests {
		tt := tt // capture range variable for parallel subtests (pre-Go 1.22 semantics)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chunk := store.Chunk(tt.offset, tt.maxLen)
			assert.Len(t, chunk, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, byte(tt.offset), chunk[0])
			}
		})
	}
}

func TestPayloadStore_ChunkIsACopy(t *testing.T) {
	t.Parallel()

	store := NewPayloadStore(makeImage(16))
	chunk := store.Chunk(0, 16)
	chunk[0] = 0xFF

	again := store.Chunk(0, 16)
	assert.Equal(t, byte(0), again[0])
}

func TestPayloadStore_UID(t *testing.T) {
	t.Parallel()

	t.Run("skips bcc byte", func(t *testing.T) {
		t.Parallel()

		image := makeImage(540)
		store := NewPayloadStore(image)

		// Bytes 0-2 and 4-7; byte 3 is the check byte the MCU omits.
		want := []byte{0x00, 0x01, 0x02, 0x04, 0x05, 0x06, 0x07}
		assert.Equal(t, want, store.UID())
	})

	t.Run("short image zero padded", func(t *testing.T) {
		t.Parallel()

		store := NewPayloadStore([]byte{0xAA, 0xBB})
		uid := store.UID()
		require.Len(t, uid, 7)
		assert.Equal(t, []byte{0xAA, 0xBB, 0x00, 0x00, 0x00, 0x00, 0x00}, uid)
	})
}
