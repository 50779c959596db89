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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_TooShort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "empty", raw: []byte{}},
		{name: "one byte", raw: []byte{0xA1}},
	}

	for _, tt := range tests {
		tt := tt // capture range variable for parallel subtests (pre-Go 1.22 semantics)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(DirInput, tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedFrame)
		})
	}
}

func TestDecode_UnknownIDRoundTrips(t *testing.T) {
	t.Parallel()

	// 0x3F is a real report ID the relay has no layout for; it must pass
	// through untouched.
	raw := []byte{0xA1, 0x3F, 0x12, 0x34, 0x56}

	r, err := Decode(DirInput, raw)
	require.NoError(t, err)

	assert.False(t, r.Known)
	assert.Equal(t, byte(0x3F), r.ID)
	assert.Equal(t, raw, r.Encode())
}

func TestDecode_WrongHeaderStaysOpaque(t *testing.T) {
	t.Parallel()

	// An input-direction frame without the 0xA1 header cannot be trusted
	// to follow any layout.
	raw := make([]byte, 50)
	raw[0] = 0xA2
	raw[1] = 0x30

	r, err := Decode(DirInput, raw)
	require.NoError(t, err)
	assert.False(t, r.Known)
	assert.Equal(t, raw, r.Encode())
}

func TestDecode_ShortForLayoutStaysOpaque(t *testing.T) {
	t.Parallel()

	// A 0x31 report needs the full MCU section; anything shorter is
	// forwarded opaque rather than rejected.
	raw := make([]byte, 50)
	raw[0] = 0xA1
	raw[1] = 0x31

	r, err := Decode(DirInput, raw)
	require.NoError(t, err)
	assert.False(t, r.Known)
	assert.Nil(t, r.McuSection())
}

func TestDecode_KnownLayouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dir  Direction
		id   byte
		size int
	}{
		{name: "standard input", dir: DirInput, id: 0x30, size: 50},
		{name: "mcu input", dir: DirInput, id: 0x31, size: 363},
		{name: "subcommand reply", dir: DirInput, id: 0x21, size: 50},
		{name: "rumble subcommand", dir: DirOutput, id: 0x01, size: 50},
		{name: "rumble only", dir: DirOutput, id: 0x10, size: 12},
		{name: "mcu request", dir: DirOutput, id: 0x11, size: 50},
	}

	for _, tt := range tests {
		tt := tt // capture range variable for parallel subtests (pre-Go 1.22 semantics)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := make([]byte, tt.size)
			if tt.dir == DirInput {
				raw[0] = 0xA1
			} else {
				raw[0] = 0xA2
			}
			raw[1] = tt.id

			r, err := Decode(tt.dir, raw)
			require.NoError(t, err)
			assert.True(t, r.Known)
			assert.Equal(t, tt.id, r.ID)
			assert.NotEmpty(t, r.LayoutName)
			assert.Equal(t, raw, r.Encode())
		})
	}
}

func TestReport_AckBytes(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 50)
	raw[0] = 0xA1
	raw[1] = 0x21
	raw[14] = 0xA0
	raw[15] = 0x21

	r, err := Decode(DirInput, raw)
	require.NoError(t, err)

	ack, echo, ok := r.AckBytes()
	require.True(t, ok)
	assert.Equal(t, byte(0xA0), ack)
	assert.Equal(t, byte(0x21), echo)

	std := make([]byte, 50)
	std[0] = 0xA1
	std[1] = 0x30
	r2, err := Decode(DirInput, std)
	require.NoError(t, err)
	_, _, ok = r2.AckBytes()
	assert.False(t, ok)
}

func TestReport_McuSection(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 363)
	raw[0] = 0xA1
	raw[1] = 0x31
	raw[50] = 0x2A

	r, err := Decode(DirInput, raw)
	require.NoError(t, err)

	section := r.McuSection()
	require.Len(t, section, 313)
	assert.Equal(t, byte(0x2A), section[0])
}

func TestReport_Clone(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 50)
	raw[0] = 0xA1
	raw[1] = 0x30
	raw[2] = 0x42

	r, err := Decode(DirInput, raw)
	require.NoError(t, err)

	dup := r.Clone()
	dup.Raw[2] = 0x99

	assert.Equal(t, byte(0x42), r.Raw[2])
	assert.Equal(t, byte(0x99), dup.Raw[2])
}

func TestReport_PacketCounter(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 50)
	raw[0] = 0xA2
	raw[1] = 0x01
	raw[2] = 0xF7

	r, err := Decode(DirOutput, raw)
	require.NoError(t, err)
	assert.Equal(t, byte(0x07), r.PacketCounter())
}
