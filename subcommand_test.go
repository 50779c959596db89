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

// outputReport builds a host output report with the given report ID,
// subcommand opcode, and argument bytes.
func outputReport(t *testing.T, id, opcode byte, args ...byte) *Report {
	t.Helper()

	raw := make([]byte, 50)
	raw[0] = 0xA2
	raw[1] = id
	raw[11] = opcode
	copy(raw[12:], args)

	r, err := Decode(DirOutput, raw)
	require.NoError(t, err)
	require.True(t, r.Known)
	return r
}

func TestParseSubcommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		id     byte
		opcode byte
		args   []byte
		want   SubcommandKind
	}{
		{name: "mcu status", id: 0x11, opcode: 0x01, want: SubcommandRequestMcuStatus},
		{name: "start polling", id: 0x11, opcode: 0x02, args: []byte{0x01}, want: SubcommandStartPolling},
		{name: "stop polling", id: 0x11, opcode: 0x02, args: []byte{0x02}, want: SubcommandStopPolling},
		{name: "start discovery", id: 0x11, opcode: 0x02, args: []byte{0x04}, want: SubcommandStartDiscovery},
		{name: "read tag", id: 0x11, opcode: 0x02, args: []byte{0x06}, want: SubcommandReadBlock},
		{name: "unknown nfc arg", id: 0x11, opcode: 0x02, args: []byte{0x7F}, want: SubcommandOpaque},
		{name: "unknown mcu opcode", id: 0x11, opcode: 0x55, want: SubcommandOpaque},
		{name: "set mcu config", id: 0x01, opcode: 0x21, args: []byte{0x21, 0x00, 0x04}, want: SubcommandSetMcuConfig},
		{name: "set mcu state", id: 0x01, opcode: 0x22, args: []byte{0x01}, want: SubcommandSetMcuState},
		{name: "plain subcommand", id: 0x01, opcode: 0x30, want: SubcommandOpaque},
	}

	for _, tt := range tests {
		tt := tt // capture range variable for parallel subtests (pre-Go 1.22 semantics)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sub := ParseSubcommand(outputReport(t, tt.id, tt.opcode, tt.args...))
			assert.Equal(t, tt.want, sub.Kind)
			assert.Equal(t, tt.opcode, sub.Opcode)
		})
	}
}

func TestParseSubcommand_NonSubcommandReports(t *testing.T) {
	t.Parallel()

	t.Run("rumble only", func(t *testing.T) {
		t.Parallel()

		raw := make([]byte, 12)
		raw[0] = 0xA2
		raw[1] = 0x10
		r, err := Decode(DirOutput, raw)
		require.NoError(t, err)

		sub := ParseSubcommand(r)
		assert.Equal(t, SubcommandOpaque, sub.Kind)
	})

	t.Run("input report", func(t *testing.T) {
		t.Parallel()

		raw := make([]byte, 50)
		raw[0] = 0xA1
		raw[1] = 0x30
		r, err := Decode(DirInput, raw)
		require.NoError(t, err)

		sub := ParseSubcommand(r)
		assert.Equal(t, SubcommandOpaque, sub.Kind)
	})

	t.Run("nil report", func(t *testing.T) {
		t.Parallel()
		sub := ParseSubcommand(nil)
		assert.Equal(t, SubcommandOpaque, sub.Kind)
	})
}
