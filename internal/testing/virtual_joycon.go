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

// Package testing provides a scripted virtual Joy-Con for integration
// tests, producing wire-accurate input reports without Bluetooth
// hardware.
package testing

import (
	"sync"
)

// VirtualJoyCon fabricates the raw input report frames a real Joy-Con
// produces, with an incrementing timer byte, and records every output
// report written to it. It is pure state; pair it with a channel-backed
// mock transport to drive a relay.
type VirtualJoyCon struct {
	mu      sync.Mutex
	timer   byte
	mcuMode bool
	written [][]byte
}

// NewVirtualJoyCon creates a virtual Joy-Con in standard report mode.
func NewVirtualJoyCon() *VirtualJoyCon {
	return &VirtualJoyCon{}
}

// HandleOutput records one host output report and updates report mode.
// A SetMcuConfig subcommand (0x01/0x21) switches the peripheral to
// 0x31 MCU reports, matching real firmware behavior.
func (j *VirtualJoyCon) HandleOutput(raw []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.written = append(j.written, append([]byte(nil), raw...))
	if len(raw) >= 12 && raw[0] == 0xA2 && raw[1] == 0x01 && raw[11] == 0x21 {
		j.mcuMode = true
	}
}

// Written returns copies of all recorded output reports.
func (j *VirtualJoyCon) Written() [][]byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([][]byte, len(j.written))
	for i, w := range j.written {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// nextTimer advances and returns the report timer byte.
func (j *VirtualJoyCon) nextTimer() byte {
	j.timer++
	return j.timer
}

// StandardReport builds a 50-byte 0x30 standard input report.
func (j *VirtualJoyCon) StandardReport() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()

	raw := make([]byte, 50)
	raw[0] = 0xA1
	raw[1] = 0x30
	raw[2] = j.nextTimer()
	raw[3] = 0x8E
	return raw
}

// McuReport builds a 363-byte 0x31 report whose MCU section is the
// firmware's empty packet (0xFF lead byte, zero body).
func (j *VirtualJoyCon) McuReport() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()

	raw := make([]byte, 363)
	raw[0] = 0xA1
	raw[1] = 0x31
	raw[2] = j.nextTimer()
	raw[3] = 0x8E
	raw[50] = 0xFF
	return raw
}

// AckReport builds a 50-byte 0x21 subcommand reply carrying the given
// acknowledgement and echoed subcommand bytes.
func (j *VirtualJoyCon) AckReport(ack, echo byte) []byte {
	j.mu.Lock()
	defer j.mu.Unlock()

	raw := make([]byte, 50)
	raw[0] = 0xA1
	raw[1] = 0x21
	raw[2] = j.nextTimer()
	raw[3] = 0x8E
	raw[14] = ack
	raw[15] = echo
	return raw
}

// InMcuMode reports whether a SetMcuConfig output has been observed.
func (j *VirtualJoyCon) InMcuMode() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.mcuMode
}

// NextReport builds whichever input report the current mode calls for.
func (j *VirtualJoyCon) NextReport() []byte {
	if j.InMcuMode() {
		return j.McuReport()
	}
	return j.StandardReport()
}
