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

	"github.com/switchemu/go-joyrelay/internal/frame"
)

// Direction indicates which endpoint produced a report.
type Direction byte

const (
	// DirInput marks peripheral-to-host reports.
	DirInput Direction = iota
	// DirOutput marks host-to-peripheral reports.
	DirOutput
)

func (d Direction) String() string {
	if d == DirInput {
		return "input"
	}
	return "output"
}

// Report is one framed unit of the peripheral protocol. Raw always holds
// the complete frame including the HID transaction header, so an opaque
// report can be forwarded byte-identical.
type Report struct {
	LayoutName string
	Raw        []byte
	Direction  Direction
	ID         byte
	Known      bool
}

// Decode parses a raw interrupt-channel frame. Decoding is total over the
// report-identifier space: identifiers missing from the layout table, and
// frames too short for their declared layout, come back as opaque reports
// that Encode returns untouched. Only frames shorter than the minimum
// frame length fail.
func Decode(dir Direction, raw []byte) (*Report, error) {
	if len(raw) < frame.MinFrameLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedFrame, len(raw))
	}

	r := &Report{
		Direction: dir,
		ID:        raw[1],
		Raw:       raw,
	}

	var layout frame.Layout
	var ok bool
	switch dir {
	case DirInput:
		if raw[0] != frame.HeaderInput {
			return r, nil
		}
		layout, ok = frame.LookupInput(r.ID)
	case DirOutput:
		if raw[0] != frame.HeaderOutput {
			return r, nil
		}
		layout, ok = frame.LookupOutput(r.ID)
	}
	if !ok || len(raw) < layout.MinLength {
		return r, nil
	}

	r.Known = true
	r.LayoutName = layout.Name
	return r, nil
}

// Encode serializes the report back to wire bytes. Reports are carried
// whole, so this never fails for values produced by Decode or by the
// interceptor's builders.
func (r *Report) Encode() []byte {
	return r.Raw
}

// Timer returns the wrapping input-report timer byte. Only meaningful for
// known input reports.
func (r *Report) Timer() byte {
	if len(r.Raw) <= frame.TimerOffset {
		return 0
	}
	return r.Raw[frame.TimerOffset]
}

// PacketCounter returns the low-nibble counter the host stamps on output
// reports.
func (r *Report) PacketCounter() byte {
	if len(r.Raw) <= frame.PacketCounterOffset {
		return 0
	}
	return r.Raw[frame.PacketCounterOffset] & 0x0F
}

// McuSection returns the 313-byte MCU section of an 0x31 input report, or
// nil for any other report.
func (r *Report) McuSection() []byte {
	if r.Direction != DirInput || r.ID != frame.InputMcuMode {
		return nil
	}
	if len(r.Raw) < frame.McuSectionOffset+frame.McuReportLength {
		return nil
	}
	return r.Raw[frame.McuSectionOffset : frame.McuSectionOffset+frame.McuReportLength]
}

// AckBytes returns the ack byte and echoed subcommand ID of an 0x21
// subcommand reply.
func (r *Report) AckBytes() (ack, echo byte, ok bool) {
	if r.Direction != DirInput || r.ID != frame.InputSubcommandReply {
		return 0, 0, false
	}
	if len(r.Raw) <= frame.AckSubcommandOffset {
		return 0, 0, false
	}
	return r.Raw[frame.AckOffset], r.Raw[frame.AckSubcommandOffset], true
}

// Clone returns a deep copy of the report, used when a synthesized report
// reuses the scaffolding of a real one.
func (r *Report) Clone() *Report {
	dup := *r
	dup.Raw = append([]byte(nil), r.Raw...)
	return &dup
}
