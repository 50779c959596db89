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

import "github.com/switchemu/go-joyrelay/internal/frame"

// SubcommandKind identifies the typed sub-message carried in an output
// report. Anything the interceptor does not act on is Opaque.
type SubcommandKind int

const (
	// SubcommandOpaque is any operation the relay passes through untouched.
	SubcommandOpaque SubcommandKind = iota
	// SubcommandRequestMcuStatus asks the MCU for its status block.
	SubcommandRequestMcuStatus
	// SubcommandStartPolling starts NFC tag polling.
	SubcommandStartPolling
	// SubcommandStopPolling stops NFC tag polling.
	SubcommandStopPolling
	// SubcommandStartDiscovery starts passive tag discovery.
	SubcommandStartDiscovery
	// SubcommandReadBlock requests tag data.
	SubcommandReadBlock
	// SubcommandSetMcuConfig switches the MCU between standby and NFC mode.
	SubcommandSetMcuConfig
	// SubcommandSetMcuState suspends or resumes the MCU.
	SubcommandSetMcuState
)

func (k SubcommandKind) String() string {
	switch k {
	case SubcommandRequestMcuStatus:
		return "request-mcu-status"
	case SubcommandStartPolling:
		return "start-polling"
	case SubcommandStopPolling:
		return "stop-polling"
	case SubcommandStartDiscovery:
		return "start-discovery"
	case SubcommandReadBlock:
		return "read-block"
	case SubcommandSetMcuConfig:
		return "set-mcu-config"
	case SubcommandSetMcuState:
		return "set-mcu-state"
	default:
		return "opaque"
	}
}

// Subcommand is the parsed sub-message of a host-originated output report.
type Subcommand struct {
	Kind   SubcommandKind
	Opcode byte
	Args   []byte
}

// ParseSubcommand extracts the typed subcommand from an output report.
// Reports without a subcommand section (rumble-only, opaque layouts)
// return an Opaque subcommand with no opcode.
func ParseSubcommand(r *Report) Subcommand {
	if r == nil || r.Direction != DirOutput || !r.Known {
		return Subcommand{Kind: SubcommandOpaque}
	}
	if len(r.Raw) <= frame.SubcommandIDOffset {
		return Subcommand{Kind: SubcommandOpaque}
	}

	opcode := r.Raw[frame.SubcommandIDOffset]
	args := r.Raw[frame.SubcommandArgsOffset:]
	sub := Subcommand{Kind: SubcommandOpaque, Opcode: opcode, Args: args}

	switch r.ID {
	case frame.OutputMcuRequest:
		sub.Kind = parseMcuRequest(opcode, args)
	case frame.OutputRumbleSubcommand:
		switch opcode {
		case frame.SubSetMcuConfig:
			sub.Kind = SubcommandSetMcuConfig
		case frame.SubSetMcuState:
			sub.Kind = SubcommandSetMcuState
		}
	}
	return sub
}

// parseMcuRequest maps an 0x11 MCU request to a subcommand kind.
func parseMcuRequest(opcode byte, args []byte) SubcommandKind {
	switch opcode {
	case frame.McuCmdRequestStatus:
		return SubcommandRequestMcuStatus
	case frame.McuCmdNfc:
		if len(args) == 0 {
			return SubcommandOpaque
		}
		switch args[0] {
		case frame.NfcArgStartPolling:
			return SubcommandStartPolling
		case frame.NfcArgStopPolling:
			return SubcommandStopPolling
		case frame.NfcArgStartDiscovery:
			return SubcommandStartDiscovery
		case frame.NfcArgReadTag:
			return SubcommandReadBlock
		}
	}
	return SubcommandOpaque
}
