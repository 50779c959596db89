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

// Package frame holds the proprietary Joy-Con HID report layout table.
// The offsets and constants here are the reverse-engineered blackbox the
// rest of the codebase builds on; keeping them in one place means a future
// protocol revision only has to touch this package.
package frame

// HID transaction headers - byte 0 of every raw interrupt-channel frame
const (
	HeaderInput  = 0xA1 // Peripheral to host (DATA|INPUT)
	HeaderOutput = 0xA2 // Host to peripheral (DATA|OUTPUT)
)

// Input report identifiers (peripheral to host)
const (
	InputSubcommandReply = 0x21 // Subcommand acknowledgement reply
	InputStandardFull    = 0x30 // Standard full report (buttons/sticks/IMU)
	InputMcuMode         = 0x31 // Standard report + NFC/IR MCU section
)

// Output report identifiers (host to peripheral)
const (
	OutputRumbleSubcommand = 0x01 // Rumble data + subcommand
	OutputRumble           = 0x10 // Rumble data only
	OutputMcuRequest       = 0x11 // Rumble data + NFC/IR MCU request
)

// Frame size limits
const (
	MinFrameLength      = 2   // Header byte + report identifier
	StandardInputLength = 50  // Header + ID + 48-byte standard input body
	McuReportLength     = 313 // MCU section appended to 0x31 reports
	MaxFrameLength      = StandardInputLength + McuReportLength
)

// Fixed offsets into a raw frame (header byte included)
const (
	TimerOffset          = 2  // Input reports: 1-byte wrapping timer
	PacketCounterOffset  = 2  // Output reports: low-nibble packet counter
	SubcommandIDOffset   = 11 // 0x01 and 0x11 output reports
	SubcommandArgsOffset = 12
	AckOffset            = 14 // 0x21 input reports: ack/status byte
	AckSubcommandOffset  = 15 // 0x21 input reports: echoed subcommand ID
	AckDataOffset        = 16
	McuSectionOffset     = StandardInputLength // 0x31 input reports
)

// Subcommand identifiers carried in 0x01 output reports
const (
	SubSetMcuConfig = 0x21
	SubSetMcuState  = 0x22
)

// Acknowledgement bytes echoed in 0x21 input reports
const (
	AckMcuConfig = 0xA0 // Paired with SubSetMcuConfig echo
	AckMcuState  = 0x80 // Paired with SubSetMcuState echo
)

// MCU commands carried in 0x11 output reports
const (
	McuCmdRequestStatus = 0x01
	McuCmdNfc           = 0x02
)

// NFC command arguments (first argument byte of McuCmdNfc)
const (
	NfcArgStartPolling   = 0x01
	NfcArgStopPolling    = 0x02
	NfcArgStartDiscovery = 0x04
	NfcArgReadTag        = 0x06
)

// SetMcuState arguments
const (
	McuStateArgSuspend = 0x00
	McuStateArgResume  = 0x01
)

// SetMcuConfig mode bytes (second argument of the config blob)
const (
	McuConfigModeStandby = 0x00
	McuConfigModeNfc     = 0x04
)

// Tag image framing. A full NTAG215 amiibo dump is 540 bytes and is
// served in MCU-framed chunks: the first read packet has room for 245
// payload bytes after the tag header, later packets carry up to 295.
const (
	TagImageLength     = 540
	FirstReadChunkSize = 245
	NextReadChunkSize  = 295
)

// Tag UID assembly: bytes 0-2 and 4-7 of the image (byte 3 is the BCC).
const (
	UIDPart1Offset = 0
	UIDPart1Len    = 3
	UIDPart2Offset = 4
	UIDPart2Len    = 4
)

// MCU status report fields
const (
	McuStatusByteNotInit = 0x01
	McuStatusByteStandby = 0x01
	McuStatusByteNfc     = 0x04
	McuStatusByteBusy    = 0x06
	McuStatusBlockLength = 34 // Status block copied into 0x21 ack replies
)

// MCU firmware version reported in status blocks, matching the retail
// NFC/IR MCU firmware the host expects.
var (
	McuFirmwareMajor = [2]byte{0x00, 0x06}
	McuFirmwareMinor = [2]byte{0x00, 0x1A}
)
