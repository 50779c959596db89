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

// McuState mirrors the NFC/IR MCU mode the host believes the peripheral
// is in.
type McuState int

const (
	McuNotInitialized McuState = iota
	McuIrc
	McuNfc
	McuStandby
	McuBusy
)

// McuAction is the pending operation the next 0x31 MCU report answers.
type McuAction int

const (
	ActionNone McuAction = iota
	ActionRequestStatus
	ActionStartPolling
	ActionStartDiscovery
	ActionReadTag
	ActionReadTagData
	ActionReadFinished
)

// MCU report framing blobs, captured from real hardware exchanges. Their
// internal field semantics are undocumented; they are replayed verbatim
// around the substituted tag data.
var (
	// pollingTagInfo precedes the UID in a tag-detected packet.
	pollingTagInfo = []byte{0x09, 0x31, 0x09, 0x00, 0x00, 0x00, 0x01, 0x01, 0x02, 0x00, 0x07}

	// readTagHeader opens the first read packet.
	readTagHeader = []byte{0x01, 0x00, 0x01, 0x31, 0x02, 0x00, 0x00, 0x00, 0x01, 0x02, 0x00, 0x07}

	// readTagTrailer sits between the UID and the first data chunk.
	readTagTrailer = []byte{
		0x00, 0x00, 0x00, 0x00, 0x7D, 0xFD, 0xF0, 0x79, 0x36, 0x51,
		0xAB, 0xD7, 0x46, 0x6E, 0x39, 0xC1, 0x91, 0xBA, 0xBE, 0xB8,
		0x56, 0xCE, 0xED, 0xF1, 0xCE, 0x44, 0xCC, 0x75, 0xEA, 0xFB,
		0x27, 0x09, 0x4D, 0x08, 0x7A, 0xE8, 0x03, 0x00, 0x3B, 0x3C,
		0x77, 0x78, 0x86, 0x00, 0x00,
	}

	// readContinuation opens every follow-up read packet.
	readContinuation = []byte{0x02, 0x00, 0x09, 0x27}

	// readFinishedTagInfo precedes the UID in the end-of-read packet.
	readFinishedTagInfo = []byte{0x09, 0x31, 0x04, 0x00, 0x00, 0x00, 0x01, 0x01, 0x02, 0x00, 0x07}
)

// McuEmulator builds the 313-byte MCU report sections substituted into
// the peripheral's 0x31 input reports. It owns the MCU mode and pending
// action; tag data comes from the NfcSession so the read cursor stays in
// one place.
type McuEmulator struct {
	session *NfcSession
	store   *PayloadStore
	state   McuState
	action  McuAction
}

// NewMcuEmulator creates an emulator serving the given payload through
// the given session.
func NewMcuEmulator(session *NfcSession, store *PayloadStore) *McuEmulator {
	return &McuEmulator{
		session: session,
		store:   store,
		state:   McuNotInitialized,
	}
}

// SetState sets the MCU mode.
func (m *McuEmulator) SetState(state McuState) { m.state = state }

// State returns the MCU mode.
func (m *McuEmulator) State() McuState { return m.state }

// SetAction sets the pending action.
func (m *McuEmulator) SetAction(action McuAction) { m.action = action }

// Action returns the pending action.
func (m *McuEmulator) Action() McuAction { return m.action }

// Reading reports whether a tag read sequence is in flight. Host requests
// must not disturb the action until the sequence completes.
func (m *McuEmulator) Reading() bool {
	switch m.action {
	case ActionReadTag, ActionReadTagData, ActionReadFinished:
		return true
	default:
		return false
	}
}

// Reset returns the emulator to its power-on state.
func (m *McuEmulator) Reset() {
	m.state = McuNotInitialized
	m.action = ActionNone
}

func (m *McuEmulator) statusByte() byte {
	switch m.state {
	case McuNfc:
		return frame.McuStatusByteNfc
	case McuBusy:
		return frame.McuStatusByteBusy
	case McuNotInitialized, McuStandby:
		return frame.McuStatusByteStandby
	default:
		return 0
	}
}

// writeStatus fills the leading status fields of an MCU buffer.
func (m *McuEmulator) writeStatus(buf []byte) {
	buf[0] = 0x01
	buf[3] = frame.McuFirmwareMajor[0]
	buf[4] = frame.McuFirmwareMajor[1]
	buf[5] = frame.McuFirmwareMinor[0]
	buf[6] = frame.McuFirmwareMinor[1]
	buf[7] = m.statusByte()
}

// BuildStatusBlock returns the sealed 34-byte status block copied into
// 0x21 acknowledgement replies.
func (m *McuEmulator) BuildStatusBlock() []byte {
	block := make([]byte, frame.McuStatusBlockLength)
	m.writeStatus(block)
	frame.SealMcuReport(block)
	return block
}

// uidInto writes the tag UID at the given offset.
func (m *McuEmulator) uidInto(buf []byte, off int) {
	copy(buf[off:], m.store.UID())
}

// BuildNfcReport builds the next 313-byte MCU section for an 0x31 input
// report and advances the read sequence. Never blocks; all data comes
// from the immutable payload via the session cursor.
func (m *McuEmulator) BuildNfcReport() []byte {
	buf := make([]byte, frame.McuReportLength)

	switch m.action {
	case ActionRequestStatus:
		m.writeStatus(buf)
	case ActionNone:
		buf[0] = 0xFF
	case ActionStartDiscovery:
		buf[0] = 0x2A
		buf[2] = 0x05
		buf[5] = 0x09
		buf[6] = 0x31
	case ActionStartPolling:
		m.fillTagDetected(buf, pollingTagInfo)
	case ActionReadTag:
		m.fillFirstReadChunk(buf)
	case ActionReadTagData:
		m.fillNextReadChunk(buf)
	case ActionReadFinished:
		m.fillTagDetected(buf, readFinishedTagInfo)
		m.action = ActionNone
	}

	frame.SealMcuReport(buf)
	return buf
}

// fillTagDetected writes a tag-presence packet: header, info blob, UID.
func (m *McuEmulator) fillTagDetected(buf, info []byte) {
	buf[0] = 0x2A
	buf[2] = 0x05
	copy(buf[5:], info)
	m.uidInto(buf, 5+len(info))
}

// fillFirstReadChunk writes the opening read packet: tag header, UID,
// trailer, then as much payload as fits.
func (m *McuEmulator) fillFirstReadChunk(buf []byte) {
	buf[0] = 0x3A
	buf[2] = 0x07
	copy(buf[3:], readTagHeader)
	off := 3 + len(readTagHeader)
	m.uidInto(buf, off)
	off += frame.UIDPart1Len + frame.UIDPart2Len
	copy(buf[off:], readTagTrailer)
	off += len(readTagTrailer)

	chunk, _ := m.session.ReadBlock(0, frame.FirstReadChunkSize)
	copy(buf[off:], chunk)

	if m.session.Remaining() == 0 {
		m.action = ActionReadFinished
	} else {
		m.action = ActionReadTagData
	}
}

// fillNextReadChunk writes a continuation read packet.
func (m *McuEmulator) fillNextReadChunk(buf []byte) {
	buf[0] = 0x3A
	buf[2] = 0x07
	copy(buf[3:], readContinuation)

	chunk, _ := m.session.ReadBlock(0, frame.NextReadChunkSize)
	copy(buf[3+len(readContinuation):], chunk)

	if m.session.Remaining() == 0 {
		m.action = ActionReadFinished
	}
}
