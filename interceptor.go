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
	"github.com/switchemu/go-joyrelay/internal/frame"
	"github.com/switchemu/go-joyrelay/internal/syncutil"
)

// Interceptor inspects every relayed report and substitutes the NFC
// exchange with locally-held tag data. With no payload store it degrades
// to a fully transparent relay. Both relay directions route through the
// same interceptor, serialized by one mutex, so the NfcSession has a
// single owner.
type Interceptor struct {
	store         *PayloadStore
	session       *NfcSession
	mcu           *McuEmulator
	lastMcuOutput []byte
	mu            syncutil.Mutex
}

// NewInterceptor creates an interceptor serving the given payload. Pass
// nil for a transparent relay.
func NewInterceptor(store *PayloadStore) *Interceptor {
	session := NewNfcSession(store)
	ic := &Interceptor{
		store:   store,
		session: session,
	}
	if store != nil {
		ic.mcu = NewMcuEmulator(session, store)
	}
	return ic
}

// Active reports whether NFC substitution is enabled.
func (ic *Interceptor) Active() bool {
	return ic.store != nil
}

// Session exposes the NFC session for inspection.
func (ic *Interceptor) Session() *NfcSession {
	return ic.session
}

// Reset clears all transient state; called when the link disconnects.
func (ic *Interceptor) Reset() {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.session.Reset()
	ic.lastMcuOutput = nil
	if ic.mcu != nil {
		ic.mcu.Reset()
	}
}

// HandleHostFrame processes one host-originated report and returns the
// reports to forward to the peripheral. The original report is always
// forwarded byte-identical; NFC-related subcommands additionally update
// the session and MCU state so the next peripheral reports can be
// substituted.
func (ic *Interceptor) HandleHostFrame(r *Report) []*Report {
	out := []*Report{r}
	if !ic.Active() || !r.Known {
		return out
	}

	ic.mu.Lock()
	defer ic.mu.Unlock()

	sub := ParseSubcommand(r)
	switch sub.Kind {
	case SubcommandSetMcuConfig, SubcommandSetMcuState:
		// The peripheral's acknowledgement is rebuilt from this request
		ic.lastMcuOutput = append([]byte(nil), r.Raw...)
	case SubcommandRequestMcuStatus,
		SubcommandStartPolling, SubcommandStopPolling,
		SubcommandStartDiscovery, SubcommandReadBlock:
		ic.handleNfcRequest(sub)
	case SubcommandOpaque:
	}
	return out
}

// handleNfcRequest applies an MCU request to the session state machine.
// Requests arriving mid-read are ignored, matching MCU behavior.
func (ic *Interceptor) handleNfcRequest(sub Subcommand) {
	if ic.mcu.Reading() {
		return
	}

	switch sub.Kind {
	case SubcommandRequestMcuStatus:
		CaptureComment("MCU status requested")
		ic.mcu.SetAction(ActionRequestStatus)
	case SubcommandStartPolling:
		CaptureComment("Started polling")
		ic.session.StartPolling()
		ic.mcu.SetAction(ActionStartPolling)
	case SubcommandStopPolling:
		CaptureComment("Stopped polling")
		ic.session.StopPolling()
		ic.mcu.SetAction(ActionNone)
	case SubcommandStartDiscovery:
		CaptureComment("Tag discovery started")
		ic.mcu.SetAction(ActionStartDiscovery)
	case SubcommandReadBlock:
		// A read before StartPolling is answered with the empty
		// not-ready report, same as a real tag run-out
		if ic.session.State() == SessionPolling {
			CaptureComment("Tag read started")
			ic.mcu.SetAction(ActionReadTag)
		}
	case SubcommandOpaque,
		SubcommandSetMcuConfig, SubcommandSetMcuState:
	}
}

// HandlePeripheralFrame processes one peripheral-originated report and
// returns the reports to forward to the host, substituting NFC content
// where the exchange calls for it.
func (ic *Interceptor) HandlePeripheralFrame(r *Report) []*Report {
	if !ic.Active() || !r.Known {
		return []*Report{r}
	}

	ic.mu.Lock()
	defer ic.mu.Unlock()

	if ack, echo, ok := r.AckBytes(); ok {
		switch {
		case ack == frame.AckMcuConfig && echo == frame.SubSetMcuConfig:
			return []*Report{ic.rebuildConfigAck(r)}
		case ack == frame.AckMcuState && echo == frame.SubSetMcuState:
			return []*Report{ic.rebuildStateAck(r)}
		}
		return []*Report{r}
	}

	if r.ID == frame.InputMcuMode {
		return []*Report{ic.substituteMcuReport(r)}
	}
	return []*Report{r}
}

// substituteMcuReport replaces the MCU section of an 0x31 report with the
// emulator's next packet, keeping the peripheral's own standard section
// (timer, buttons, counter) so the host's ordering checks hold.
func (ic *Interceptor) substituteMcuReport(r *Report) *Report {
	sub := r.Clone()
	if len(sub.Raw) < frame.McuSectionOffset {
		return r
	}
	mcuReport := ic.mcu.BuildNfcReport()
	sub.Raw = append(sub.Raw[:frame.McuSectionOffset], mcuReport...)
	return sub
}

// rebuildConfigAck rewrites a SetMcuConfig acknowledgement with the
// emulator's status block and applies the requested mode change taken
// from the host's own request.
func (ic *Interceptor) rebuildConfigAck(r *Report) *Report {
	if len(ic.lastMcuOutput) <= frame.SubcommandArgsOffset {
		return r
	}

	args := ic.lastMcuOutput[frame.SubcommandArgsOffset:]
	if len(args) >= 3 && args[1] == 0 {
		switch args[2] {
		case frame.McuConfigModeStandby:
			CaptureComment("Changed MCU state to stand by")
			ic.mcu.SetState(McuStandby)
		case frame.McuConfigModeNfc:
			CaptureComment("Changed MCU state to NFC")
			ic.mcu.SetState(McuNfc)
		default:
			Debugf("unknown MCU config mode 0x%02X", args[2])
		}
	}

	// The status block acknowledges the mode just applied
	sub := ic.rewriteAckScaffold(r, frame.AckMcuConfig, frame.SubSetMcuConfig)
	copy(sub.Raw[frame.AckDataOffset:], ic.mcu.BuildStatusBlock())
	return sub
}

// rebuildStateAck rewrites a SetMcuState acknowledgement and applies the
// suspend/resume transition from the host's request.
func (ic *Interceptor) rebuildStateAck(r *Report) *Report {
	if len(ic.lastMcuOutput) <= frame.SubcommandArgsOffset {
		return r
	}

	sub := ic.rewriteAckScaffold(r, frame.AckMcuState, frame.SubSetMcuState)

	switch ic.lastMcuOutput[frame.SubcommandArgsOffset] {
	case frame.McuStateArgResume:
		ic.mcu.SetAction(ActionNone)
		ic.mcu.SetState(McuStandby)
	case frame.McuStateArgSuspend:
		ic.mcu.SetState(McuStandby)
	default:
		Debugf("unknown MCU state argument 0x%02X",
			ic.lastMcuOutput[frame.SubcommandArgsOffset])
	}
	return sub
}

// rewriteAckScaffold clones the reply, pads it to the standard reply
// length, and stamps the acknowledgement fields the host checks.
func (*Interceptor) rewriteAckScaffold(r *Report, ack, echo byte) *Report {
	sub := r.Clone()
	for len(sub.Raw) < frame.StandardInputLength {
		sub.Raw = append(sub.Raw, 0)
	}
	sub.Raw[1] = frame.InputSubcommandReply
	sub.Raw[3] = 0x8E
	sub.Raw[frame.AckOffset] = ack
	sub.Raw[frame.AckSubcommandOffset] = echo
	return sub
}
