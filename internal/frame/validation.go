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

package frame

// Layout describes the structural requirements for a known report
// identifier. Identifiers absent from the tables decode as opaque
// pass-through reports.
type Layout struct {
	Name      string
	MinLength int
}

// Known layout tables, keyed by report identifier. These are variables
// rather than constants so a future protocol revision can be supplied as
// data without touching decode logic.
var (
	InputLayouts = map[byte]Layout{
		InputSubcommandReply: {Name: "subcommand-reply", MinLength: AckDataOffset},
		InputStandardFull:    {Name: "standard-full", MinLength: StandardInputLength},
		InputMcuMode:         {Name: "mcu-mode", MinLength: McuSectionOffset + McuReportLength},
	}

	OutputLayouts = map[byte]Layout{
		OutputRumbleSubcommand: {Name: "rumble-subcommand", MinLength: SubcommandArgsOffset},
		OutputRumble:           {Name: "rumble", MinLength: SubcommandIDOffset},
		OutputMcuRequest:       {Name: "mcu-request", MinLength: SubcommandArgsOffset},
	}
)

// LookupInput returns the layout for an input report identifier.
func LookupInput(id byte) (Layout, bool) {
	l, ok := InputLayouts[id]
	return l, ok
}

// LookupOutput returns the layout for an output report identifier.
func LookupOutput(id byte) (Layout, bool) {
	l, ok := OutputLayouts[id]
	return l, ok
}
