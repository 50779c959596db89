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

import "github.com/sigurn/crc8"

// The MCU trailer is plain CRC-8 (poly 0x07, init 0x00), the same
// algorithm the retail NFC/IR MCU firmware uses.
var mcuCrcTable = crc8.MakeTable(crc8.CRC8)

// McuChecksum computes the CRC-8 trailer over an MCU report body.
func McuChecksum(data []byte) byte {
	return crc8.Checksum(data, mcuCrcTable)
}

// SealMcuReport writes the CRC-8 trailer into the last byte of a
// complete MCU report buffer.
func SealMcuReport(report []byte) {
	if len(report) == 0 {
		return
	}
	report[len(report)-1] = McuChecksum(report[:len(report)-1])
}

// VerifyMcuReport reports whether the trailer byte matches the body.
func VerifyMcuReport(report []byte) bool {
	if len(report) < 2 {
		return false
	}
	return report[len(report)-1] == McuChecksum(report[:len(report)-1])
}
