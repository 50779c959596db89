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

// Package joyrelay implements a transparent Joy-Con-to-console relay that
// substitutes the NFC tag exchange with an operator-supplied tag image.
//
// The relay sits between a paired Joy-Con and the console, forwarding the
// HID interrupt-channel report stream unmodified in the common case. When
// the console drives the NFC/IR MCU through its polling and read
// subcommands, the interceptor answers from a locally loaded tag image
// instead, rebuilding the MCU sections of the peripheral's reports with
// correct framing and CRC-8 trailers so both endpoints' protocol state
// machines stay satisfied.
//
// The root package holds the report codec, the payload store, and the
// interceptor. Package relay pumps frames between two Transport
// implementations; transport/l2cap, transport/uart and transport/ws
// provide the concrete channels.
package joyrelay
