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
	"os"
	"strings"
	"time"
)

// debugEnabled controls whether debug logging is active
var debugEnabled = false

func init() {
	// Enable debug logging if DEBUG environment variable is set
	if os.Getenv("JOYRELAY_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled = true
	}
}

// Debugf prints debug information.
// Always writes to the capture log file (if initialized) with timestamp.
// Only prints to console when debug mode is enabled.
func Debugf(format string, args ...any) {
	message := fmt.Sprintf(format, args...)

	if captureLogWriter() != nil {
		timestamp := time.Now().Format("15:04:05.000")
		_, _ = fmt.Fprintf(captureLogWriter(), "%s DEBUG: %s\n", timestamp, message)
	}

	if debugEnabled {
		_, _ = fmt.Printf("DEBUG: %s\n", message)
	}
}

// SetDebugEnabled allows programmatic control of debug logging
// Useful for testing or application-controlled debug modes
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// FormatFrame renders a raw frame as space-separated hex split into the
// fixed payload section and the subcommand/data tail, the layout used in
// capture logs.
func FormatFrame(raw []byte, split int) string {
	var payload, tail strings.Builder
	for i, b := range raw {
		cell := fmt.Sprintf("%02X ", b)
		if i <= split {
			payload.WriteString(cell)
		} else {
			tail.WriteString(cell)
			if (i+1)%50 == 0 && len(raw) > 50 {
				tail.WriteByte('\n')
			}
		}
	}
	return fmt.Sprintf("Payload:    %s\nSubcommand: %s",
		strings.TrimRight(payload.String(), " "),
		strings.TrimRight(tail.String(), " "))
}
