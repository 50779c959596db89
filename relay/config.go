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

package relay

import "time"

// Config holds relay engine options.
type Config struct {
	// ReadTimeout is applied to both transports so a blocked read wakes
	// up periodically to observe cancellation. Zero leaves the transport
	// defaults in place.
	ReadTimeout time.Duration
}

// DefaultConfig returns the default relay configuration.
func DefaultConfig() *Config {
	return &Config{
		ReadTimeout: 500 * time.Millisecond,
	}
}
