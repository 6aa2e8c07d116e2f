/*
 * Copyright 2026 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package staticmem

import (
	"errors"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

// ErrMapUnsupported is returned by MapStorage on platforms without anonymous mappings.
var ErrMapUnsupported = errors.New("staticmem: mapped storage is not supported on this platform")

// NewStorage returns size bytes of Go heap storage for a Mem, aligned to Alignment.
// The bytes are NOT zeroed, Mem never looks at them.
func NewStorage(size int) []byte {
	// a multiple of Alignment keeps small sizes out of the tiny allocator,
	// which packs them at 1, 2 or 4 byte boundaries.
	return dirtmake.Bytes(size, int(alignUp(uintptr(size))))
}
