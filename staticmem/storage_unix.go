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

//go:build unix

package staticmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MapStorage returns size bytes of zeroed storage from an anonymous private mapping.
//
// The mapping lives outside the Go heap, like a static RAM region, and is page aligned.
// Release it with UnmapStorage once no Mem uses it anymore.
func MapStorage(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("staticmem: storage size must be positive, got %d", size)
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("staticmem: mmap %d bytes: %w", size, err)
	}
	return b, nil
}

// UnmapStorage releases storage returned by MapStorage.
func UnmapStorage(b []byte) error {
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("staticmem: munmap: %w", err)
	}
	return nil
}
