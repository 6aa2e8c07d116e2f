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
	"unsafe"

	"github.com/cloudwego/staticmem/debug"
)

// NewObject allocates a zeroed T from m.
//
// T must NOT contain Go pointers: the GC never scans the storage of a Mem, whether it
// comes from NewStorage, MapStorage or any []byte. The alignment of T must not exceed Alignment.
// A zero sized T still takes Alignment bytes.
func NewObject[T any](m *Mem) *T {
	var zero T
	if debug.APIValidation && unsafe.Alignof(zero) > Alignment {
		panic(report(m.rep(), debug.KindInvalidArgument, "unsafe.Alignof(T) <= Alignment"))
	}
	size := unsafe.Sizeof(zero)
	if size == 0 {
		size = 1
	}
	p := (*T)(m.Alloc(size))
	*p = zero
	return p
}

// MakeSlice allocates a zeroed []T of length n from m.
// See NewObject for the restrictions on T. MakeSlice reserves nothing for n == 0.
func MakeSlice[T any](m *Mem, n int) []T {
	var zero T
	if debug.APIValidation {
		if n < 0 {
			panic(report(m.rep(), debug.KindInvalidArgument, "n >= 0"))
		}
		if unsafe.Alignof(zero) > Alignment {
			panic(report(m.rep(), debug.KindInvalidArgument, "unsafe.Alignof(T) <= Alignment"))
		}
	}
	if n == 0 {
		return []T{}
	}
	elem := unsafe.Sizeof(zero)
	if elem == 0 {
		elem = 1
	}
	if uintptr(n) > maxUintptr/elem {
		panic(report(m.rep(), debug.KindResourceExhausted, "n*unsafe.Sizeof(T) fits uintptr"))
	}
	s := unsafe.Slice((*T)(m.Alloc(uintptr(n)*elem)), n)
	clear(s)
	return s
}
