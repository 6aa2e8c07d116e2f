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

// Package staticmem implements a fixed capacity, lock-free bump allocator.
//
// A Mem hands out disjoint, aligned regions of a caller supplied buffer. Regions are
// never freed: the cursor only moves forward until the buffer is exhausted. Alloc never
// blocks and never takes a lock, so it may be called from any goroutine, including code
// that preempts another Alloc in flight.
//
// Contract violations (an uninitialized Mem, a zero sized request, exhaustion) are not
// returned as errors. They are reported to a debug.Reporter which must not return.
// Build with the `staticmem_release` tag to compile out every check except exhaustion.
package staticmem

import (
	"sync/atomic"
	"unsafe"

	"github.com/cloudwego/staticmem/debug"
)

// Alignment is the alignment of every address returned by Alloc.
// Requested sizes are rounded up to a multiple of Alignment.
const Alignment = 8

// compile time checks: Alignment is a power of two and covers uint64.
var _ [0]struct{} = [Alignment & (Alignment - 1)]struct{}{}

const _ = uintptr(Alignment) - unsafe.Alignof(uint64(0))

var module = &debug.Module{
	Name:   "staticmem",
	Desc:   "Static Memory Management",
	Author: "CloudWeGo Authors",
	File:   "staticmem/staticmem.go",
}

// testHookBeforeCAS runs between the cursor load and the CAS in reserve.
var testHookBeforeCAS func(m *Mem)

// Option ...
type Option struct {
	// Reporter receives contract violations and must not return.
	// nil selects debug.DefaultReporter.
	Reporter debug.Reporter
}

// DefaultOption returns the default values of Option.
func DefaultOption() *Option {
	return &Option{Reporter: debug.DefaultReporter}
}

// Mem is a static memory instance.
// The zero value is not usable, call Init or use New.
type Mem struct {
	// signature comes first, it is zero sized in release builds.
	sig signature

	base unsafe.Pointer
	size uintptr

	// free is the number of bytes already committed from base.
	free atomic.Uintptr

	reporter debug.Reporter
}

// New returns a Mem managing buf.
//
// There is no package level default instance. Create one at startup and pass it to the
// components that allocate from it.
func New(buf []byte, o *Option) *Mem {
	m := &Mem{}
	m.InitBytes(buf, o)
	return m
}

// InitBytes is like Init, using buf as the storage.
func (m *Mem) InitBytes(buf []byte, o *Option) {
	m.Init(unsafe.Pointer(unsafe.SliceData(buf)), uintptr(len(buf)), o)
}

// Init binds m to size bytes at storage and resets the cursor.
//
// storage must be non-nil and aligned to Alignment, and size must be positive. The
// storage must outlive m. Init does not read or write the storage. It must complete
// before any Alloc on m, and must not be called again while allocations are in use.
func (m *Mem) Init(storage unsafe.Pointer, size uintptr, o *Option) {
	if o == nil {
		o = DefaultOption()
	}
	if debug.APIValidation {
		if m == nil {
			panic(report(o.Reporter, debug.KindInvalidObject, "m != nil"))
		}
		if storage == nil {
			panic(report(o.Reporter, debug.KindInvalidArgument, "storage != nil"))
		}
		if size == 0 {
			panic(report(o.Reporter, debug.KindInvalidArgument, "storageSize > 0"))
		}
		if uintptr(storage)&(Alignment-1) != 0 {
			panic(report(o.Reporter, debug.KindInvalidArgument, "storage%Alignment == 0"))
		}
	}
	m.base = storage
	m.size = size
	m.reporter = o.Reporter
	m.free.Store(0)
	// the signature is written last: a valid signature implies the fields above are set.
	m.sig.set()
}

// Alloc reserves size bytes and returns the start address of the region.
//
// The region is aligned to Alignment and its content is left untouched, so it holds
// whatever the storage held. Alloc is lock-free and may run concurrently with any number
// of Alloc calls on the same Mem. It never returns on failure: an invalid Mem, a zero
// size or exhaustion is reported to the Reporter.
func (m *Mem) Alloc(size uintptr) unsafe.Pointer {
	if debug.APIValidation {
		if m == nil || !m.sig.valid() {
			panic(report(m.rep(), debug.KindInvalidObject, "m.signature == memSignature"))
		}
		if size == 0 {
			panic(report(m.reporter, debug.KindInvalidArgument, "size > 0"))
		}
	}
	start, ok := m.reserve(size)
	if !ok {
		panic(report(m.reporter, debug.KindResourceExhausted, "m.free+align(size) <= m.size"))
	}
	return unsafe.Add(m.base, start)
}

// AllocI is Alloc, for call sites already running in an interrupt or locked context.
//
// Alloc never blocks and is reentrant, so both names share one implementation.
// The name only documents the calling context.
func (m *Mem) AllocI(size uintptr) unsafe.Pointer {
	return m.Alloc(size)
}

// AllocBytes reserves size bytes and returns them as a slice.
// The slice has len == size and cap == size rounded up to Alignment.
// The content is not initialized.
func (m *Mem) AllocBytes(size int) []byte {
	if debug.APIValidation && size <= 0 {
		panic(report(m.rep(), debug.KindInvalidArgument, "size > 0"))
	}
	p := m.Alloc(uintptr(size))
	return unsafe.Slice((*byte)(p), alignUp(uintptr(size)))[:size]
}

// Base returns the start of the storage.
func (m *Mem) Base() unsafe.Pointer { return m.base }

// Size returns the capacity in bytes.
func (m *Mem) Size() uintptr { return m.size }

// Used returns the number of bytes committed so far, alignment padding included.
func (m *Mem) Used() uintptr { return m.free.Load() }

// Available returns the largest size a single Alloc can still reserve.
// The last Size()%Alignment bytes of the storage are never handed out, so this can be
// less than Size()-Used().
func (m *Mem) Available() uintptr { return m.size&^(Alignment-1) - m.free.Load() }

func (m *Mem) rep() debug.Reporter {
	if m == nil {
		return nil
	}
	return m.reporter
}

// report builds a Report located at the caller and hands it to r.
func report(r debug.Reporter, kind debug.Kind, expr string) *debug.Report {
	return debug.Fail(r, debug.NewReport(module, kind, expr, 1))
}
