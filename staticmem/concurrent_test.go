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
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/staticmem/debug"
)

type region struct {
	start, end uintptr
}

// tryAlloc returns the region reserved for size, or false if m is exhausted.
func tryAlloc(m *Mem, size uintptr) (r region, ok bool) {
	defer func() {
		if v := recover(); v != nil {
			if rep, _ := v.(*debug.Report); rep == nil || rep.Kind != debug.KindResourceExhausted {
				panic(v)
			}
			ok = false
		}
	}()
	off := offsetOf(m, m.Alloc(size))
	return region{off, off + alignUp(size)}, true
}

func checkRegions(t *testing.T, m *Mem, regions []region) {
	t.Helper()
	sort.Slice(regions, func(i, j int) bool { return regions[i].start < regions[j].start })
	var total uintptr
	for i, r := range regions {
		require.Zero(t, r.start%Alignment)
		require.LessOrEqual(t, r.end, m.Size())
		if i > 0 {
			require.LessOrEqual(t, regions[i-1].end, r.start, "regions %d and %d overlap", i-1, i)
		}
		total += r.end - r.start
	}
	assert.Equal(t, m.Used(), total)
	assert.LessOrEqual(t, m.Used(), m.Size())
}

func TestConcurrentAlloc(t *testing.T) {
	const (
		workers = 16
		size    = 64 * 1024
	)
	m := newTestMem(t, size)

	var wg sync.WaitGroup
	results := make([][]region, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(int64(w)))
			misses := 0
			for misses < 8 {
				r, ok := tryAlloc(m, uintptr(rnd.Intn(100)+1))
				if !ok {
					misses++
					continue
				}
				results[w] = append(results[w], r)
			}
		}(w)
	}
	wg.Wait()

	var all []region
	for _, rs := range results {
		all = append(all, rs...)
	}
	require.NotEmpty(t, all)
	checkRegions(t, m, all)
	// 8 misses per worker with sizes <= 100 leave less than one max request behind
	assert.Less(t, m.Available(), uintptr(alignUp(100)))
}

func TestConcurrentAllocExactFill(t *testing.T) {
	const (
		workers = 32
		slots   = 4096
	)
	m := newTestMem(t, slots*Alignment)

	var wg sync.WaitGroup
	var succeeded int64
	seen := make([]int32, slots)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				r, ok := tryAlloc(m, Alignment)
				if !ok {
					return
				}
				atomic.AddInt64(&succeeded, 1)
				atomic.AddInt32(&seen[r.start/Alignment], 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(slots), succeeded)
	for i, n := range seen {
		require.Equal(t, int32(1), n, "slot %d handed out %d times", i, n)
	}
	assert.Equal(t, m.Size(), m.Used())
}

func TestMonotonicCursor(t *testing.T) {
	const workers = 8
	m := newTestMem(t, 256*1024)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(int64(w)))
			for {
				if _, ok := tryAlloc(m, uintptr(rnd.Intn(64)+1)); !ok {
					return
				}
			}
		}(w)
	}

	done := make(chan struct{})
	var decreased atomic.Bool
	go func() {
		defer close(done)
		prev := m.Used()
		for prev+64 <= m.Size() {
			cur := m.Used()
			if cur < prev {
				decreased.Store(true)
				return
			}
			prev = cur
		}
	}()
	wg.Wait()
	<-done
	assert.False(t, decreased.Load())
}

// setHook installs f as testHookBeforeCAS for the duration of the test.
func setHook(t *testing.T, f func(m *Mem)) {
	testHookBeforeCAS = f
	t.Cleanup(func() { testHookBeforeCAS = nil })
}

func TestPreemptedAlloc(t *testing.T) {
	m := newTestMem(t, 128)

	var nested region
	var hookCalls int
	preempted := false
	setHook(t, func(hm *Mem) {
		hookCalls++
		if preempted {
			return
		}
		preempted = true
		// an "interrupt" allocating between the outer load and CAS
		r, ok := tryAlloc(hm, 24)
		require.True(t, ok)
		nested = r
	})

	outer, ok := tryAlloc(m, 10)
	require.True(t, ok)

	assert.Equal(t, region{0, 24}, nested)
	assert.Equal(t, region{24, 40}, outer)
	// outer load, nested load, outer retry
	assert.Equal(t, 3, hookCalls)
	assert.Equal(t, uintptr(40), m.Used())
	checkRegions(t, m, []region{nested, outer})
}

func TestPreemptedAllocExhausts(t *testing.T) {
	m := newTestMem(t, 32)

	preempted := false
	setHook(t, func(hm *Mem) {
		if preempted {
			return
		}
		preempted = true
		_, ok := tryAlloc(hm, 24)
		require.True(t, ok)
	})

	// fits when first checked, but not once the preempting allocation has committed
	_, ok := tryAlloc(m, 16)
	assert.False(t, ok)
	assert.Equal(t, uintptr(24), m.Used())
}

func TestPreemptedAllocNested(t *testing.T) {
	const depth = 5
	m := newTestMem(t, 1024)

	var order []region
	level := 0
	setHook(t, func(hm *Mem) {
		if level >= depth {
			return
		}
		level++
		// every level preempts the one below it once
		r, ok := tryAlloc(hm, uintptr(level*8))
		require.True(t, ok)
		order = append(order, r)
	})

	r, ok := tryAlloc(m, 100)
	require.True(t, ok)
	order = append(order, r)

	require.Len(t, order, depth+1)
	// the innermost preemption commits first
	assert.Equal(t, uintptr(0), order[0].start)
	assert.Equal(t, uintptr(depth*8), order[0].end)
	checkRegions(t, m, order)
}

func TestConcurrentPreemption(t *testing.T) {
	const workers = 8
	m := newTestMem(t, 128*1024)

	var calls atomic.Int64
	var mu sync.Mutex
	var interrupts []region
	var inInterrupt atomic.Bool
	setHook(t, func(hm *Mem) {
		if calls.Add(1)%7 != 0 || !inInterrupt.CompareAndSwap(false, true) {
			return
		}
		defer inInterrupt.Store(false)
		if r, ok := tryAlloc(hm, 40); ok {
			mu.Lock()
			interrupts = append(interrupts, r)
			mu.Unlock()
		}
	})

	var wg sync.WaitGroup
	results := make([][]region, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for {
				r, ok := tryAlloc(m, uintptr(w*8+3))
				if !ok {
					return
				}
				results[w] = append(results[w], r)
			}
		}(w)
	}
	wg.Wait()

	all := append([]region(nil), interrupts...)
	for _, rs := range results {
		all = append(all, rs...)
	}
	assert.NotEmpty(t, interrupts)
	checkRegions(t, m, all)
}
