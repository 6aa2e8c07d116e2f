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
	"github.com/cloudwego/staticmem/debug"
)

const maxUintptr = ^uintptr(0)

// alignUp rounds n up to a multiple of Alignment.
// It wraps around for n > maxUintptr-Alignment+1, callers check that first.
func alignUp(n uintptr) uintptr {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// reserve advances the cursor by size rounded up to Alignment and returns the old cursor.
// It returns false if the rounded size does not fit in what is left.
//
// On CAS failure another caller has moved the cursor, so some caller always makes
// progress. A caller retries at most once per competing reservation.
func (m *Mem) reserve(size uintptr) (uintptr, bool) {
	if size > m.size {
		// also keeps alignUp from wrapping
		return 0, false
	}
	n := alignUp(size)
	if n < size {
		return 0, false
	}
	for {
		cur := m.free.Load()
		if n > m.size-cur {
			return 0, false
		}
		if testHookBeforeCAS != nil {
			testHookBeforeCAS(m)
		}
		if m.free.CompareAndSwap(cur, cur+n) {
			if debug.InternalCheck && (cur+n > m.size || cur&(Alignment-1) != 0) {
				panic(report(m.reporter, debug.KindUsage, "cur+n <= m.size && cur%Alignment == 0"))
			}
			return cur, true
		}
	}
}
