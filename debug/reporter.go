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

package debug

import (
	"log"
	rdebug "runtime/debug"
)

// Reporter receives contract violation reports.
//
// Report must not return: implementations halt, reset or otherwise divert execution,
// typically by panicking or exiting. Callers treat the call as terminal.
type Reporter interface {
	Report(r *Report)
}

// ReporterFunc adapts an ordinary function to a Reporter.
type ReporterFunc func(r *Report)

// Report calls f(r).
func (f ReporterFunc) Report(r *Report) { f(r) }

// DefaultReporter logs the report with its stack and panics with it.
var DefaultReporter Reporter = ReporterFunc(logAndPanic)

func logAndPanic(r *Report) {
	log.Printf("STATICMEM: contract violation: %s: %s", r.Error(), rdebug.Stack())
	panic(r)
}

// Fail hands rep to r, or to DefaultReporter if r is nil.
//
// Fail returns rep only if the reporter broke its contract and returned.
// Call sites therefore read `panic(debug.Fail(r, rep))`, so no code runs after a failure.
func Fail(r Reporter, rep *Report) *Report {
	if r == nil {
		r = DefaultReporter
	}
	r.Report(rep)
	return rep
}
